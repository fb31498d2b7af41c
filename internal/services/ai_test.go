package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/models"
	"gorm.io/gorm"
)

func newAITestService(db *gorm.DB) *AIService {
	return &AIService{db: db, model: "test-model", timeout: time.Second}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `[{"front":"a"}]`, `[{"front":"a"}]`},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"bare fence", "```\n{}\n```", "{}"},
		{"surrounding whitespace", "  \n[1]\n  ", "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.input))
		})
	}
}

func TestParseFlashcardResponse(t *testing.T) {
	cards, err := parseFlashcardResponse("```json\n[{\"front\":\"Q1\",\"back\":\"A1\"},{\"front\":\"\",\"back\":\"dropped\"}]\n```")
	require.NoError(t, err)

	// Empty cards are filtered out.
	require.Len(t, cards, 1)
	assert.Equal(t, "Q1", cards[0].Front)

	_, err = parseFlashcardResponse("not json at all")
	assert.Equal(t, "AI_GENERATION_FAILED", appErrCode(t, err))

	_, err = parseFlashcardResponse(`[{"front":"","back":""}]`)
	assert.Equal(t, "AI_GENERATION_FAILED", appErrCode(t, err))
}

func TestGenerateFlashcardsValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newAITestService(db)
	ctx := context.Background()

	_, err := svc.GenerateFlashcards(ctx, GenerateFlashcardsRequest{SourceText: "too short"})
	assert.Equal(t, "TEXT_TOO_SHORT", appErrCode(t, err))

	longText := strings.Repeat("lecture content ", 20)

	_, err = svc.GenerateFlashcards(ctx, GenerateFlashcardsRequest{SourceText: longText, Count: 2})
	assert.Equal(t, "INVALID_COUNT", appErrCode(t, err))

	_, err = svc.GenerateFlashcards(ctx, GenerateFlashcardsRequest{SourceText: longText, Count: 51})
	assert.Equal(t, "INVALID_COUNT", appErrCode(t, err))
}

func TestGenerateFlashcardsFromResourceValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newAITestService(db)
	ctx := context.Background()

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	_, err := svc.GenerateFlashcardsFromResource(ctx, uuid.New(), 10)
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))

	flashcardSet := seedResource(t, db, user.ID, course.ID, models.ResourceTypeFlashcards)
	_, err = svc.GenerateFlashcardsFromResource(ctx, flashcardSet.ID, 10)
	assert.Equal(t, "INVALID_TYPE", appErrCode(t, err))

	notes := seedResource(t, db, user.ID, course.ID, models.ResourceTypeNotes)
	_, err = svc.GenerateFlashcardsFromResource(ctx, notes.ID, 10)
	assert.Equal(t, "NO_FILES", appErrCode(t, err))

	file := models.UploadedFile{
		ResourceID:    notes.ID,
		FileName:      "notes.txt",
		S3Key:         "notes/files/test",
		FileURL:       "https://example.com/notes.txt",
		MimeType:      "text/plain",
		ExtractedText: "tiny",
	}
	require.NoError(t, db.Create(&file).Error)

	_, err = svc.GenerateFlashcardsFromResource(ctx, notes.ID, 10)
	assert.Equal(t, "INSUFFICIENT_TEXT", appErrCode(t, err))
}

func TestGenerateQuizValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newAITestService(db)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New()}

	_, err := svc.GenerateQuiz(ctx, GenerateQuizRequest{ResourceIDs: ids, QuestionCount: 3})
	assert.Equal(t, "INVALID_COUNT", appErrCode(t, err))

	_, err = svc.GenerateQuiz(ctx, GenerateQuizRequest{ResourceIDs: ids, Difficulty: "impossible"})
	assert.Equal(t, "INVALID_DIFFICULTY", appErrCode(t, err))

	// Valid parameters but no flashcard sets behind the ids.
	_, err = svc.GenerateQuiz(ctx, GenerateQuizRequest{ResourceIDs: ids})
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))
}

func TestCombineFlashcardSets(t *testing.T) {
	db := newTestDB(t)
	svc := newAITestService(db)

	_, err := svc.combineFlashcardSets(nil)
	assert.Equal(t, "NO_RESOURCES", appErrCode(t, err))

	tooMany := make([]uuid.UUID, maxGenerationInputs+1)
	for i := range tooMany {
		tooMany[i] = uuid.New()
	}
	_, err = svc.combineFlashcardSets(tooMany)
	assert.Equal(t, "TOO_MANY_RESOURCES", appErrCode(t, err))

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	// Notes resources are not valid inputs.
	notes := seedResource(t, db, user.ID, course.ID, models.ResourceTypeNotes)
	_, err = svc.combineFlashcardSets([]uuid.UUID{notes.ID})
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))

	set := seedResource(t, db, user.ID, course.ID, models.ResourceTypeFlashcards)
	cards := []models.Flashcard{
		{ResourceID: set.ID, Front: "Q1", Back: "A1", Order: 0},
		{ResourceID: set.ID, Front: "Q2", Back: "A2", Order: 1},
	}
	for i := range cards {
		require.NoError(t, db.Create(&cards[i]).Error)
	}

	combined, err := svc.combineFlashcardSets([]uuid.UUID{set.ID, notes.ID})
	require.NoError(t, err)
	assert.Contains(t, combined, "Q: Q1")
	assert.Contains(t, combined, "A: A2")
	assert.Contains(t, combined, set.Title)
}
