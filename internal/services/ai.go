package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/studyhive/studyhive-backend/internal/config"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"github.com/studyhive/studyhive-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	minSourceTextLength = 100
	minGenerationCount  = 5
	maxGenerationCount  = 50
	maxGenerationInputs = 10
)

// AIService calls the external chat-completions API (Groq, OpenAI wire
// format) to generate study content. It only reads from the store: callers
// persist the validated output themselves, so a generation failure can
// never leave half-applied state.
type AIService struct {
	db      *gorm.DB
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewAIService(db *gorm.DB, cfg *config.Config) *AIService {
	if db == nil {
		panic("database connection cannot be nil")
	}

	clientConfig := openai.DefaultConfig(cfg.GroqAPIKey)
	clientConfig.BaseURL = cfg.GroqBaseURL

	return &AIService{
		db:      db,
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.GroqModel,
		timeout: time.Duration(cfg.AITimeoutSecs) * time.Second,
	}
}

type GeneratedFlashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type FlashcardGenerationResult struct {
	Flashcards []GeneratedFlashcard `json:"flashcards"`
	Generated  int                  `json:"generated"`
	Requested  int                  `json:"requested"`
}

type GenerateFlashcardsRequest struct {
	SourceText    string `json:"source_text" binding:"required"`
	CourseContext string `json:"course_context"`
	ExamTag       string `json:"exam_tag"`
	Count         int    `json:"count"`
}

func (s *AIService) GenerateFlashcards(ctx context.Context, req GenerateFlashcardsRequest) (*FlashcardGenerationResult, error) {
	if req.Count == 0 {
		req.Count = 10
	}

	if len(utils.SanitizeString(req.SourceText)) < minSourceTextLength {
		return nil, utils.BadRequest("TEXT_TOO_SHORT", "Source text must be at least 100 characters")
	}
	if req.Count < minGenerationCount || req.Count > maxGenerationCount {
		return nil, utils.BadRequest("INVALID_COUNT", "Flashcard count must be between 5 and 50")
	}

	var sb strings.Builder
	sb.WriteString("You are an expert educator creating study flashcards for students.\n\n")
	sb.WriteString("SOURCE MATERIAL:\n" + req.SourceText + "\n\n")
	if req.CourseContext != "" {
		sb.WriteString("COURSE CONTEXT: " + req.CourseContext + "\n")
	}
	if req.ExamTag != "" {
		sb.WriteString("EXAM FOCUS: " + req.ExamTag + "\n")
	}
	sb.WriteString(fmt.Sprintf(`
INSTRUCTIONS:
1. Create exactly %d high-quality flashcards from this material
2. Each flashcard should test ONE specific concept
3. Questions should be clear and concise (5-15 words)
4. Answers should be complete but brief (1-3 sentences)
5. Focus on key concepts, definitions, formulas, and important facts
6. Avoid trivial or obvious questions
7. Do NOT include any copyrighted exam questions
8. Vary question types (definitions, applications, comparisons, examples)

OUTPUT FORMAT:
Return ONLY a valid JSON array of objects with "front" and "back" string
fields. No additional text, no markdown, no code blocks.`, req.Count))

	responseText, err := s.complete(ctx, sb.String(), 4096)
	if err != nil {
		return nil, err
	}

	cards, err := parseFlashcardResponse(responseText)
	if err != nil {
		return nil, err
	}

	return &FlashcardGenerationResult{
		Flashcards: cards,
		Generated:  len(cards),
		Requested:  req.Count,
	}, nil
}

// parseFlashcardResponse validates the model output: a JSON array of
// {front, back} pairs, empties filtered out. Anything else is a failure.
func parseFlashcardResponse(responseText string) ([]GeneratedFlashcard, error) {
	var raw []GeneratedFlashcard
	if err := json.Unmarshal([]byte(stripCodeFences(responseText)), &raw); err != nil {
		logger.Error("failed to parse AI flashcard response: ", err)
		return nil, aiGenerationFailed("Failed to generate flashcards. Please try again.")
	}

	cards := make([]GeneratedFlashcard, 0, len(raw))
	for _, card := range raw {
		front := utils.SanitizeString(card.Front)
		back := utils.SanitizeString(card.Back)
		if front != "" && back != "" {
			cards = append(cards, GeneratedFlashcard{Front: front, Back: back})
		}
	}

	if len(cards) == 0 {
		return nil, aiGenerationFailed("No valid flashcards generated")
	}
	return cards, nil
}

// GenerateFlashcardsFromResource feeds the extracted text of a NOTES
// resource's uploaded files into flashcard generation.
func (s *AIService) GenerateFlashcardsFromResource(ctx context.Context, resourceID uuid.UUID, count int) (*FlashcardGenerationResult, error) {
	var resource models.StudyResource
	err := s.db.Preload("Files").Preload("Course").First(&resource, "id = ?", resourceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("NOT_FOUND", "Resource not found")
		}
		return nil, err
	}

	if resource.Type != models.ResourceTypeNotes {
		return nil, utils.BadRequest("INVALID_TYPE", "Can only generate flashcards from notes")
	}
	if len(resource.Files) == 0 {
		return nil, utils.BadRequest("NO_FILES", "No files uploaded to this resource")
	}

	texts := make([]string, 0, len(resource.Files))
	for _, file := range resource.Files {
		if file.ExtractedText != "" {
			texts = append(texts, file.ExtractedText)
		}
	}
	combined := strings.Join(texts, "\n\n---\n\n")

	if len(combined) < minSourceTextLength {
		return nil, utils.BadRequest("INSUFFICIENT_TEXT", "Not enough text extracted from files. Please upload files with more content.")
	}

	return s.GenerateFlashcards(ctx, GenerateFlashcardsRequest{
		SourceText:    combined,
		CourseContext: resource.Course.CourseCode + " - " + resource.Course.Title,
		ExamTag:       resource.ExamTag,
		Count:         count,
	})
}

type StudyGuideDefinition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type StudyGuideSection struct {
	Heading        string                 `json:"heading"`
	KeyPoints      []string               `json:"keyPoints"`
	Definitions    []StudyGuideDefinition `json:"definitions"`
	Examples       []string               `json:"examples"`
	CommonMistakes []string               `json:"commonMistakes"`
	StudyTips      []string               `json:"studyTips"`
}

type StudyGuide struct {
	Title    string              `json:"title"`
	Sections []StudyGuideSection `json:"sections"`
}

type GenerateStudyGuideRequest struct {
	ResourceIDs   []uuid.UUID `json:"resource_ids" binding:"required"`
	CourseContext string      `json:"course_context"`
	ExamTag       string      `json:"exam_tag"`
}

func (s *AIService) GenerateStudyGuide(ctx context.Context, req GenerateStudyGuideRequest) (*StudyGuide, error) {
	combined, err := s.combineFlashcardSets(req.ResourceIDs)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("You are an expert educator creating a comprehensive study guide for students.\n\n")
	sb.WriteString("SOURCE FLASHCARDS:\n" + combined + "\n\n")
	if req.CourseContext != "" {
		sb.WriteString("COURSE CONTEXT: " + req.CourseContext + "\n")
	}
	if req.ExamTag != "" {
		sb.WriteString("EXAM FOCUS: " + req.ExamTag + "\n")
	}
	sb.WriteString(`
INSTRUCTIONS:
Create a comprehensive study guide that synthesizes all the information
above, organized into logical sections with clear headings, key concepts
and definitions, examples, common mistakes and study tips.

OUTPUT FORMAT:
Return ONLY a valid JSON object: {"title": string, "sections": [{"heading":
string, "keyPoints": [string], "definitions": [{"term": string,
"definition": string}], "examples": [string], "commonMistakes": [string],
"studyTips": [string]}]}. No additional text, no markdown.`)

	responseText, err := s.complete(ctx, sb.String(), 8000)
	if err != nil {
		return nil, err
	}

	var guide StudyGuide
	if err := json.Unmarshal([]byte(stripCodeFences(responseText)), &guide); err != nil || len(guide.Sections) == 0 {
		logger.Error("failed to parse AI study guide response: ", err)
		return nil, aiGenerationFailed("Failed to generate study guide")
	}

	return &guide, nil
}

type QuizQuestion struct {
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

type GenerateQuizRequest struct {
	ResourceIDs   []uuid.UUID `json:"resource_ids" binding:"required"`
	QuestionCount int         `json:"question_count"`
	Difficulty    string      `json:"difficulty"`
	QuestionTypes []string    `json:"question_types"`
}

var quizDifficultyGuide = map[string]string{
	"easy":   "Focus on basic recall and recognition. Simple, straightforward questions.",
	"medium": "Mix of recall and application. Require understanding of concepts.",
	"hard":   "Deep understanding, application, and synthesis. Challenging questions.",
}

func (s *AIService) GenerateQuiz(ctx context.Context, req GenerateQuizRequest) (*Quiz, error) {
	if req.QuestionCount == 0 {
		req.QuestionCount = 10
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if len(req.QuestionTypes) == 0 {
		req.QuestionTypes = []string{"multiple_choice"}
	}

	if req.QuestionCount < minGenerationCount || req.QuestionCount > maxGenerationCount {
		return nil, utils.BadRequest("INVALID_COUNT", "Question count must be between 5 and 50")
	}
	if _, ok := quizDifficultyGuide[req.Difficulty]; !ok {
		return nil, utils.BadRequest("INVALID_DIFFICULTY", "Difficulty must be easy, medium or hard")
	}

	combined, err := s.combineFlashcardSets(req.ResourceIDs)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("You are an expert educator creating a practice quiz for students.\n\n")
	sb.WriteString("SOURCE MATERIAL:\n" + combined + "\n\n")
	sb.WriteString("DIFFICULTY: " + req.Difficulty + " - " + quizDifficultyGuide[req.Difficulty] + "\n")
	sb.WriteString("QUESTION TYPES: " + strings.Join(req.QuestionTypes, ", ") + "\n")
	sb.WriteString(fmt.Sprintf("NUMBER OF QUESTIONS: %d\n", req.QuestionCount))
	sb.WriteString(`
INSTRUCTIONS:
Create exactly the requested number of high-quality quiz questions.
- For multiple choice: provide 4 options with only one correct answer
- For true/false: make statements clear and unambiguous
- For short answer: questions should have clear, specific answers
- Include detailed explanations for each answer
- Vary the topics covered

OUTPUT FORMAT:
Return ONLY a valid JSON object: {"questions": [{"type": string,
"question": string, "options": [string], "correctAnswer": string,
"explanation": string}]}. No additional text, no markdown.`)

	responseText, err := s.complete(ctx, sb.String(), 8000)
	if err != nil {
		return nil, err
	}

	var quiz Quiz
	if err := json.Unmarshal([]byte(stripCodeFences(responseText)), &quiz); err != nil || len(quiz.Questions) == 0 {
		logger.Error("failed to parse AI quiz response: ", err)
		return nil, aiGenerationFailed("Failed to generate quiz")
	}

	return &quiz, nil
}

type SummarySection struct {
	Heading string   `json:"heading"`
	Points  []string `json:"points"`
}

type NotesSummary struct {
	Title    string           `json:"title"`
	Sections []SummarySection `json:"sections"`
}

func (s *AIService) SummarizeNotes(ctx context.Context, resourceID uuid.UUID) (*NotesSummary, error) {
	var resource models.StudyResource
	err := s.db.Preload("Files").Preload("Course").First(&resource, "id = ?", resourceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("NOT_FOUND", "Resource not found")
		}
		return nil, err
	}

	if resource.Type != models.ResourceTypeNotes {
		return nil, utils.BadRequest("INVALID_TYPE", "Can only summarize notes")
	}

	texts := make([]string, 0, len(resource.Files))
	for _, file := range resource.Files {
		if file.ExtractedText != "" {
			texts = append(texts, file.ExtractedText)
		}
	}
	combined := strings.Join(texts, "\n\n---\n\n")
	if len(combined) < minSourceTextLength {
		return nil, utils.BadRequest("INSUFFICIENT_TEXT", "Not enough text extracted from files to summarize")
	}

	prompt := "You are an expert educator summarizing lecture notes for students.\n\n" +
		"NOTES:\n" + combined + "\n\n" +
		`INSTRUCTIONS:
Summarize the notes into a handful of sections, each with a short heading
and concise bullet points covering the essential ideas.

OUTPUT FORMAT:
Return ONLY a valid JSON object: {"title": string, "sections":
[{"heading": string, "points": [string]}]}. No additional text, no markdown.`

	responseText, err := s.complete(ctx, prompt, 4096)
	if err != nil {
		return nil, err
	}

	var summary NotesSummary
	if err := json.Unmarshal([]byte(stripCodeFences(responseText)), &summary); err != nil || len(summary.Sections) == 0 {
		logger.Error("failed to parse AI summary response: ", err)
		return nil, aiGenerationFailed("Failed to summarize notes")
	}

	return &summary, nil
}

// combineFlashcardSets renders the given flashcard sets as Q/A text blocks
// for use as prompt material.
func (s *AIService) combineFlashcardSets(resourceIDs []uuid.UUID) (string, error) {
	if len(resourceIDs) == 0 {
		return "", utils.BadRequest("NO_RESOURCES", "At least one resource is required")
	}
	if len(resourceIDs) > maxGenerationInputs {
		return "", utils.BadRequest("TOO_MANY_RESOURCES", "Maximum 10 resources allowed")
	}

	var resources []models.StudyResource
	err := s.db.
		Preload("Flashcards", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id IN ? AND type = ?", resourceIDs, models.ResourceTypeFlashcards).
		Find(&resources).Error
	if err != nil {
		return "", err
	}
	if len(resources) == 0 {
		return "", utils.NotFound("NOT_FOUND", "No valid flashcard sets found")
	}

	blocks := make([]string, 0, len(resources))
	for _, resource := range resources {
		cards := make([]string, 0, len(resource.Flashcards))
		for _, card := range resource.Flashcards {
			cards = append(cards, "Q: "+card.Front+"\nA: "+card.Back)
		}
		blocks = append(blocks, "=== "+resource.Title+" ===\n"+strings.Join(cards, "\n\n"))
	}
	return strings.Join(blocks, "\n\n---\n\n"), nil
}

func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func (s *AIService) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", mapAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", aiGenerationFailed("No response from AI")
	}

	return resp.Choices[0].Message.Content, nil
}

func aiGenerationFailed(message string) *utils.AppError {
	return utils.NewAppError(http.StatusInternalServerError, "AI_GENERATION_FAILED", message)
}

func mapAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return utils.NewAppError(http.StatusInternalServerError, "AI_AUTH_FAILED", "AI service authentication failed")
		case http.StatusTooManyRequests:
			return utils.NewAppError(http.StatusTooManyRequests, "RATE_LIMIT", "AI service rate limit exceeded. Please try again later.")
		}
	}
	logger.Error("AI generation error: ", err)
	return aiGenerationFailed("Failed to generate content. Please try again.")
}
