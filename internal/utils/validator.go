package utils

import (
	"regexp"
	"strings"
)

var eduEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.edu$`)

// IsValidEduEmail accepts institutional addresses only.
func IsValidEduEmail(email string) bool {
	return eduEmailPattern.MatchString(strings.ToLower(email))
}

// ExtractDomain returns the part after '@', lowercased.
func ExtractDomain(email string) string {
	parts := strings.Split(strings.ToLower(email), "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func IsValidPassword(password string) bool {
	return len(password) >= 8
}

func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}
