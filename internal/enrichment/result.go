package enrichment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
)

// ErrInvalidResult wraps every decode or validation failure of a model answer.
var ErrInvalidResult = errors.New("invalid model result")

var validate = validator.New()

// Result is the structured answer expected from the model
type Result struct {
	Summary string           `json:"summary" validate:"required"`
	Quizzes []db.QuizContent `json:"quizzes" validate:"dive"`
	Terms   []TermResult     `json:"terms" validate:"dive"`
}

// TermResult is one glossary entry of a Result
type TermResult struct {
	Word    string `json:"word" validate:"required"`
	Meaning string `json:"meaning"`
}

// StripFences removes Markdown code fences the model sometimes wraps JSON in
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// ParseResult decodes and validates a model answer
func ParseResult(text string) (*Result, error) {
	clean := StripFences(text)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty answer", ErrInvalidResult)
	}

	var result Result
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	result.Summary = strings.TrimSpace(result.Summary)
	if err := validate.Struct(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	return &result, nil
}
