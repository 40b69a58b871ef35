package models

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// OptionsPerQuestion is the fixed number of answer options.
const OptionsPerQuestion = 4

var (
	ErrQuestionPromptRequired = errors.New("question prompt is required")
	ErrQuestionOptions        = errors.New("a question needs exactly 4 non-empty options")
	ErrQuestionCorrectIndex   = errors.New("correct option index must be between 0 and 3")
)

// QuizQuestion is an admin-managed level test item.
type QuizQuestion struct {
	BaseModel
	Prompt       string           `json:"prompt"`
	Sentence     string           `json:"sentence"`
	Options      pq.StringArray   `gorm:"type:text[]" json:"options"`
	CorrectIndex int              `json:"correct_index"`
	Difficulty   Difficulty       `gorm:"index" json:"difficulty"`
	Category     QuestionCategory `gorm:"index" json:"category"`
	IsActive     bool             `json:"is_active"`
	DisplayOrder int              `gorm:"index" json:"display_order"`
}

// Validate checks the question invariants.
func (q *QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return ErrQuestionPromptRequired
	}
	if len(q.Options) != OptionsPerQuestion {
		return ErrQuestionOptions
	}
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return ErrQuestionOptions
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionsPerQuestion {
		return ErrQuestionCorrectIndex
	}
	return nil
}
