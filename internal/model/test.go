package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Difficulty is a per-question band.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Level is the overall difficulty of a test or resource.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Question is embedded in a Test and stored in its questions JSONB array.
// CorrectAnswer always holds the literal text of one of Options.
type Question struct {
	ID            uuid.UUID  `json:"id"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	Difficulty    Difficulty `json:"difficulty"`
	Category      string     `json:"category"`
	Explanation   string     `json:"explanation"`
}

// Test is a timed multiple-choice test.
type Test struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Duration        int        `json:"duration"`
	TotalMarks      int        `json:"total_marks"`
	PassingMarks    int        `json:"passing_marks"`
	Questions       []Question `json:"questions"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	IsActive        bool       `json:"is_active"`
	Tags            []string   `json:"tags"`
	DifficultyLevel Level      `json:"difficulty_level"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// QuestionByID returns the question with the given id.
func (t *Test) QuestionByID(id uuid.UUID) (Question, bool) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// PublicQuestion is a question without its correct answer.
type PublicQuestion struct {
	ID          uuid.UUID  `json:"id"`
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category"`
	Explanation string     `json:"explanation,omitempty"`
}

// PublicTest is the test shape returned by list and detail endpoints.
type PublicTest struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Duration        int              `json:"duration"`
	TotalMarks      int              `json:"total_marks"`
	PassingMarks    int              `json:"passing_marks"`
	Questions       []PublicQuestion `json:"questions"`
	CreatedBy       uuid.UUID        `json:"created_by"`
	IsActive        bool             `json:"is_active"`
	Tags            []string         `json:"tags"`
	DifficultyLevel Level            `json:"difficulty_level"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Stats           *TestStats       `json:"stats,omitempty"`
}

// Public strips correct answers. Explanations are revealed only on submit.
func (t *Test) Public() PublicTest {
	qs := make([]PublicQuestion, len(t.Questions))
	for i, q := range t.Questions {
		qs[i] = PublicQuestion{
			ID:         q.ID,
			Question:   q.Question,
			Options:    q.Options,
			Difficulty: q.Difficulty,
			Category:   q.Category,
		}
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return PublicTest{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Duration:        t.Duration,
		TotalMarks:      t.TotalMarks,
		PassingMarks:    t.PassingMarks,
		Questions:       qs,
		CreatedBy:       t.CreatedBy,
		IsActive:        t.IsActive,
		Tags:            tags,
		DifficultyLevel: t.DifficultyLevel,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// TestStats summarizes all attempts of one test.
type TestStats struct {
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
	MaxScore     float64 `json:"max_score"`
	MinScore     float64 `json:"min_score"`
	PassCount    int     `json:"pass_count"`
	PassRate     float64 `json:"pass_rate"`
}

// QuestionInput is an authored question. CorrectAnswer is raw JSON: either an
// option index (number) or a string.
type QuestionInput struct {
	ID            *uuid.UUID      `json:"id"`
	Question      string          `json:"question" binding:"required,notblank"`
	Options       []string        `json:"options" binding:"required,min=2,dive,notblank"`
	CorrectAnswer json.RawMessage `json:"correct_answer" binding:"required"`
	Difficulty    Difficulty      `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Category      string          `json:"category" binding:"required,notblank"`
	Explanation   string          `json:"explanation"`
}

// CreateTestRequest is the payload for creating a test.
type CreateTestRequest struct {
	Title           string          `json:"title" binding:"required,notblank,min=3,max=100"`
	Description     string          `json:"description" binding:"required,notblank,max=1000"`
	Duration        int             `json:"duration" binding:"required,min=1"`
	TotalMarks      int             `json:"total_marks" binding:"required,min=1"`
	PassingMarks    int             `json:"passing_marks" binding:"required,min=1,ltefield=TotalMarks"`
	Questions       []QuestionInput `json:"questions" binding:"required,min=1,dive"`
	IsActive        *bool           `json:"is_active"`
	Tags            []string        `json:"tags" binding:"omitempty,dive,notblank"`
	DifficultyLevel Level           `json:"difficulty_level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

// UpdateTestRequest is a partial update. The merged test is re-validated
// against its persisted values.
type UpdateTestRequest struct {
	Title           *string          `json:"title" binding:"omitempty,notblank,min=3,max=100"`
	Description     *string          `json:"description" binding:"omitempty,notblank,max=1000"`
	Duration        *int             `json:"duration" binding:"omitempty,min=1"`
	TotalMarks      *int             `json:"total_marks" binding:"omitempty,min=1"`
	PassingMarks    *int             `json:"passing_marks" binding:"omitempty,min=1"`
	Questions       *[]QuestionInput `json:"questions" binding:"omitempty,min=1,dive"`
	IsActive        *bool            `json:"is_active"`
	Tags            *[]string        `json:"tags" binding:"omitempty,dive,notblank"`
	DifficultyLevel *Level           `json:"difficulty_level" binding:"omitempty,oneof=beginner intermediate advanced"`
}
