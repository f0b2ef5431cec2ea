package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultStatus is the lifecycle state of an attempt.
type ResultStatus string

const (
	ResultCompleted  ResultStatus = "completed"
	ResultIncomplete ResultStatus = "incomplete"
	ResultAbandoned  ResultStatus = "abandoned"
)

// Answer is one graded answer inside a result's answers JSONB array.
type Answer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedAnswer string    `json:"selected_answer"`
	IsCorrect      bool      `json:"is_correct"`
}

// TestResult is one submission attempt.
type TestResult struct {
	ID        uuid.UUID    `json:"id"`
	StudentID uuid.UUID    `json:"student_id"`
	TestID    uuid.UUID    `json:"test_id"`
	Score     float64      `json:"score"`
	Answers   []Answer     `json:"answers"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Status    ResultStatus `json:"status"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TestResultWithTitle is a caller's result joined with its test title.
type TestResultWithTitle struct {
	TestResult
	TestTitle string `json:"test_title"`
}

// SubmittedAnswer is one entry of a submission.
type SubmittedAnswer struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedOption string    `json:"selected_option"`
}

// SubmitTestRequest is the payload for grading an attempt.
type SubmitTestRequest struct {
	Answers   []SubmittedAnswer `json:"answers" binding:"required,min=1,dive"`
	StartTime time.Time         `json:"start_time" binding:"required"`
	Duration  int               `json:"duration" binding:"omitempty,min=0"`
}

// AnswerReview reveals correctness for one submitted answer.
type AnswerReview struct {
	QuestionID     uuid.UUID `json:"question_id"`
	Question       string    `json:"question,omitempty"`
	Options        []string  `json:"options,omitempty"`
	SelectedOption string    `json:"selected_option"`
	CorrectAnswer  string    `json:"correct_answer,omitempty"`
	Explanation    string    `json:"explanation,omitempty"`
	IsCorrect      bool      `json:"is_correct"`
}

// TestDetails is the graded summary returned on submit.
type TestDetails struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	TotalQuestions int            `json:"total_questions"`
	MarksObtained  int            `json:"marks_obtained"`
	Percentage     float64        `json:"percentage"`
	Passed         bool           `json:"passed"`
	Answers        []AnswerReview `json:"answers"`
}

// SubmitResponse is returned by the submit endpoint.
type SubmitResponse struct {
	TestResult  *TestResult  `json:"test_result"`
	TestDetails *TestDetails `json:"test_details"`
}

// SubmissionEvent is published to the live feed after a successful submit.
type SubmissionEvent struct {
	ResultID    uuid.UUID `json:"result_id"`
	TestID      uuid.UUID `json:"test_id"`
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	Score       float64   `json:"score"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submitted_at"`
}
