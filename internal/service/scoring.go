package service

import (
	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
)

// Grading is the outcome of scoring one submission.
type Grading struct {
	Answers       []model.Answer
	Review        []model.AnswerReview
	MarksObtained int
	Percentage    float64
	Passed        bool
}

// Grade scores submitted answers against a test. An answer is correct when
// the selected option equals the question's correct answer exactly.
// Unanswered questions count as wrong; answers naming an unknown question are
// kept and marked wrong; repeated answers to the same question count once.
func Grade(t *model.Test, submitted []model.SubmittedAnswer) (*Grading, error) {
	total := len(t.Questions)
	if total == 0 {
		return nil, ErrTestHasNoItems
	}

	byID := make(map[uuid.UUID]model.Question, total)
	for _, q := range t.Questions {
		byID[q.ID] = q
	}

	g := &Grading{
		Answers: make([]model.Answer, 0, len(submitted)),
		Review:  make([]model.AnswerReview, 0, len(submitted)),
	}
	answered := make(map[uuid.UUID]bool, len(submitted))

	for _, sa := range submitted {
		if answered[sa.QuestionID] {
			continue
		}
		answered[sa.QuestionID] = true

		q, known := byID[sa.QuestionID]
		correct := known && sa.SelectedOption == q.CorrectAnswer
		if correct {
			g.MarksObtained++
		}

		g.Answers = append(g.Answers, model.Answer{
			QuestionID:     sa.QuestionID,
			SelectedAnswer: sa.SelectedOption,
			IsCorrect:      correct,
		})

		review := model.AnswerReview{
			QuestionID:     sa.QuestionID,
			SelectedOption: sa.SelectedOption,
			IsCorrect:      correct,
		}
		if known {
			review.Question = q.Question
			review.Options = q.Options
			review.CorrectAnswer = q.CorrectAnswer
			review.Explanation = q.Explanation
		}
		g.Review = append(g.Review, review)
	}

	g.Percentage = float64(g.MarksObtained) / float64(total) * 100
	g.Passed = g.Percentage >= float64(t.PassingMarks)
	return g, nil
}

// Regrade recomputes correctness flags and the score of a stored result
// against the current questions with the same rules as Grade: answers join
// by question id only, unknown ids stay wrong and a question counts once.
// It reports whether anything changed.
func Regrade(t *model.Test, res *model.TestResult) bool {
	if len(t.Questions) == 0 {
		return false
	}

	changed := false
	correct := 0
	seen := make(map[uuid.UUID]bool, len(res.Answers))
	for i := range res.Answers {
		a := &res.Answers[i]
		q, ok := t.QuestionByID(a.QuestionID)
		isCorrect := ok && !seen[a.QuestionID] && a.SelectedAnswer == q.CorrectAnswer
		seen[a.QuestionID] = true
		if isCorrect != a.IsCorrect {
			a.IsCorrect = isCorrect
			changed = true
		}
		if isCorrect {
			correct++
		}
	}

	score := float64(correct) / float64(len(t.Questions)) * 100
	if score != res.Score {
		res.Score = score
		changed = true
	}
	return changed
}

// RepairTest fixes index-valued correct answers of a test and regrades its
// results. It reports whether the test or any result changed.
func RepairTest(t *model.Test, results []model.TestResult) bool {
	changed := RepairQuestions(t.Questions)
	for i := range results {
		if Regrade(t, &results[i]) {
			changed = true
		}
	}
	return changed
}
