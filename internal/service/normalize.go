package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
)

// NormalizeQuestions converts authored questions into their stored form.
// Every stored correct answer is the literal text of one of the options:
//   - a JSON number is an option index and must be in range
//   - a JSON string that equals an option is taken literally
//   - a JSON string that equals no option but is a decimal index in range is
//     resolved to that option (legacy index-as-string form)
//
// Duplicate options, fractional or out-of-range indexes and strings that
// match nothing are rejected. Supplied question ids are kept unless they
// repeat within the list.
func NormalizeQuestions(inputs []model.QuestionInput) ([]model.Question, error) {
	fields := make(map[string]string)
	out := make([]model.Question, 0, len(inputs))
	seenIDs := make(map[uuid.UUID]bool, len(inputs))

	for i, in := range inputs {
		prefix := fmt.Sprintf("questions[%d]", i)

		if dup, ok := duplicateOption(in.Options); ok {
			fields[prefix+".options"] = fmt.Sprintf("option %q appears more than once", dup)
			continue
		}

		answer, err := resolveCorrectAnswer(in.CorrectAnswer, in.Options)
		if err != nil {
			fields[prefix+".correct_answer"] = err.Error()
			continue
		}

		id := uuid.New()
		if in.ID != nil && *in.ID != uuid.Nil && !seenIDs[*in.ID] {
			id = *in.ID
		}
		seenIDs[id] = true

		difficulty := in.Difficulty
		if difficulty == "" {
			difficulty = model.DifficultyMedium
		}

		out = append(out, model.Question{
			ID:            id,
			Question:      strings.TrimSpace(in.Question),
			Options:       in.Options,
			CorrectAnswer: answer,
			Difficulty:    difficulty,
			Category:      strings.TrimSpace(in.Category),
			Explanation:   in.Explanation,
		})
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return out, nil
}

func duplicateOption(options []string) (string, bool) {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if seen[o] {
			return o, true
		}
		seen[o] = true
	}
	return "", false
}

func resolveCorrectAnswer(raw json.RawMessage, options []string) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("correct answer is required")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("correct answer must be a string or an option index")
		}
		for _, o := range options {
			if o == s {
				return s, nil
			}
		}
		if idx, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return optionAt(options, idx)
		}
		return "", fmt.Errorf("correct answer %q does not match any option", s)

	default:
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return "", fmt.Errorf("correct answer must be a string or an option index")
		}
		idx, err := strconv.Atoi(n.String())
		if err != nil {
			return "", fmt.Errorf("correct answer index must be a whole number")
		}
		return optionAt(options, idx)
	}
}

func optionAt(options []string, idx int) (string, error) {
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("correct answer index %d is out of range for %d options", idx, len(options))
	}
	return options[idx], nil
}

// RepairQuestions rewrites stored correct answers that are not one of their
// options but are a decimal index into them. It reports whether any question
// changed.
func RepairQuestions(questions []model.Question) bool {
	changed := false
	for i := range questions {
		q := &questions[i]
		if containsString(q.Options, q.CorrectAnswer) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(q.CorrectAnswer))
		if err != nil || idx < 0 || idx >= len(q.Options) {
			continue
		}
		q.CorrectAnswer = q.Options[idx]
		changed = true
	}
	return changed
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
