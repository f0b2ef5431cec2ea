package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/questguide/questguide-backend/internal/model"
	"gopkg.in/yaml.v3"
)

// Fixture is the seed file layout.
type Fixture struct {
	Users     []FixtureUser     `yaml:"users"`
	Tests     []FixtureTest     `yaml:"tests"`
	Resources []FixtureResource `yaml:"resources"`
}

type FixtureUser struct {
	Name     string     `yaml:"name"`
	Email    string     `yaml:"email"`
	Password string     `yaml:"password"`
	Role     model.Role `yaml:"role"`
}

// FixtureTest is authored like the API payload. CreatedBy names a fixture
// user by email.
type FixtureTest struct {
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	Duration        int               `yaml:"duration"`
	TotalMarks      int               `yaml:"total_marks"`
	PassingMarks    int               `yaml:"passing_marks"`
	Tags            []string          `yaml:"tags"`
	DifficultyLevel model.Level       `yaml:"difficulty_level"`
	CreatedBy       string            `yaml:"created_by"`
	Questions       []FixtureQuestion `yaml:"questions"`
}

// FixtureQuestion keeps correct_answer untyped: an integer is an option
// index, a string is the option text, as in the API.
type FixtureQuestion struct {
	Question      string           `yaml:"question"`
	Options       []string         `yaml:"options"`
	CorrectAnswer interface{}      `yaml:"correct_answer"`
	Difficulty    model.Difficulty `yaml:"difficulty"`
	Category      string           `yaml:"category"`
	Explanation   string           `yaml:"explanation"`
}

type FixtureResource struct {
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Type        model.ResourceType `yaml:"type"`
	URL         string             `yaml:"url"`
	Category    string             `yaml:"category"`
	Tags        []string           `yaml:"tags"`
	Difficulty  model.Level        `yaml:"difficulty"`
	Private     bool               `yaml:"private"`
	CreatedBy   string             `yaml:"created_by"`
}

// LoadFixture decodes a seed file. Unknown keys are rejected.
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Request converts the fixture test into the create payload.
func (t FixtureTest) Request() (model.CreateTestRequest, error) {
	req := model.CreateTestRequest{
		Title:           t.Title,
		Description:     t.Description,
		Duration:        t.Duration,
		TotalMarks:      t.TotalMarks,
		PassingMarks:    t.PassingMarks,
		Tags:            t.Tags,
		DifficultyLevel: t.DifficultyLevel,
		Questions:       make([]model.QuestionInput, len(t.Questions)),
	}
	for i, q := range t.Questions {
		raw, err := json.Marshal(q.CorrectAnswer)
		if err != nil {
			return req, fmt.Errorf("question %d: %w", i, err)
		}
		req.Questions[i] = model.QuestionInput{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: raw,
			Difficulty:    q.Difficulty,
			Category:      q.Category,
			Explanation:   q.Explanation,
		}
	}
	return req, nil
}

// Request converts the fixture resource into the create payload.
func (r FixtureResource) Request() model.CreateResourceRequest {
	public := !r.Private
	return model.CreateResourceRequest{
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		URL:         r.URL,
		Category:    r.Category,
		Tags:        r.Tags,
		IsPublic:    &public,
		Difficulty:  r.Difficulty,
	}
}
