package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/repository"
	"github.com/rs/zerolog"
)

// TestService manages tests and grades submissions.
type TestService struct {
	tests     TestStore
	results   ResultStore
	events    EventPublisher
	retention time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

// NewTestService creates a new TestService. retention sets expires_at on new
// results; zero disables expiry. events may be nil.
func NewTestService(tests TestStore, results ResultStore, events EventPublisher, retention time.Duration, log zerolog.Logger) *TestService {
	return &TestService{
		tests:     tests,
		results:   results,
		events:    events,
		retention: retention,
		log:       log.With().Str("component", "test_service").Logger(),
		now:       time.Now,
	}
}

// Create normalizes and stores a new test owned by creator.
func (s *TestService) Create(ctx context.Context, creator *model.User, req model.CreateTestRequest) (*model.Test, error) {
	if req.PassingMarks > req.TotalMarks {
		return nil, newValidationError("passing_marks", "Passing marks cannot exceed total marks")
	}
	questions, err := NormalizeQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	t := &model.Test{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Duration:        req.Duration,
		TotalMarks:      req.TotalMarks,
		PassingMarks:    req.PassingMarks,
		Questions:       questions,
		CreatedBy:       creator.ID,
		IsActive:        true,
		Tags:            trimTags(req.Tags),
		DifficultyLevel: req.DifficultyLevel,
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if t.DifficultyLevel == "" {
		t.DifficultyLevel = model.LevelIntermediate
	}

	if err := s.tests.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}
	s.log.Info().Str("test_id", t.ID.String()).Int("questions", len(questions)).Msg("Test created")
	return t, nil
}

// List returns the tests visible to user without correct answers. Students
// see active tests only. Admins see every test with its statistics; a
// statistics failure degrades to zeroed stats.
func (s *TestService) List(ctx context.Context, user *model.User) ([]model.PublicTest, error) {
	tests, err := s.tests.List(ctx, !user.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}

	out := make([]model.PublicTest, len(tests))
	for i := range tests {
		out[i] = tests[i].Public()
	}
	if !user.IsAdmin() || len(tests) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(tests))
	for i, t := range tests {
		ids[i] = t.ID
	}
	stats, err := s.results.StatsByTest(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load test statistics, using zeroed stats")
		stats = nil
	}
	for i := range out {
		st := stats[out[i].ID]
		out[i].Stats = &st
	}
	return out, nil
}

// Get returns a stored test.
func (s *TestService) Get(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	return t, nil
}

// Update merges a partial update onto the stored test and re-validates the
// result: passing marks are checked against the merged total and replaced
// questions are normalized again.
func (s *TestService) Update(ctx context.Context, user *model.User, id uuid.UUID, req model.UpdateTestRequest) (*model.Test, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(user, t.CreatedBy) {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.Duration != nil {
		t.Duration = *req.Duration
	}
	if req.TotalMarks != nil {
		t.TotalMarks = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		t.PassingMarks = *req.PassingMarks
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if req.Tags != nil {
		t.Tags = trimTags(*req.Tags)
	}
	if req.DifficultyLevel != nil {
		t.DifficultyLevel = *req.DifficultyLevel
	}
	if t.PassingMarks > t.TotalMarks {
		return nil, newValidationError("passing_marks", "Passing marks cannot exceed total marks")
	}
	if req.Questions != nil {
		questions, err := NormalizeQuestions(*req.Questions)
		if err != nil {
			return nil, err
		}
		t.Questions = questions
	}

	if err := s.tests.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("update test: %w", err)
	}
	return t, nil
}

// Delete removes a test together with all of its results.
func (s *TestService) Delete(ctx context.Context, user *model.User, id uuid.UUID) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(user, t.CreatedBy) {
		return ErrNotOwner
	}

	removed, err := s.tests.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTestNotFound
		}
		return fmt.Errorf("delete test: %w", err)
	}
	s.log.Info().Str("test_id", id.String()).Int64("results_removed", removed).Msg("Test deleted")
	return nil
}

// Stats summarizes all attempts of a test.
func (s *TestService) Stats(ctx context.Context, id uuid.UUID) (*model.TestStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	stats, err := s.results.StatsByTest(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("test stats: %w", err)
	}
	st := stats[id]
	return &st, nil
}

// Submit grades and stores an attempt by student, then publishes the
// submission event. A publish failure is logged and does not fail the call.
func (s *TestService) Submit(ctx context.Context, student *model.User, id uuid.UUID, req model.SubmitTestRequest) (*model.SubmitResponse, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	g, err := Grade(t, req.Answers)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	start := req.StartTime.UTC()
	if start.After(now) {
		start = now
	}

	res := &model.TestResult{
		StudentID: student.ID,
		TestID:    t.ID,
		Score:     g.Percentage,
		Answers:   g.Answers,
		StartTime: start,
		EndTime:   now,
		Status:    model.ResultCompleted,
	}
	if s.retention > 0 {
		exp := now.Add(s.retention)
		res.ExpiresAt = &exp
	}
	if err := s.results.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	if s.events != nil {
		ev := model.SubmissionEvent{
			ResultID:    res.ID,
			TestID:      t.ID,
			StudentID:   student.ID,
			StudentName: student.Name,
			Score:       res.Score,
			Passed:      g.Passed,
			SubmittedAt: now,
		}
		if err := s.events.PublishSubmission(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("test_id", t.ID.String()).Msg("Failed to publish submission event")
		}
	}

	return &model.SubmitResponse{
		TestResult: res,
		TestDetails: &model.TestDetails{
			Title:          t.Title,
			Description:    t.Description,
			TotalQuestions: len(t.Questions),
			MarksObtained:  g.MarksObtained,
			Percentage:     g.Percentage,
			Passed:         g.Passed,
			Answers:        g.Review,
		},
	}, nil
}

// Results returns the caller's attempts, newest first.
func (s *TestService) Results(ctx context.Context, student *model.User) ([]model.TestResultWithTitle, error) {
	results, err := s.results.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []model.TestResultWithTitle{}
	}
	return results, nil
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
