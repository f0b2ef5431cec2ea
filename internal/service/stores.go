package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
)

// UserStore is the user persistence the services depend on.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateAccount(ctx context.Context, u *model.User) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int, error)
}

// TokenStore tracks revoked token ids.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TestStore is the test persistence.
type TestStore interface {
	Create(ctx context.Context, t *model.Test) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
	List(ctx context.Context, activeOnly bool) ([]model.Test, error)
	Update(ctx context.Context, t *model.Test) error
	DeleteCascade(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int, error)
}

// ResultStore is the test result persistence.
type ResultStore interface {
	Create(ctx context.Context, res *model.TestResult) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.TestResultWithTitle, error)
	ListCompletedAttempts(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error)
	StatsByTest(ctx context.Context, testIDs []uuid.UUID) (map[uuid.UUID]model.TestStats, error)
}

// ResourceStore is the learning resource persistence.
type ResourceStore interface {
	Create(ctx context.Context, res *model.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Resource, error)
	RecordView(ctx context.Context, id uuid.UUID, at time.Time) (*model.Resource, error)
	ListPublic(ctx context.Context, f model.ResourceFilter) ([]model.Resource, error)
	Update(ctx context.Context, res *model.Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListSimilarCandidates(ctx context.Context, src *model.Resource) ([]model.Resource, error)
	TopPublicByCategories(ctx context.Context, categories []string, limit int) ([]model.ResourceSummary, error)
}

// AnalyticsStore runs the admin aggregations.
type AnalyticsStore interface {
	StudentScoreRows(ctx context.Context) ([]model.StudentScoreRow, error)
	AverageScore(ctx context.Context) (float64, error)
	ActiveStudentsSince(ctx context.Context, since time.Time) (int, error)
	QuestionCountByCategory(ctx context.Context) (map[string]int, error)
	RoleStats(ctx context.Context) ([]model.RoleStats, error)
	LevelStats(ctx context.Context) ([]model.LevelStats, error)
	ResourceTypeStats(ctx context.Context) ([]model.ResourceTypeStats, error)
	HeatmapCells(ctx context.Context) ([]model.HeatmapCell, error)
}

// EventPublisher fans out submission events.
type EventPublisher interface {
	PublishSubmission(ctx context.Context, ev model.SubmissionEvent) error
}
