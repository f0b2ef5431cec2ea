package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/service"
)

// AuthService is what AuthHandler needs from service.AuthService.
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Logout(ctx context.Context, claims *service.Claims) error
	UpdateMe(ctx context.Context, u *model.User, req model.UpdateMeRequest) (*model.User, string, error)
}

// TestService is what TestHandler needs from service.TestService.
type TestService interface {
	List(ctx context.Context, user *model.User) ([]model.PublicTest, error)
	Create(ctx context.Context, creator *model.User, req model.CreateTestRequest) (*model.Test, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Test, error)
	Update(ctx context.Context, user *model.User, id uuid.UUID, req model.UpdateTestRequest) (*model.Test, error)
	Delete(ctx context.Context, user *model.User, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*model.TestStats, error)
	Submit(ctx context.Context, student *model.User, id uuid.UUID, req model.SubmitTestRequest) (*model.SubmitResponse, error)
	Results(ctx context.Context, student *model.User) ([]model.TestResultWithTitle, error)
}

// ResourceService is what ResourceHandler needs from service.ResourceService.
type ResourceService interface {
	Create(ctx context.Context, creator *model.User, req model.CreateResourceRequest) (*model.Resource, error)
	List(ctx context.Context, f model.ResourceFilter) ([]model.Resource, error)
	View(ctx context.Context, id uuid.UUID) (*model.Resource, error)
	Update(ctx context.Context, user *model.User, id uuid.UUID, req model.UpdateResourceRequest) (*model.Resource, error)
	Delete(ctx context.Context, user *model.User, id uuid.UUID) error
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]model.SimilarResource, error)
}

// StatsService is what UserHandler needs for the admin views.
type StatsService interface {
	Students(ctx context.Context) ([]model.StudentSummary, error)
	AdminStats(ctx context.Context) (*model.AdminStats, error)
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	ActivityHeatmap(ctx context.Context) (*model.ActivityHeatmap, error)
}

// PerformanceService computes a student's analytics view.
type PerformanceService interface {
	ForUser(ctx context.Context, user *model.User) (*model.Performance, error)
}

var (
	_ AuthService        = (*service.AuthService)(nil)
	_ TestService        = (*service.TestService)(nil)
	_ ResourceService    = (*service.ResourceService)(nil)
	_ StatsService       = (*service.StatsService)(nil)
	_ PerformanceService = (*service.PerformanceService)(nil)
)
