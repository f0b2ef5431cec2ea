package service

import (
	"context"
	"fmt"

	"github.com/questguide/questguide-backend/internal/model"
	"github.com/rs/zerolog"
)

// PerformanceService serves a student's analytics view.
type PerformanceService struct {
	results   ResultStore
	resources ResourceStore
	log       zerolog.Logger
}

// NewPerformanceService creates a new PerformanceService.
func NewPerformanceService(results ResultStore, resources ResourceStore, log zerolog.Logger) *PerformanceService {
	return &PerformanceService{
		results:   results,
		resources: resources,
		log:       log.With().Str("component", "performance_service").Logger(),
	}
}

// ForUser computes the analytics view of user from their completed attempts
// and recommends resources for the weak subjects.
func (s *PerformanceService) ForUser(ctx context.Context, user *model.User) (*model.Performance, error) {
	attempts, err := s.results.ListCompletedAttempts(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}

	p := BuildPerformance(user.Name, attempts)
	if len(p.WeakSubjects) == 0 {
		return p, nil
	}

	recs, err := s.resources.TopPublicByCategories(ctx, p.WeakSubjects, RecommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("recommend resources: %w", err)
	}
	p.RecommendedResources = recs
	return p, nil
}
