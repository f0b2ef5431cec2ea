package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/repository"
	"github.com/rs/zerolog"
)

const (
	DefaultSimilarLimit = 5
	MaxSimilarLimit     = 20
)

// ResourceService manages learning resources.
type ResourceService struct {
	resources ResourceStore
	log       zerolog.Logger
	now       func() time.Time
}

// NewResourceService creates a new ResourceService.
func NewResourceService(resources ResourceStore, log zerolog.Logger) *ResourceService {
	return &ResourceService{
		resources: resources,
		log:       log.With().Str("component", "resource_service").Logger(),
		now:       time.Now,
	}
}

// Create stores a resource owned by creator.
func (s *ResourceService) Create(ctx context.Context, creator *model.User, req model.CreateResourceRequest) (*model.Resource, error) {
	res := &model.Resource{
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		Type:             req.Type,
		URL:              strings.TrimSpace(req.URL),
		Category:         strings.TrimSpace(req.Category),
		Tags:             trimTags(req.Tags),
		IsPublic:         true,
		Difficulty:       req.Difficulty,
		RelatedResources: req.RelatedResources,
		CreatedBy:        creator.ID,
	}
	if req.IsPublic != nil {
		res.IsPublic = *req.IsPublic
	}
	if res.Difficulty == "" {
		res.Difficulty = model.LevelIntermediate
	}
	if req.Metadata != nil {
		res.Metadata = *req.Metadata
	}
	if res.Metadata.Language == "" {
		res.Metadata.Language = "en"
	}
	if res.RelatedResources == nil {
		res.RelatedResources = []uuid.UUID{}
	}

	if err := s.resources.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

// List returns public resources matching the filter.
func (s *ResourceService) List(ctx context.Context, f model.ResourceFilter) ([]model.Resource, error) {
	out, err := s.resources.ListPublic(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if out == nil {
		out = []model.Resource{}
	}
	return out, nil
}

// View fetches a resource and records the view.
func (s *ResourceService) View(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	res, err := s.resources.RecordView(ctx, id, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("record view: %w", err)
	}
	return res, nil
}

func (s *ResourceService) get(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return res, nil
}

// Update applies a partial update. Only the creator or an admin may update.
func (s *ResourceService) Update(ctx context.Context, user *model.User, id uuid.UUID, req model.UpdateResourceRequest) (*model.Resource, error) {
	res, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(user, res.CreatedBy) {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		res.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		res.Description = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		res.Type = *req.Type
	}
	if req.URL != nil {
		res.URL = strings.TrimSpace(*req.URL)
	}
	if req.Category != nil {
		res.Category = strings.TrimSpace(*req.Category)
	}
	if req.Tags != nil {
		res.Tags = trimTags(*req.Tags)
	}
	if req.IsPublic != nil {
		res.IsPublic = *req.IsPublic
	}
	if req.Difficulty != nil {
		res.Difficulty = *req.Difficulty
	}
	if req.Metadata != nil {
		res.Metadata = *req.Metadata
		if res.Metadata.Language == "" {
			res.Metadata.Language = "en"
		}
	}
	if req.RelatedResources != nil {
		res.RelatedResources = *req.RelatedResources
	}

	if err := s.resources.Update(ctx, res); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("update resource: %w", err)
	}
	return res, nil
}

// Delete removes a resource. Only the creator or an admin may delete.
func (s *ResourceService) Delete(ctx context.Context, user *model.User, id uuid.UUID) error {
	res, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(user, res.CreatedBy) {
		return ErrNotOwner
	}
	if err := s.resources.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}

// Similar returns up to limit public resources most similar to id.
func (s *ResourceService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]model.SimilarResource, error) {
	src, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	candidates, err := s.resources.ListSimilarCandidates(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("similar candidates: %w", err)
	}
	return RankSimilar(src, candidates, limit), nil
}

// SimilarityScore weighs a shared category 3, a shared difficulty 2 and each
// shared tag 1.
func SimilarityScore(src, other *model.Resource) int {
	score := 0
	if src.Category == other.Category {
		score += 3
	}
	if src.Difficulty == other.Difficulty {
		score += 2
	}
	tags := make(map[string]bool, len(src.Tags))
	for _, t := range src.Tags {
		tags[t] = true
	}
	for _, t := range other.Tags {
		if tags[t] {
			score++
			delete(tags, t)
		}
	}
	return score
}

// RankSimilar scores candidates against src and returns the best limit of
// them, ordered by score then view count, both descending. src itself,
// private resources and zero scores are excluded.
func RankSimilar(src *model.Resource, candidates []model.Resource, limit int) []model.SimilarResource {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	if limit > MaxSimilarLimit {
		limit = MaxSimilarLimit
	}

	out := []model.SimilarResource{}
	for i := range candidates {
		c := &candidates[i]
		if c.ID == src.ID || !c.IsPublic {
			continue
		}
		if score := SimilarityScore(src, c); score > 0 {
			out = append(out, model.SimilarResource{Resource: *c, SimilarityScore: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SimilarityScore != out[j].SimilarityScore {
			return out[i].SimilarityScore > out[j].SimilarityScore
		}
		if out[i].ViewCount != out[j].ViewCount {
			return out[i].ViewCount > out[j].ViewCount
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
