package model

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType enumerates learning resource kinds.
type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceVideo    ResourceType = "video"
	ResourceLink     ResourceType = "link"
	ResourceQuiz     ResourceType = "quiz"
)

// ResourceMetadata is the free-form metadata bag stored as JSONB.
type ResourceMetadata struct {
	Duration      *int       `json:"duration,omitempty"`
	FileSize      *int64     `json:"file_size,omitempty"`
	PageCount     *int       `json:"page_count,omitempty"`
	Author        string     `json:"author,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Language      string     `json:"language"`
}

// Resource is a learning resource.
type Resource struct {
	ID               uuid.UUID        `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Type             ResourceType     `json:"type"`
	URL              string           `json:"url"`
	Category         string           `json:"category"`
	Tags             []string         `json:"tags"`
	IsPublic         bool             `json:"is_public"`
	ViewCount        int              `json:"view_count"`
	Likes            int              `json:"likes"`
	Difficulty       Level            `json:"difficulty"`
	Metadata         ResourceMetadata `json:"metadata"`
	RelatedResources []uuid.UUID      `json:"related_resources"`
	CreatedBy        uuid.UUID        `json:"created_by"`
	LastAccessed     *time.Time       `json:"last_accessed,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ResourceFilter narrows the public resource list.
type ResourceFilter struct {
	Category string       `form:"category"`
	Type     ResourceType `form:"type" binding:"omitempty,oneof=document video link quiz"`
	Tag      string       `form:"tag"`
}

// CreateResourceRequest is the payload for creating a resource.
type CreateResourceRequest struct {
	Title            string            `json:"title" binding:"required,notblank,min=3,max=200"`
	Description      string            `json:"description" binding:"required,notblank"`
	Type             ResourceType      `json:"type" binding:"required,oneof=document video link quiz"`
	URL              string            `json:"url" binding:"required,url"`
	Category         string            `json:"category" binding:"required,notblank"`
	Tags             []string          `json:"tags" binding:"omitempty,dive,notblank"`
	IsPublic         *bool             `json:"is_public"`
	Difficulty       Level             `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Metadata         *ResourceMetadata `json:"metadata"`
	RelatedResources []uuid.UUID       `json:"related_resources"`
}

// UpdateResourceRequest is a partial update.
type UpdateResourceRequest struct {
	Title            *string           `json:"title" binding:"omitempty,notblank,min=3,max=200"`
	Description      *string           `json:"description" binding:"omitempty,notblank"`
	Type             *ResourceType     `json:"type" binding:"omitempty,oneof=document video link quiz"`
	URL              *string           `json:"url" binding:"omitempty,url"`
	Category         *string           `json:"category" binding:"omitempty,notblank"`
	Tags             *[]string         `json:"tags" binding:"omitempty,dive,notblank"`
	IsPublic         *bool             `json:"is_public"`
	Difficulty       *Level            `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Metadata         *ResourceMetadata `json:"metadata"`
	RelatedResources *[]uuid.UUID      `json:"related_resources"`
}

// ResourceSummary is the compact shape used in recommendations.
type ResourceSummary struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        ResourceType `json:"type"`
	URL         string       `json:"url"`
	Category    string       `json:"category"`
	ViewCount   int          `json:"view_count"`
}

// SimilarResource is a resource with its similarity score.
type SimilarResource struct {
	Resource
	SimilarityScore int `json:"similarity_score"`
}
