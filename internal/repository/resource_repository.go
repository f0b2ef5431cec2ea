package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/questguide/questguide-backend/internal/model"
)

// ResourceRepository handles learning resource data access.
type ResourceRepository struct {
	pool *pgxpool.Pool
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

const resourceColumns = `id, title, description, type, url, category, tags, is_public, view_count, likes,
	difficulty, metadata, related_resources::text[], created_by, last_accessed, created_at, updated_at`

func scanResource(row pgx.Row) (*model.Resource, error) {
	res := &model.Resource{}
	var related []string
	err := row.Scan(&res.ID, &res.Title, &res.Description, &res.Type, &res.URL, &res.Category,
		&res.Tags, &res.IsPublic, &res.ViewCount, &res.Likes, &res.Difficulty, &res.Metadata,
		&related, &res.CreatedBy, &res.LastAccessed, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	res.RelatedResources = make([]uuid.UUID, 0, len(related))
	for _, s := range related {
		if id, err := uuid.Parse(s); err == nil {
			res.RelatedResources = append(res.RelatedResources, id)
		}
	}
	return res, nil
}

func collectResources(rows pgx.Rows) ([]model.Resource, error) {
	defer rows.Close()
	var out []model.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// Create inserts a new resource.
func (r *ResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO resources (id, title, description, type, url, category, tags, is_public,
		                        difficulty, metadata, related_resources, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::uuid[], $12)
		 RETURNING view_count, likes, created_at, updated_at`,
		res.ID, res.Title, res.Description, res.Type, res.URL, res.Category, res.Tags, res.IsPublic,
		res.Difficulty, res.Metadata, uuidStrings(res.RelatedResources), res.CreatedBy,
	).Scan(&res.ViewCount, &res.Likes, &res.CreatedAt, &res.UpdatedAt)
}

// GetByID retrieves a resource without touching its counters.
func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	return scanResource(r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id))
}

// RecordView increments view_count, stamps last_accessed and returns the
// updated resource.
func (r *ResourceRepository) RecordView(ctx context.Context, id uuid.UUID, at time.Time) (*model.Resource, error) {
	return scanResource(r.pool.QueryRow(ctx,
		`UPDATE resources SET view_count = view_count + 1, last_accessed = $2
		 WHERE id = $1
		 RETURNING `+resourceColumns, id, at))
}

// ListPublic returns public resources matching the filter, newest first.
func (r *ResourceRepository) ListPublic(ctx context.Context, f model.ResourceFilter) ([]model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE is_public = TRUE`
	var args []any

	if f.Category != "" {
		args = append(args, f.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += ` AND type = $` + strconv.Itoa(len(args))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		query += ` AND $` + strconv.Itoa(len(args)) + ` = ANY(tags)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectResources(rows)
}

// Update overwrites all mutable fields of a resource.
func (r *ResourceRepository) Update(ctx context.Context, res *model.Resource) error {
	if res.Tags == nil {
		res.Tags = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`UPDATE resources
		 SET title = $1, description = $2, type = $3, url = $4, category = $5, tags = $6,
		     is_public = $7, difficulty = $8, metadata = $9, related_resources = $10::uuid[], updated_at = NOW()
		 WHERE id = $11
		 RETURNING updated_at`,
		res.Title, res.Description, res.Type, res.URL, res.Category, res.Tags,
		res.IsPublic, res.Difficulty, res.Metadata, uuidStrings(res.RelatedResources), res.ID,
	).Scan(&res.UpdatedAt)
	return notFound(err)
}

// Delete removes a resource.
func (r *ResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSimilarCandidates returns public resources other than src that share
// its category, its difficulty or at least one tag.
func (r *ResourceRepository) ListSimilarCandidates(ctx context.Context, src *model.Resource) ([]model.Resource, error) {
	tags := src.Tags
	if tags == nil {
		tags = []string{}
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+resourceColumns+` FROM resources
		 WHERE is_public = TRUE AND id <> $1
		   AND (category = $2 OR difficulty = $3 OR tags && $4::text[])`,
		src.ID, src.Category, src.Difficulty, tags)
	if err != nil {
		return nil, err
	}
	return collectResources(rows)
}

// TopPublicByCategories returns the most viewed public resources in any of
// the categories.
func (r *ResourceRepository) TopPublicByCategories(ctx context.Context, categories []string, limit int) ([]model.ResourceSummary, error) {
	if len(categories) == 0 || limit <= 0 {
		return []model.ResourceSummary{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, type, url, category, view_count
		 FROM resources
		 WHERE is_public = TRUE AND category = ANY($1::text[])
		 ORDER BY view_count DESC, created_at DESC
		 LIMIT $2`, categories, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ResourceSummary{}
	for rows.Next() {
		var s model.ResourceSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Type, &s.URL, &s.Category, &s.ViewCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ExistsByTitle reports whether a resource with this exact title exists.
func (r *ResourceRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM resources WHERE title = $1)`, title).Scan(&exists)
	return exists, err
}
