package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/questguide/questguide-backend/internal/model"
)

// AnalyticsRepository runs the read-only admin aggregations.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// StudentScoreRows returns every result, tagged with the category of its
// test's first question, newest first.
func (r *AnalyticsRepository) StudentScoreRows(ctx context.Context) ([]model.StudentScoreRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.student_id, r.score,
		        COALESCE(NULLIF(t.questions->0->>'category', ''), 'Uncategorized'),
		        r.created_at
		 FROM test_results r
		 JOIN tests t ON t.id = r.test_id
		 ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StudentScoreRow
	for rows.Next() {
		var row model.StudentScoreRow
		if err := rows.Scan(&row.StudentID, &row.Score, &row.Category, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AverageScore returns the mean score over all results, 0 when there are none.
func (r *AnalyticsRepository) AverageScore(ctx context.Context) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(AVG(score), 0)::float8 FROM test_results`).Scan(&avg)
	return avg, err
}

// ActiveStudentsSince counts distinct students with a result created at or after since.
func (r *AnalyticsRepository) ActiveStudentsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT student_id) FROM test_results WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}

// QuestionCountByCategory counts authored questions per category across all tests.
func (r *AnalyticsRepository) QuestionCountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT COALESCE(NULLIF(q->>'category', ''), 'Uncategorized') AS category, COUNT(*)
		 FROM tests, jsonb_array_elements(tests.questions) AS q
		 GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		out[category] = n
	}
	return out, rows.Err()
}

// RoleStats counts users per role with their active/inactive split.
func (r *AnalyticsRepository) RoleStats(ctx context.Context) ([]model.RoleStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role, COUNT(*), COUNT(*) FILTER (WHERE account_status = 'active')
		 FROM users
		 GROUP BY role
		 ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RoleStats{}
	for rows.Next() {
		var s model.RoleStats
		if err := rows.Scan(&s.Role, &s.Count, &s.Active); err != nil {
			return nil, err
		}
		s.Inactive = s.Count - s.Active
		out = append(out, s)
	}
	return out, rows.Err()
}

// LevelStats groups attempted tests by difficulty level.
func (r *AnalyticsRepository) LevelStats(ctx context.Context) ([]model.LevelStats, error) {
	rows, err := r.pool.Query(ctx,
		`WITH per_test AS (
		     SELECT test_id, COUNT(*) AS attempts, AVG(score) AS avg_score
		     FROM test_results
		     GROUP BY test_id
		 )
		 SELECT t.difficulty_level, COUNT(*), SUM(p.attempts)::bigint, AVG(p.avg_score)::float8
		 FROM per_test p
		 JOIN tests t ON t.id = p.test_id
		 GROUP BY t.difficulty_level
		 ORDER BY t.difficulty_level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LevelStats{}
	for rows.Next() {
		var s model.LevelStats
		if err := rows.Scan(&s.Difficulty, &s.TestCount, &s.TotalAttempts, &s.AvgScore); err != nil {
			return nil, err
		}
		if s.TestCount > 0 {
			s.AttemptsPerTest = float64(s.TotalAttempts) / float64(s.TestCount)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ResourceTypeStats groups resources by type, largest group first.
func (r *AnalyticsRepository) ResourceTypeStats(ctx context.Context) ([]model.ResourceTypeStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, COUNT(*), AVG(view_count)::float8, SUM(view_count)::bigint
		 FROM resources
		 GROUP BY type
		 ORDER BY COUNT(*) DESC, type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ResourceTypeStats{}
	for rows.Next() {
		var s model.ResourceTypeStats
		if err := rows.Scan(&s.Type, &s.Count, &s.AvgViews, &s.TotalViews); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HeatmapCells counts attempt starts per UTC weekday (0 = Sunday) and hour.
func (r *AnalyticsRepository) HeatmapCells(ctx context.Context) ([]model.HeatmapCell, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT EXTRACT(DOW FROM start_time AT TIME ZONE 'UTC')::int AS day,
		        EXTRACT(HOUR FROM start_time AT TIME ZONE 'UTC')::int AS hour,
		        COUNT(*), COUNT(DISTINCT student_id)
		 FROM test_results
		 GROUP BY day, hour
		 ORDER BY day, hour`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.HeatmapCell{}
	for rows.Next() {
		var c model.HeatmapCell
		if err := rows.Scan(&c.Day, &c.Hour, &c.Count, &c.StudentCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
