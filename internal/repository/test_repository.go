package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/questguide/questguide-backend/internal/database"
	"github.com/questguide/questguide-backend/internal/model"
)

// TestRepository handles test data access. Questions live in a JSONB column.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

const testColumns = `id, title, description, duration, total_marks, passing_marks, questions,
	created_by, is_active, tags, difficulty_level, created_at, updated_at`

func scanTest(row pgx.Row) (*model.Test, error) {
	t := &model.Test{}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Duration, &t.TotalMarks, &t.PassingMarks,
		&t.Questions, &t.CreatedBy, &t.IsActive, &t.Tags, &t.DifficultyLevel, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func collectTests(rows pgx.Rows) ([]model.Test, error) {
	defer rows.Close()
	var tests []model.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, *t)
	}
	return tests, rows.Err()
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (id, title, description, duration, total_marks, passing_marks, questions,
		                    created_by, is_active, tags, difficulty_level)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`,
		t.ID, t.Title, t.Description, t.Duration, t.TotalMarks, t.PassingMarks, t.Questions,
		t.CreatedBy, t.IsActive, t.Tags, t.DifficultyLevel,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a test by id.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	return scanTest(r.pool.QueryRow(ctx, `SELECT `+testColumns+` FROM tests WHERE id = $1`, id))
}

// List returns tests newest first. activeOnly restricts to is_active tests.
func (r *TestRepository) List(ctx context.Context, activeOnly bool) ([]model.Test, error) {
	query := `SELECT ` + testColumns + ` FROM tests`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectTests(rows)
}

// Update overwrites all mutable fields of a test.
func (r *TestRepository) Update(ctx context.Context, t *model.Test) error {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`UPDATE tests
		 SET title = $1, description = $2, duration = $3, total_marks = $4, passing_marks = $5,
		     questions = $6, is_active = $7, tags = $8, difficulty_level = $9, updated_at = NOW()
		 WHERE id = $10
		 RETURNING updated_at`,
		t.Title, t.Description, t.Duration, t.TotalMarks, t.PassingMarks,
		t.Questions, t.IsActive, t.Tags, t.DifficultyLevel, t.ID,
	).Scan(&t.UpdatedAt)
	return notFound(err)
}

// DeleteCascade removes a test and all of its results in one transaction.
// It returns the number of results removed.
func (r *TestRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (int64, error) {
	var removed int64
	err := database.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM test_results WHERE test_id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete results: %w", err)
		}
		removed = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete test: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of tests.
func (r *TestRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tests`).Scan(&n)
	return n, err
}

// ExistsByTitle reports whether a test with this exact title exists. Used by
// the seeding CLI to stay idempotent.
func (r *TestRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tests WHERE title = $1)`, title).Scan(&exists)
	return exists, err
}

// RepairFunc rewrites a test's questions and the results graded against it.
// It reports whether anything changed.
type RepairFunc func(t *model.Test, results []model.TestResult) (changed bool, err error)

// RepairAll walks every test and lets fn rewrite it together with its
// results. Each test is repaired in its own transaction with the test row
// locked. It returns how many tests changed.
func (r *TestRepository) RepairAll(ctx context.Context, fn RepairFunc) (int, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM tests ORDER BY created_at`)
	if err != nil {
		return 0, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, id := range ids {
		var did bool
		err := database.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
			t, err := scanTest(tx.QueryRow(ctx, `SELECT `+testColumns+` FROM tests WHERE id = $1 FOR UPDATE`, id))
			if err != nil {
				return err
			}
			resRows, err := tx.Query(ctx, `SELECT `+resultColumns+` FROM test_results WHERE test_id = $1`, id)
			if err != nil {
				return err
			}
			results, err := collectResults(resRows)
			if err != nil {
				return err
			}

			did, err = fn(t, results)
			if err != nil || !did {
				return err
			}

			if _, err := tx.Exec(ctx,
				`UPDATE tests SET questions = $1, updated_at = NOW() WHERE id = $2`, t.Questions, t.ID); err != nil {
				return fmt.Errorf("update questions: %w", err)
			}
			for _, res := range results {
				if _, err := tx.Exec(ctx,
					`UPDATE test_results SET answers = $1, score = $2, updated_at = NOW() WHERE id = $3`,
					res.Answers, res.Score, res.ID); err != nil {
					return fmt.Errorf("update result %s: %w", res.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return changed, fmt.Errorf("repair test %s: %w", id, err)
		}
		if did {
			changed++
		}
	}
	return changed, nil
}
