package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/questguide/questguide-backend/internal/model"
)

// TestResultRepository handles submission attempts. Answers live in a JSONB column.
type TestResultRepository struct {
	pool *pgxpool.Pool
}

// NewTestResultRepository creates a new TestResultRepository.
func NewTestResultRepository(pool *pgxpool.Pool) *TestResultRepository {
	return &TestResultRepository{pool: pool}
}

const resultColumns = `id, student_id, test_id, score, answers, start_time, end_time, status,
	expires_at, created_at, updated_at`

func scanResult(row pgx.Row, extra ...any) (*model.TestResult, error) {
	res := &model.TestResult{}
	dest := []any{&res.ID, &res.StudentID, &res.TestID, &res.Score, &res.Answers,
		&res.StartTime, &res.EndTime, &res.Status, &res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

func collectResults(rows pgx.Rows) ([]model.TestResult, error) {
	defer rows.Close()
	var results []model.TestResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

// Create inserts a graded attempt.
func (r *TestResultRepository) Create(ctx context.Context, res *model.TestResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.Answers == nil {
		res.Answers = []model.Answer{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO test_results (id, student_id, test_id, score, answers, start_time, end_time, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		res.ID, res.StudentID, res.TestID, res.Score, res.Answers,
		res.StartTime, res.EndTime, res.Status, res.ExpiresAt,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// ListByStudent returns a student's results joined with their test titles,
// newest first.
func (r *TestResultRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.TestResultWithTitle, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.student_id, r.test_id, r.score, r.answers, r.start_time, r.end_time, r.status,
		        r.expires_at, r.created_at, r.updated_at, t.title
		 FROM test_results r
		 JOIN tests t ON t.id = r.test_id
		 WHERE r.student_id = $1
		 ORDER BY r.created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TestResultWithTitle
	for rows.Next() {
		var title string
		res, err := scanResult(rows, &title)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TestResultWithTitle{TestResult: *res, TestTitle: title})
	}
	return out, rows.Err()
}

// ListCompletedAttempts returns a student's completed results, newest first,
// each joined with its parent test.
func (r *TestResultRepository) ListCompletedAttempts(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM test_results
		 WHERE student_id = $1 AND status = $2
		 ORDER BY created_at DESC`, studentID, model.ResultCompleted)
	if err != nil {
		return nil, err
	}
	results, err := collectResults(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(results))
	seen := make(map[uuid.UUID]bool)
	for _, res := range results {
		if !seen[res.TestID] {
			seen[res.TestID] = true
			ids = append(ids, res.TestID)
		}
	}

	testRows, err := r.pool.Query(ctx,
		`SELECT `+testColumns+` FROM tests WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	tests, err := collectTests(testRows)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Test, len(tests))
	for i := range tests {
		byID[tests[i].ID] = &tests[i]
	}

	attempts := make([]model.Attempt, len(results))
	for i, res := range results {
		attempts[i] = model.Attempt{Result: res, Test: byID[res.TestID]}
	}
	return attempts, nil
}

// StatsByTest summarizes attempts per test for the given ids. Tests without
// attempts are absent from the map.
func (r *TestResultRepository) StatsByTest(ctx context.Context, testIDs []uuid.UUID) (map[uuid.UUID]model.TestStats, error) {
	out := make(map[uuid.UUID]model.TestStats, len(testIDs))
	if len(testIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT r.test_id, COUNT(*), AVG(r.score), MAX(r.score), MIN(r.score),
		        COUNT(*) FILTER (WHERE r.score >= t.passing_marks)
		 FROM test_results r
		 JOIN tests t ON t.id = r.test_id
		 WHERE r.test_id = ANY($1::uuid[])
		 GROUP BY r.test_id`, uuidStrings(testIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var s model.TestStats
		if err := rows.Scan(&id, &s.Attempts, &s.AverageScore, &s.MaxScore, &s.MinScore, &s.PassCount); err != nil {
			return nil, err
		}
		if s.Attempts > 0 {
			s.PassRate = float64(s.PassCount) / float64(s.Attempts) * 100
		}
		out[id] = s
	}
	return out, rows.Err()
}

// DeleteExpired removes results whose retention has lapsed.
func (r *TestResultRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM test_results WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
