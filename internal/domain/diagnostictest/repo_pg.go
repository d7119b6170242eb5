package diagnostictest

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagtrack/diagtrack/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const testCols = `id, patient_name, test_type, result, test_date, notes, created_at, updated_at`

func (r *repoPG) scanRow(row pgx.Row) (*DiagnosticTest, error) {
	var t DiagnosticTest
	err := row.Scan(&t.ID, &t.PatientName, &t.TestType, &t.Result, &t.TestDate, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *DiagnosticTest) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO diagnostic_tests (patient_name, test_type, result, test_date, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		t.PatientName, t.TestType, t.Result, t.TestDate, t.Notes, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	return db.Classify("create diagnostic test", err)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*DiagnosticTest, error) {
	t, err := r.scanRow(r.pool.QueryRow(ctx, `SELECT `+testCols+` FROM diagnostic_tests WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify("get diagnostic test", err)
	}
	return t, nil
}

func (r *repoPG) Update(ctx context.Context, t *DiagnosticTest) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE diagnostic_tests SET test_type=$2, result=$3, test_date=$4, notes=$5, updated_at=$6
		WHERE id = $1`,
		t.ID, t.TestType, t.Result, t.TestDate, t.Notes, t.UpdatedAt)
	if err != nil {
		return db.Classify("update diagnostic test", err)
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound("update diagnostic test")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM diagnostic_tests WHERE id = $1`, id)
	if err != nil {
		return db.Classify("delete diagnostic test", err)
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound("delete diagnostic test")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*DiagnosticTest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+testCols+` FROM diagnostic_tests ORDER BY id`)
	if err != nil {
		return nil, db.Classify("list diagnostic tests", err)
	}
	defer rows.Close()

	items := []*DiagnosticTest{}
	for rows.Next() {
		t, err := r.scanRow(rows)
		if err != nil {
			return nil, db.Classify("scan diagnostic test", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify("list diagnostic tests", err)
	}
	return items, nil
}

func (r *repoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM diagnostic_tests`).Scan(&n); err != nil {
		return 0, db.Classify("count diagnostic tests", err)
	}
	return n, nil
}

func (r *repoPG) First(ctx context.Context) (*DiagnosticTest, error) {
	t, err := r.scanRow(r.pool.QueryRow(ctx, `SELECT `+testCols+` FROM diagnostic_tests ORDER BY id LIMIT 1`))
	if err != nil {
		return nil, db.Classify("first diagnostic test", err)
	}
	return t, nil
}

func (r *repoPG) Ping(ctx context.Context) error {
	var alive int
	err := r.pool.QueryRow(ctx, `SELECT 1 AS alive`).Scan(&alive)
	if err == nil && alive != 1 {
		err = errors.New("liveness check returned unexpected value")
	}
	return db.Classify("ping database", err)
}
