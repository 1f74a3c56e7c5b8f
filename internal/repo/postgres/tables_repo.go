package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cueside/club-bookings/internal/domain"
)

type TableRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Table, error)
	ListActive(ctx context.Context) ([]domain.Table, error)
}

type TableRepoImpl struct{ pool *pgxpool.Pool }

func NewTableRepo(pool *pgxpool.Pool) *TableRepoImpl { return &TableRepoImpl{pool: pool} }

const tableCols = `id, name, type, hourly_rate, active, created_at, updated_at`

func (r *TableRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Table, error) {
	const q = `SELECT ` + tableCols + ` FROM tables WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.Table
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.Type, &t.HourlyRate, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TableRepoImpl) ListActive(ctx context.Context) ([]domain.Table, error) {
	const q = `SELECT ` + tableCols + ` FROM tables WHERE active ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ts []domain.Table
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.HourlyRate, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

var _ TableRepo = (*TableRepoImpl)(nil)
