package postgres

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRepo lets booking creation be retried safely: the same
// Idempotency-Key always maps back to the first booking it created.
type IdempotencyRepo interface {
	// CheckOrCreate returns the booking already recorded for key, or 0.
	// With a non-zero bookingID it records the mapping when absent.
	CheckOrCreate(ctx context.Context, key string, bookingID int64) (existingBookingID int64, err error)
	// CleanupExpired removes expired idempotency records.
	CleanupExpired(ctx context.Context) (int64, error)
}

type IdempotencyRepoImpl struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepo(pool *pgxpool.Pool) *IdempotencyRepoImpl {
	return &IdempotencyRepoImpl{pool: pool}
}

func (r *IdempotencyRepoImpl) CheckOrCreate(ctx context.Context, key string, bookingID int64) (int64, error) {
	// Hash the idempotency key for privacy and consistent length
	keyHash := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var existingBookingID int64
	const checkQuery = `SELECT booking_id FROM booking_idempotency WHERE key_hash = $1`
	err := r.pool.QueryRow(ctx, checkQuery, keyHash).Scan(&existingBookingID)
	if err == nil {
		return existingBookingID, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}

	if bookingID > 0 {
		const insertQuery = `
			INSERT INTO booking_idempotency (key_hash, booking_id, expires_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key_hash) DO NOTHING`

		expiresAt := time.Now().Add(24 * time.Hour)
		if _, err := r.pool.Exec(ctx, insertQuery, keyHash, bookingID, expiresAt); err != nil {
			return 0, err
		}
	}

	return 0, nil
}

func (r *IdempotencyRepoImpl) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	const query = `DELETE FROM booking_idempotency WHERE expires_at < now()`
	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

var _ IdempotencyRepo = (*IdempotencyRepoImpl)(nil)
