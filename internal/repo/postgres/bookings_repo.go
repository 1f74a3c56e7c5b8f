package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cueside/club-bookings/internal/domain"
)

type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDWithToken(ctx context.Context, id int64, token string) (*domain.Booking, error)
	ListForTableOnDay(ctx context.Context, tableID int64, day time.Time) ([]domain.Booking, error)
	List(ctx context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error)
	Update(ctx context.Context, id int64, patch BookingUpdate) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64) (bool, error)
	CancelWithToken(ctx context.Context, id int64, token string) (bool, error)
	Finalize(ctx context.Context, id int64, additionalCharges, total float64) (*domain.Booking, error)
}

// BookingUpdate carries the patchable fields; nil means leave unchanged.
type BookingUpdate struct {
	StartAt       *time.Time
	DurationHours *float64
	Notes         *string
	Status        *domain.BookingStatus
}

type BookingRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepoImpl { return &BookingRepoImpl{pool: pool} }

const bookingCols = `id, manage_token, status, table_id,
player_name, player_email, player_phone,
start_at, duration_hours, hourly_rate, membership, notes,
additional_charges, final_total, created_at, updated_at`

func scanBooking(row pgx.Row, b *domain.Booking) error {
	return row.Scan(
		&b.ID, &b.ManageToken, &b.Status, &b.TableID,
		&b.PlayerName, &b.PlayerEmail, &b.PlayerPhone,
		&b.StartAt, &b.DurationHours, &b.HourlyRate, &b.Membership, &b.Notes,
		&b.AdditionalCharges, &b.FinalTotal, &b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *BookingRepoImpl) Create(ctx context.Context, in *domain.Booking) (*domain.Booking, error) {
	const q = `INSERT INTO bookings (
    manage_token, status, table_id,
    player_name, player_email, player_phone,
    start_at, duration_hours, hourly_rate, membership, notes
  ) VALUES ($1,'pending',$2,$3,$4,$5,$6,$7,$8,$9,$10)
  RETURNING ` + bookingCols

	tok := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := scanBooking(r.pool.QueryRow(ctx, q, tok,
		in.TableID,
		in.PlayerName, in.PlayerEmail, in.PlayerPhone,
		in.StartAt, in.DurationHours, in.HourlyRate, in.Membership, in.Notes,
	), &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := scanBooking(r.pool.QueryRow(ctx, q, id), &b)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepoImpl) GetByIDWithToken(ctx context.Context, id int64, token string) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1 AND manage_token=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := scanBooking(r.pool.QueryRow(ctx, q, id, token), &b)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListForTableOnDay feeds the conflict detector: every booking on the
// table whose session starts on the given calendar day. Status filtering
// is the detector's job, not the query's.
func (r *BookingRepoImpl) ListForTableOnDay(ctx context.Context, tableID int64, day time.Time) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + `
		FROM bookings
		WHERE table_id = $1 AND start_at >= $2 AND start_at < $3
		ORDER BY start_at`

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, tableID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bs []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bs = append(bs, b)
	}
	return bs, rows.Err()
}

func (r *BookingRepoImpl) List(ctx context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + bookingCols + ` FROM bookings`
	args := []any{}
	if status != nil {
		q += ` WHERE status = $1`
		args = append(args, *status)
	}
	q += fmt.Sprintf(` ORDER BY start_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bs := make([]domain.Booking, 0, limit)
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bs = append(bs, b)
	}
	return bs, rows.Err()
}

func (r *BookingRepoImpl) Update(ctx context.Context, id int64, patch BookingUpdate) (*domain.Booking, error) {
	const q = `UPDATE bookings SET
		start_at       = COALESCE($2, start_at),
		duration_hours = COALESCE($3, duration_hours),
		notes          = COALESCE($4, notes),
		status         = COALESCE($5, status),
		updated_at     = now()
	WHERE id = $1
	RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := scanBooking(r.pool.QueryRow(ctx, q, id, patch.StartAt, patch.DurationHours, patch.Notes, patch.Status), &b)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepoImpl) Cancel(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE bookings SET status='cancelled', updated_at=now()
		WHERE id=$1 AND status NOT IN ('cancelled','completed')`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *BookingRepoImpl) CancelWithToken(ctx context.Context, id int64, token string) (bool, error) {
	const q = `UPDATE bookings SET status='cancelled', updated_at=now()
		WHERE id=$1 AND manage_token=$2 AND status NOT IN ('cancelled','completed')`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id, token)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *BookingRepoImpl) Finalize(ctx context.Context, id int64, additionalCharges, total float64) (*domain.Booking, error) {
	const q = `UPDATE bookings SET
		status='completed', additional_charges=$2, final_total=$3, updated_at=now()
	WHERE id=$1 AND status NOT IN ('cancelled','completed')
	RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := scanBooking(r.pool.QueryRow(ctx, q, id, additionalCharges, total), &b)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepo = (*BookingRepoImpl)(nil)
