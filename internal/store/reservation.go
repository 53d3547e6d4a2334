package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mtyhostal/apiserver/types"
)

// ReservationRepository handles persistence for bookings.
type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, residence_id, guest_id, start_date, end_date, status, total_price, created_at, updated_at`

func (r *ReservationRepository) GetByID(ctx context.Context, id int) (types.Reservation, error) {
	const query = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1`
	var rsv types.Reservation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rsv.ID,
		&rsv.ResidenceID,
		&rsv.GuestID,
		&rsv.StartDate,
		&rsv.EndDate,
		&rsv.Status,
		&rsv.TotalPrice,
		&rsv.CreatedAt,
		&rsv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Reservation{}, ErrNotFound
		}
		return types.Reservation{}, err
	}
	return rsv, nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID int) ([]types.Reservation, error) {
	const query = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE guest_id = $1
		ORDER BY start_date DESC`
	rows, err := r.db.QueryContext(ctx, query, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]types.Reservation, 0)
	for rows.Next() {
		var rsv types.Reservation
		if err := rows.Scan(
			&rsv.ID,
			&rsv.ResidenceID,
			&rsv.GuestID,
			&rsv.StartDate,
			&rsv.EndDate,
			&rsv.Status,
			&rsv.TotalPrice,
			&rsv.CreatedAt,
			&rsv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, rsv)
	}
	return reservations, rows.Err()
}

func (r *ReservationRepository) Create(ctx context.Context, rsv types.Reservation) (types.Reservation, error) {
	now := time.Now()
	rsv.CreatedAt = now
	rsv.UpdatedAt = now

	const query = `
		INSERT INTO reservations (residence_id, guest_id, start_date, end_date, status, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		rsv.ResidenceID,
		rsv.GuestID,
		rsv.StartDate,
		rsv.EndDate,
		rsv.Status,
		rsv.TotalPrice,
		rsv.CreatedAt,
		rsv.UpdatedAt,
	).Scan(&rsv.ID); err != nil {
		return types.Reservation{}, err
	}
	return rsv, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int, status types.ReservationStatus) error {
	const query = `
		UPDATE reservations
		SET status = $1, updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
