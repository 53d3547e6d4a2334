package services

import (
	"context"
	"math"
	"time"

	"github.com/mtyhostal/apiserver/internal/auth"
	"github.com/mtyhostal/apiserver/internal/store"
	"github.com/mtyhostal/apiserver/types"
)

// ReservationRepository defines persistence operations for bookings.
type ReservationRepository interface {
	GetByID(ctx context.Context, id int) (types.Reservation, error)
	ListByGuest(ctx context.Context, guestID int) ([]types.Reservation, error)
	Create(ctx context.Context, rsv types.Reservation) (types.Reservation, error)
	UpdateStatus(ctx context.Context, id int, status types.ReservationStatus) error
}

// ReservationService encapsulates booking use-cases.
type ReservationService struct {
	reservations ReservationRepository
	residences   ResidenceRepository
}

func NewReservationService(reservations ReservationRepository, residences ResidenceRepository) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		residences:   residences,
	}
}

// Create books an active residence for a guest. The total price is the
// nightly rate times the number of nights; the booking starts out pending.
func (s *ReservationService) Create(ctx context.Context, guestID, residenceID int, start, end time.Time) (types.Reservation, error) {
	if !end.After(start) {
		return types.Reservation{}, ErrInvalidDates
	}

	res, err := s.residences.GetByID(ctx, residenceID)
	if err != nil {
		return types.Reservation{}, err
	}
	if !res.Active {
		return types.Reservation{}, store.ErrNotFound
	}

	nights := math.Ceil(end.Sub(start).Hours() / 24)
	return s.reservations.Create(ctx, types.Reservation{
		ResidenceID: residenceID,
		GuestID:     guestID,
		StartDate:   start,
		EndDate:     end,
		Status:      types.ReservationPending,
		TotalPrice:  nights * res.PricePerNight,
	})
}

// ListByGuest returns the caller's bookings, newest stay first.
func (s *ReservationService) ListByGuest(ctx context.Context, guestID int) ([]types.Reservation, error) {
	return s.reservations.ListByGuest(ctx, guestID)
}

// Cancel marks a booking cancelled. Only the reserving guest may cancel, and
// only while the booking is still pending.
func (s *ReservationService) Cancel(ctx context.Context, identity auth.Identity, id int) error {
	rsv, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(identity, rsv.GuestID); err != nil {
		return err
	}
	if rsv.Status != types.ReservationPending {
		return ErrReservationSettled
	}
	return s.reservations.UpdateStatus(ctx, id, types.ReservationCancelled)
}
