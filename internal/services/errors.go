package services

import "errors"

var (
	// ErrImageHost wraps failures of the remote image host. The operation
	// that depended on the remote call is aborted; nothing local is
	// committed on its behalf.
	ErrImageHost = errors.New("image host failure")

	// ErrImageNotInResidence is returned when an image id exists but hangs
	// off a different residence than the one addressed.
	ErrImageNotInResidence = errors.New("image does not belong to the residence")

	// ErrInvalidDates is returned when a reservation range is empty or
	// inverted.
	ErrInvalidDates = errors.New("invalid reservation dates")

	// ErrReservationSettled is returned when cancelling a reservation that
	// is no longer pending; paid and already-cancelled bookings stay as
	// they are.
	ErrReservationSettled = errors.New("reservation is not pending")
)
