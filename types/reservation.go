package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReservationStatus is the lifecycle state of a booking.
type ReservationStatus int

const (
	ReservationPending ReservationStatus = iota
	ReservationPaid
	ReservationCancelled
)

const (
	reservationPendingName   = "pendiente"
	reservationPaidName      = "pagada"
	reservationCancelledName = "cancelada"
)

func (s ReservationStatus) String() string {
	switch s {
	case ReservationPending:
		return reservationPendingName
	case ReservationPaid:
		return reservationPaidName
	case ReservationCancelled:
		return reservationCancelledName
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseReservationStatus converts a wire name into a ReservationStatus.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch s {
	case reservationPendingName:
		return ReservationPending, nil
	case reservationPaidName:
		return ReservationPaid, nil
	case reservationCancelledName:
		return ReservationCancelled, nil
	default:
		return 0, fmt.Errorf("unknown reservation status %q", s)
	}
}

func (s ReservationStatus) MarshalJSON() ([]byte, error) {
	switch s {
	case ReservationPending, ReservationPaid, ReservationCancelled:
		return json.Marshal(s.String())
	default:
		return nil, fmt.Errorf("cannot marshal reservation status %d", int(s))
	}
}

func (s *ReservationStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseReservationStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *ReservationStatus) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseReservationStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case []byte:
		parsed, err := ParseReservationStatus(string(v))
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan reservation status from %T", src)
	}
}

func (s ReservationStatus) Value() (driver.Value, error) {
	switch s {
	case ReservationPending, ReservationPaid, ReservationCancelled:
		return s.String(), nil
	default:
		return nil, fmt.Errorf("cannot store reservation status %d", int(s))
	}
}

// Reservation is a guest's booking of a residence for a date range.
type Reservation struct {
	ID          int               `json:"id" db:"id"`
	ResidenceID int               `json:"residenciaId" db:"residence_id"`
	GuestID     int               `json:"huespedId" db:"guest_id"`
	StartDate   time.Time         `json:"fechaInicio" db:"start_date"`
	EndDate     time.Time         `json:"fechaFin" db:"end_date"`
	Status      ReservationStatus `json:"estatus" db:"status"`
	TotalPrice  float64           `json:"precioTotal" db:"total_price"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}
