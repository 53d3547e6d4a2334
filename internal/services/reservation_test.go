package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mtyhostal/apiserver/internal/auth"
	"github.com/mtyhostal/apiserver/internal/store"
	"github.com/mtyhostal/apiserver/types"
)

type reservationFixture struct {
	svc        *ReservationService
	residences *fakeResidenceRepo
	repo       *fakeReservationRepo
}

func newReservationFixture(t *testing.T) (*reservationFixture, types.Residence) {
	t.Helper()
	cities := newFakeCityRepo(types.City{ID: 1, Name: "Monterrey"})
	residences := newFakeResidenceRepo(newFakeImageRepo(), cities)
	res, err := residences.Create(context.Background(), types.Residence{
		Title:         "Casa Centro",
		PricePerNight: 1500,
		CityID:        1,
		OwnerID:       1,
		Active:        true,
	})
	if err != nil {
		t.Fatalf("seed residence: %v", err)
	}
	repo := newFakeReservationRepo()
	return &reservationFixture{
		svc:        NewReservationService(repo, residences),
		residences: residences,
		repo:       repo,
	}, res
}

func date(day int) time.Time {
	return time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC)
}

func TestReservationCreate(t *testing.T) {
	f, res := newReservationFixture(t)

	rsv, err := f.svc.Create(context.Background(), 5, res.ID, date(10), date(13))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rsv.Status != types.ReservationPending {
		t.Errorf("Status = %v, want pending", rsv.Status)
	}
	if rsv.GuestID != 5 {
		t.Errorf("GuestID = %d, want 5", rsv.GuestID)
	}
	// 3 nights at 1500 per night.
	if rsv.TotalPrice != 4500 {
		t.Errorf("TotalPrice = %v, want 4500", rsv.TotalPrice)
	}
}

func TestReservationCreateInvalidDates(t *testing.T) {
	f, res := newReservationFixture(t)

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"end before start", date(13), date(10)},
		{"same day", date(10), date(10)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), 5, res.ID, tc.start, tc.end)
			if !errors.Is(err, ErrInvalidDates) {
				t.Errorf("err = %v, want ErrInvalidDates", err)
			}
		})
	}
	if len(f.repo.reservations) != 0 {
		t.Error("invalid dates must not persist a booking")
	}
}

func TestReservationCreateInactiveResidence(t *testing.T) {
	f, res := newReservationFixture(t)
	if err := f.residences.SetActive(context.Background(), res.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	_, err := f.svc.Create(context.Background(), 5, res.ID, date(10), date(12))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("inactive residence: err = %v, want ErrNotFound", err)
	}

	_, err = f.svc.Create(context.Background(), 5, 404, date(10), date(12))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing residence: err = %v, want ErrNotFound", err)
	}
}

func TestReservationListByGuest(t *testing.T) {
	f, res := newReservationFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, 5, res.ID, date(10), date(12)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Create(ctx, 5, res.ID, date(20), date(22)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Create(ctx, 6, res.ID, date(15), date(16)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := f.svc.ListByGuest(ctx, 5)
	if err != nil {
		t.Fatalf("ListByGuest: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d reservations, want 2", len(mine))
	}
	if !mine[0].StartDate.After(mine[1].StartDate) {
		t.Error("reservations must come newest stay first")
	}
}

func TestReservationCancel(t *testing.T) {
	f, res := newReservationFixture(t)
	ctx := context.Background()

	rsv, err := f.svc.Create(ctx, 5, res.ID, date(10), date(12))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	other := auth.Identity{UserID: 6, Role: types.RoleGuest}
	if err := f.svc.Cancel(ctx, other, rsv.ID); !errors.Is(err, auth.ErrNotOwner) {
		t.Fatalf("foreign cancel: err = %v, want ErrNotOwner", err)
	}
	kept, _ := f.repo.GetByID(ctx, rsv.ID)
	if kept.Status != types.ReservationPending {
		t.Error("rejected cancel must not change the status")
	}

	guest := auth.Identity{UserID: 5, Role: types.RoleGuest}
	if err := f.svc.Cancel(ctx, guest, rsv.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	cancelled, _ := f.repo.GetByID(ctx, rsv.ID)
	if cancelled.Status != types.ReservationCancelled {
		t.Errorf("Status = %v, want cancelled", cancelled.Status)
	}

	if err := f.svc.Cancel(ctx, guest, 404); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing booking: err = %v, want ErrNotFound", err)
	}
}

func TestReservationCancelOnlyPending(t *testing.T) {
	f, res := newReservationFixture(t)
	ctx := context.Background()
	guest := auth.Identity{UserID: 5, Role: types.RoleGuest}

	rsv, err := f.svc.Create(ctx, 5, res.ID, date(10), date(12))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A paid booking cannot be cancelled.
	if err := f.repo.UpdateStatus(ctx, rsv.ID, types.ReservationPaid); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := f.svc.Cancel(ctx, guest, rsv.ID); !errors.Is(err, ErrReservationSettled) {
		t.Fatalf("paid cancel: err = %v, want ErrReservationSettled", err)
	}
	kept, _ := f.repo.GetByID(ctx, rsv.ID)
	if kept.Status != types.ReservationPaid {
		t.Errorf("status = %v, paid booking must stay paid", kept.Status)
	}

	// Cancelling twice fails the second time.
	second, err := f.svc.Create(ctx, 5, res.ID, date(20), date(22))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.svc.Cancel(ctx, guest, second.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := f.svc.Cancel(ctx, guest, second.ID); !errors.Is(err, ErrReservationSettled) {
		t.Errorf("repeat cancel: err = %v, want ErrReservationSettled", err)
	}
}
