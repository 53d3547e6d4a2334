package handlers

import (
	"context"
	"fmt"
	"sort"

	"github.com/mtyhostal/apiserver/internal/services"
	"github.com/mtyhostal/apiserver/internal/store"
	"github.com/mtyhostal/apiserver/types"
)

// In-memory repositories so the routers run against real services without a
// database.

type memUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) UpdateProfilePhoto(_ context.Context, id int, url, publicID string) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.ProfilePhotoURL = url
	user.ProfilePhotoPublicID = publicID
	r.users[id] = user
	return nil
}

type memResidenceRepo struct {
	residences map[int]types.Residence
	images     *memImageRepo
	cities     *memCityRepo
	nextID     int
}

func newMemResidenceRepo(images *memImageRepo, cities *memCityRepo) *memResidenceRepo {
	return &memResidenceRepo{
		residences: map[int]types.Residence{},
		images:     images,
		cities:     cities,
		nextID:     1,
	}
}

func (r *memResidenceRepo) GetByID(_ context.Context, id int) (types.Residence, error) {
	res, ok := r.residences[id]
	if !ok {
		return types.Residence{}, store.ErrNotFound
	}
	return res, nil
}

func (r *memResidenceRepo) ListActiveCards(ctx context.Context) ([]types.ResidenceCard, error) {
	ids := make([]int, 0, len(r.residences))
	for id := range r.residences {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	cards := make([]types.ResidenceCard, 0)
	for _, id := range ids {
		res := r.residences[id]
		if !res.Active {
			continue
		}
		city, _ := r.cities.GetByID(ctx, res.CityID)
		card := types.ResidenceCard{
			ID:            res.ID,
			Title:         res.Title,
			PricePerNight: res.PricePerNight,
			CityName:      city.Name,
		}
		if imgs, _ := r.images.ListByResidence(ctx, res.ID); len(imgs) > 0 {
			card.ImageURL = imgs[0].URL
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (r *memResidenceRepo) ListByOwner(_ context.Context, ownerID int) ([]types.Residence, error) {
	ids := make([]int, 0, len(r.residences))
	for id := range r.residences {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	owned := make([]types.Residence, 0)
	for _, id := range ids {
		if r.residences[id].OwnerID == ownerID {
			owned = append(owned, r.residences[id])
		}
	}
	return owned, nil
}

func (r *memResidenceRepo) Create(_ context.Context, res types.Residence) (types.Residence, error) {
	res.ID = r.nextID
	r.nextID++
	r.residences[res.ID] = res
	return res, nil
}

func (r *memResidenceRepo) Update(_ context.Context, res types.Residence) (types.Residence, error) {
	existing, ok := r.residences[res.ID]
	if !ok {
		return types.Residence{}, store.ErrNotFound
	}
	res.OwnerID = existing.OwnerID
	res.Active = existing.Active
	r.residences[res.ID] = res
	return res, nil
}

func (r *memResidenceRepo) SetActive(_ context.Context, id int, active bool) error {
	res, ok := r.residences[id]
	if !ok {
		return store.ErrNotFound
	}
	res.Active = active
	r.residences[id] = res
	return nil
}

type memImageRepo struct {
	images map[int]types.ResidenceImage
	nextID int
}

func newMemImageRepo() *memImageRepo {
	return &memImageRepo{images: map[int]types.ResidenceImage{}, nextID: 1}
}

func (r *memImageRepo) GetByID(_ context.Context, id int) (types.ResidenceImage, error) {
	img, ok := r.images[id]
	if !ok {
		return types.ResidenceImage{}, store.ErrNotFound
	}
	return img, nil
}

func (r *memImageRepo) ListByResidence(_ context.Context, residenceID int) ([]types.ResidenceImage, error) {
	ids := make([]int, 0, len(r.images))
	for id := range r.images {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	images := make([]types.ResidenceImage, 0)
	for _, id := range ids {
		if r.images[id].ResidenceID == residenceID {
			images = append(images, r.images[id])
		}
	}
	return images, nil
}

func (r *memImageRepo) Create(_ context.Context, img types.ResidenceImage) (types.ResidenceImage, error) {
	img.ID = r.nextID
	r.nextID++
	r.images[img.ID] = img
	return img, nil
}

func (r *memImageRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.images[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.images, id)
	return nil
}

type memCityRepo struct {
	cities map[int]types.City
}

func newMemCityRepo(cities ...types.City) *memCityRepo {
	repo := &memCityRepo{cities: map[int]types.City{}}
	for _, city := range cities {
		repo.cities[city.ID] = city
	}
	return repo
}

func (r *memCityRepo) GetByID(_ context.Context, id int) (types.City, error) {
	city, ok := r.cities[id]
	if !ok {
		return types.City{}, store.ErrNotFound
	}
	return city, nil
}

func (r *memCityRepo) List(_ context.Context) ([]types.City, error) {
	cities := make([]types.City, 0, len(r.cities))
	for _, city := range r.cities {
		cities = append(cities, city)
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })
	return cities, nil
}

type memReservationRepo struct {
	reservations map[int]types.Reservation
	nextID       int
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{reservations: map[int]types.Reservation{}, nextID: 1}
}

func (r *memReservationRepo) GetByID(_ context.Context, id int) (types.Reservation, error) {
	rsv, ok := r.reservations[id]
	if !ok {
		return types.Reservation{}, store.ErrNotFound
	}
	return rsv, nil
}

func (r *memReservationRepo) ListByGuest(_ context.Context, guestID int) ([]types.Reservation, error) {
	reservations := make([]types.Reservation, 0)
	for _, rsv := range r.reservations {
		if rsv.GuestID == guestID {
			reservations = append(reservations, rsv)
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].StartDate.After(reservations[j].StartDate)
	})
	return reservations, nil
}

func (r *memReservationRepo) Create(_ context.Context, rsv types.Reservation) (types.Reservation, error) {
	rsv.ID = r.nextID
	r.nextID++
	r.reservations[rsv.ID] = rsv
	return rsv, nil
}

func (r *memReservationRepo) UpdateStatus(_ context.Context, id int, status types.ReservationStatus) error {
	rsv, ok := r.reservations[id]
	if !ok {
		return store.ErrNotFound
	}
	rsv.Status = status
	r.reservations[id] = rsv
	return nil
}

// memImageStore hands back deterministic URLs for uploaded files.
type memImageStore struct {
	nextKey int
	objects map[string]bool
}

func newMemImageStore() *memImageStore {
	return &memImageStore{objects: map[string]bool{}}
}

func (s *memImageStore) Upload(_ context.Context, filename string, _ []byte, _ string) (services.ImageUpload, error) {
	s.nextKey++
	key := fmt.Sprintf("obj-%d-%s", s.nextKey, filename)
	s.objects[key] = true
	return services.ImageUpload{
		URL:      "https://img.example.com/" + key,
		PublicID: key,
	}, nil
}

func (s *memImageStore) Delete(_ context.Context, publicID string) error {
	delete(s.objects, publicID)
	return nil
}
