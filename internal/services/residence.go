package services

import (
	"context"

	"github.com/mtyhostal/apiserver/internal/auth"
	"github.com/mtyhostal/apiserver/internal/store"
	"github.com/mtyhostal/apiserver/types"
)

// ResidenceRepository defines persistence operations for residences.
type ResidenceRepository interface {
	GetByID(ctx context.Context, id int) (types.Residence, error)
	ListActiveCards(ctx context.Context) ([]types.ResidenceCard, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.Residence, error)
	Create(ctx context.Context, res types.Residence) (types.Residence, error)
	Update(ctx context.Context, res types.Residence) (types.Residence, error)
	SetActive(ctx context.Context, id int, active bool) error
}

// ImageRepository defines persistence operations for gallery images.
type ImageRepository interface {
	GetByID(ctx context.Context, id int) (types.ResidenceImage, error)
	ListByResidence(ctx context.Context, residenceID int) ([]types.ResidenceImage, error)
	Create(ctx context.Context, img types.ResidenceImage) (types.ResidenceImage, error)
	Delete(ctx context.Context, id int) error
}

// CityRepository defines read operations on the city catalog.
type CityRepository interface {
	GetByID(ctx context.Context, id int) (types.City, error)
	List(ctx context.Context) ([]types.City, error)
}

// ResidenceDetail is the composed public view of one residence.
type ResidenceDetail struct {
	Residence types.Residence
	City      types.City
	Host      types.User
	Images    []types.ResidenceImage
}

// ResidenceInput carries the mutable residence fields. Updates are full
// replacements, not partial patches.
type ResidenceInput struct {
	Title         string
	Description   string
	Address       string
	PricePerNight float64
	CityID        int
}

// ImageFile is an uploaded gallery file.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ResidenceService encapsulates the listing lifecycle. Every mutating
// operation loads the residence first and applies the ownership guard, so a
// missing row surfaces as not-found and a foreign one as not-owner.
type ResidenceService struct {
	residences ResidenceRepository
	imageRepo  ImageRepository
	cities     CityRepository
	users      UserRepository
	images     ImageStore
}

func NewResidenceService(
	residences ResidenceRepository,
	imageRepo ImageRepository,
	cities CityRepository,
	users UserRepository,
	images ImageStore,
) *ResidenceService {
	return &ResidenceService{
		residences: residences,
		imageRepo:  imageRepo,
		cities:     cities,
		users:      users,
		images:     images,
	}
}

// List returns the public cards of active residences.
func (s *ResidenceService) List(ctx context.Context) ([]types.ResidenceCard, error) {
	return s.residences.ListActiveCards(ctx)
}

// Get returns the public detail of an active residence. Inactive residences
// are indistinguishable from missing ones to public callers.
func (s *ResidenceService) Get(ctx context.Context, id int) (ResidenceDetail, error) {
	res, err := s.residences.GetByID(ctx, id)
	if err != nil {
		return ResidenceDetail{}, err
	}
	if !res.Active {
		return ResidenceDetail{}, store.ErrNotFound
	}
	return s.assembleDetail(ctx, res)
}

// ListByOwner returns all residences of a host, inactive included. A soft
// deleted residence stays addressable by its owner.
func (s *ResidenceService) ListByOwner(ctx context.Context, ownerID int) ([]types.Residence, error) {
	return s.residences.ListByOwner(ctx, ownerID)
}

// Create persists a new active residence. The owner id comes from the
// verified identity, never from the payload.
func (s *ResidenceService) Create(ctx context.Context, ownerID int, input ResidenceInput) (ResidenceDetail, error) {
	if _, err := s.cities.GetByID(ctx, input.CityID); err != nil {
		return ResidenceDetail{}, err
	}

	res, err := s.residences.Create(ctx, types.Residence{
		Title:         input.Title,
		Description:   input.Description,
		Address:       input.Address,
		PricePerNight: input.PricePerNight,
		CityID:        input.CityID,
		OwnerID:       ownerID,
		Active:        true,
	})
	if err != nil {
		return ResidenceDetail{}, err
	}
	return s.assembleDetail(ctx, res)
}

// Update replaces the residence fields. Owner only.
func (s *ResidenceService) Update(ctx context.Context, identity auth.Identity, id int, input ResidenceInput) (types.Residence, error) {
	res, err := s.residences.GetByID(ctx, id)
	if err != nil {
		return types.Residence{}, err
	}
	if err := auth.RequireOwner(identity, res.OwnerID); err != nil {
		return types.Residence{}, err
	}

	res.Title = input.Title
	res.Description = input.Description
	res.Address = input.Address
	res.PricePerNight = input.PricePerNight
	res.CityID = input.CityID
	return s.residences.Update(ctx, res)
}

// Deactivate soft-deletes the residence. Owner only. Child images and
// reservations are left untouched.
func (s *ResidenceService) Deactivate(ctx context.Context, identity auth.Identity, id int) error {
	res, err := s.residences.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(identity, res.OwnerID); err != nil {
		return err
	}
	return s.residences.SetActive(ctx, id, false)
}

// AttachImages uploads gallery files and records their references. The
// ownership check runs before any remote call, so a rejected request
// performs zero uploads. Files are committed one by one; an upload failure
// aborts the request and keeps the files attached so far.
func (s *ResidenceService) AttachImages(ctx context.Context, identity auth.Identity, residenceID int, files []ImageFile) ([]types.ResidenceImage, error) {
	res, err := s.residences.GetByID(ctx, residenceID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(identity, res.OwnerID); err != nil {
		return nil, err
	}

	attached := make([]types.ResidenceImage, 0, len(files))
	for _, file := range files {
		upload, err := s.images.Upload(ctx, file.Filename, file.Data, file.ContentType)
		if err != nil {
			return attached, err
		}
		img, err := s.imageRepo.Create(ctx, types.ResidenceImage{
			ResidenceID: residenceID,
			URL:         upload.URL,
			PublicID:    upload.PublicID,
		})
		if err != nil {
			// Local record failed: remove the remote copy so no unreferenced
			// object remains, then abort.
			_ = s.images.Delete(ctx, upload.PublicID)
			return attached, err
		}
		attached = append(attached, img)
	}
	return attached, nil
}

// DetachImage removes one gallery image. The remote delete is attempted
// first; if it fails the local record is retained and the operation fails,
// so a remote object can never be orphaned by a deleted local row.
func (s *ResidenceService) DetachImage(ctx context.Context, identity auth.Identity, residenceID, imageID int) error {
	res, err := s.residences.GetByID(ctx, residenceID)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(identity, res.OwnerID); err != nil {
		return err
	}

	img, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.ResidenceID != residenceID {
		return ErrImageNotInResidence
	}

	if err := s.images.Delete(ctx, img.PublicID); err != nil {
		return err
	}
	return s.imageRepo.Delete(ctx, imageID)
}

// ReplaceImages swaps the whole gallery. New files are staged first; only
// after every upload succeeds are the old images removed. A failed staging
// upload is compensated by deleting the objects staged so far, leaving the
// existing gallery intact.
func (s *ResidenceService) ReplaceImages(ctx context.Context, identity auth.Identity, residenceID int, files []ImageFile) ([]types.ResidenceImage, error) {
	res, err := s.residences.GetByID(ctx, residenceID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(identity, res.OwnerID); err != nil {
		return nil, err
	}

	old, err := s.imageRepo.ListByResidence(ctx, residenceID)
	if err != nil {
		return nil, err
	}

	staged := make([]ImageUpload, 0, len(files))
	for _, file := range files {
		upload, err := s.images.Upload(ctx, file.Filename, file.Data, file.ContentType)
		if err != nil {
			for _, u := range staged {
				_ = s.images.Delete(ctx, u.PublicID)
			}
			return nil, err
		}
		staged = append(staged, upload)
	}

	// All new uploads are in place; retire the old gallery. Remote deletes
	// are best effort here, the local records are authoritative.
	for _, img := range old {
		_ = s.images.Delete(ctx, img.PublicID)
		if err := s.imageRepo.Delete(ctx, img.ID); err != nil {
			return nil, err
		}
	}

	replaced := make([]types.ResidenceImage, 0, len(staged))
	for _, upload := range staged {
		img, err := s.imageRepo.Create(ctx, types.ResidenceImage{
			ResidenceID: residenceID,
			URL:         upload.URL,
			PublicID:    upload.PublicID,
		})
		if err != nil {
			return replaced, err
		}
		replaced = append(replaced, img)
	}
	return replaced, nil
}

// Cities lists the catalog entries residences can be located in.
func (s *ResidenceService) Cities(ctx context.Context) ([]types.City, error) {
	return s.cities.List(ctx)
}

func (s *ResidenceService) assembleDetail(ctx context.Context, res types.Residence) (ResidenceDetail, error) {
	city, err := s.cities.GetByID(ctx, res.CityID)
	if err != nil {
		return ResidenceDetail{}, err
	}
	host, err := s.users.GetByID(ctx, res.OwnerID)
	if err != nil {
		return ResidenceDetail{}, err
	}
	images, err := s.imageRepo.ListByResidence(ctx, res.ID)
	if err != nil {
		return ResidenceDetail{}, err
	}
	return ResidenceDetail{
		Residence: res,
		City:      city,
		Host:      host,
		Images:    images,
	}, nil
}
