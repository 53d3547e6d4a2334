package services

import (
	"context"

	"github.com/mtyhostal/apiserver/types"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	UpdateProfilePhoto(ctx context.Context, id int, url, publicID string) error
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo   UserRepository
	images ImageStore
}

func NewUserService(repo UserRepository, images ImageStore) *UserService {
	return &UserService{repo: repo, images: images}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

func (s *UserService) Update(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Update(ctx, user)
}

// ChangeProfilePhoto uploads a new photo for the user, stores the returned
// reference, and then deletes the previous remote copy. The old delete is
// best effort: a stale remote object is preferable to a broken profile.
func (s *UserService) ChangeProfilePhoto(ctx context.Context, userID int, filename string, data []byte, contentType string) (ImageUpload, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ImageUpload{}, err
	}

	upload, err := s.images.Upload(ctx, filename, data, contentType)
	if err != nil {
		return ImageUpload{}, err
	}

	if err := s.repo.UpdateProfilePhoto(ctx, userID, upload.URL, upload.PublicID); err != nil {
		// The local record failed: compensate by removing the fresh upload.
		_ = s.images.Delete(ctx, upload.PublicID)
		return ImageUpload{}, err
	}

	if user.ProfilePhotoPublicID != "" {
		_ = s.images.Delete(ctx, user.ProfilePhotoPublicID)
	}

	return upload, nil
}
