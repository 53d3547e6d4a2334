package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mtyhostal/apiserver/types"
)

// ImageRepository handles persistence for residence gallery images.
type ImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) GetByID(ctx context.Context, id int) (types.ResidenceImage, error) {
	const query = `
		SELECT id, residence_id, url, public_id, created_at
		FROM residence_images
		WHERE id = $1`
	var img types.ResidenceImage
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&img.ID,
		&img.ResidenceID,
		&img.URL,
		&img.PublicID,
		&img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ResidenceImage{}, ErrNotFound
		}
		return types.ResidenceImage{}, err
	}
	return img, nil
}

func (r *ImageRepository) ListByResidence(ctx context.Context, residenceID int) ([]types.ResidenceImage, error) {
	const query = `
		SELECT id, residence_id, url, public_id, created_at
		FROM residence_images
		WHERE residence_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, residenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]types.ResidenceImage, 0)
	for rows.Next() {
		var img types.ResidenceImage
		if err := rows.Scan(&img.ID, &img.ResidenceID, &img.URL, &img.PublicID, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *ImageRepository) Create(ctx context.Context, img types.ResidenceImage) (types.ResidenceImage, error) {
	img.CreatedAt = time.Now()

	const query = `
		INSERT INTO residence_images (residence_id, url, public_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		img.ResidenceID,
		img.URL,
		img.PublicID,
		img.CreatedAt,
	).Scan(&img.ID); err != nil {
		return types.ResidenceImage{}, err
	}
	return img, nil
}

func (r *ImageRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM residence_images WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
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
