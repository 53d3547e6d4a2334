package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mtyhostal/apiserver/types"
)

// ResidenceRepository handles persistence for residences.
type ResidenceRepository struct {
	db *sql.DB
}

func NewResidenceRepository(db *sql.DB) *ResidenceRepository {
	return &ResidenceRepository{db: db}
}

const residenceColumns = `id, title, description, address, price_per_night, city_id, owner_id, active, created_at, updated_at`

func scanResidence(row *sql.Row) (types.Residence, error) {
	var res types.Residence
	err := row.Scan(
		&res.ID,
		&res.Title,
		&res.Description,
		&res.Address,
		&res.PricePerNight,
		&res.CityID,
		&res.OwnerID,
		&res.Active,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Residence{}, ErrNotFound
		}
		return types.Residence{}, err
	}
	return res, nil
}

// GetByID returns a residence regardless of its active flag. Callers decide
// whether inactive rows are visible to them.
func (r *ResidenceRepository) GetByID(ctx context.Context, id int) (types.Residence, error) {
	const query = `
		SELECT ` + residenceColumns + `
		FROM residences
		WHERE id = $1`
	return scanResidence(r.db.QueryRowContext(ctx, query, id))
}

// ListActiveCards returns the public list projection of active residences:
// card fields plus city name and the first gallery image, oldest first.
func (r *ResidenceRepository) ListActiveCards(ctx context.Context) ([]types.ResidenceCard, error) {
	const query = `
		SELECT r.id, r.title, r.price_per_night, c.name,
			COALESCE((
				SELECT i.url FROM residence_images i
				WHERE i.residence_id = r.id
				ORDER BY i.id
				LIMIT 1
			), '')
		FROM residences r
		JOIN cities c ON c.id = r.city_id
		WHERE r.active
		ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]types.ResidenceCard, 0)
	for rows.Next() {
		var card types.ResidenceCard
		if err := rows.Scan(&card.ID, &card.Title, &card.PricePerNight, &card.CityName, &card.ImageURL); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// ListByOwner returns all residences of one host, inactive included.
func (r *ResidenceRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.Residence, error) {
	const query = `
		SELECT ` + residenceColumns + `
		FROM residences
		WHERE owner_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	residences := make([]types.Residence, 0)
	for rows.Next() {
		var res types.Residence
		if err := rows.Scan(
			&res.ID,
			&res.Title,
			&res.Description,
			&res.Address,
			&res.PricePerNight,
			&res.CityID,
			&res.OwnerID,
			&res.Active,
			&res.CreatedAt,
			&res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		residences = append(residences, res)
	}
	return residences, rows.Err()
}

func (r *ResidenceRepository) Create(ctx context.Context, res types.Residence) (types.Residence, error) {
	now := time.Now()
	res.CreatedAt = now
	res.UpdatedAt = now

	const query = `
		INSERT INTO residences (title, description, address, price_per_night, city_id, owner_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		res.Title,
		res.Description,
		res.Address,
		res.PricePerNight,
		res.CityID,
		res.OwnerID,
		res.Active,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.ID); err != nil {
		return types.Residence{}, err
	}
	return res, nil
}

// Update replaces every mutable field; ownership and the active flag are
// not touched here.
func (r *ResidenceRepository) Update(ctx context.Context, res types.Residence) (types.Residence, error) {
	res.UpdatedAt = time.Now()

	const query = `
		UPDATE residences
		SET title = $1,
			description = $2,
			address = $3,
			price_per_night = $4,
			city_id = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		res.Title,
		res.Description,
		res.Address,
		res.PricePerNight,
		res.CityID,
		res.UpdatedAt,
		res.ID,
	)
	if err != nil {
		return types.Residence{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Residence{}, err
	}
	if affected == 0 {
		return types.Residence{}, ErrNotFound
	}
	return res, nil
}

// SetActive flips the soft-delete marker. The row is never removed.
func (r *ResidenceRepository) SetActive(ctx context.Context, id int, active bool) error {
	const query = `
		UPDATE residences
		SET active = $1, updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
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
