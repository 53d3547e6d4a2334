package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mtyhostal/apiserver/types"
)

// CityRepository handles the read-only city catalog.
type CityRepository struct {
	db *sql.DB
}

func NewCityRepository(db *sql.DB) *CityRepository {
	return &CityRepository{db: db}
}

func (r *CityRepository) GetByID(ctx context.Context, id int) (types.City, error) {
	const query = `SELECT id, name FROM cities WHERE id = $1`
	var city types.City
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&city.ID, &city.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.City{}, ErrNotFound
		}
		return types.City{}, err
	}
	return city, nil
}

func (r *CityRepository) List(ctx context.Context) ([]types.City, error) {
	const query = `SELECT id, name FROM cities ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]types.City, 0)
	for rows.Next() {
		var city types.City
		if err := rows.Scan(&city.ID, &city.Name); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}
