package types

import "time"

// Residence represents a rentable property published by a host.
type Residence struct {
	// ID is the unique identifier of the residence.
	ID int `json:"id" db:"id"`

	// Title is the listing headline shown on cards and detail pages.
	Title string `json:"titulo" db:"title"`

	// Description is the full listing text.
	Description string `json:"descripcion" db:"description"`

	// Address is the street address of the property.
	Address string `json:"direccion" db:"address"`

	// PricePerNight is the nightly rate in the marketplace currency.
	PricePerNight float64 `json:"precioPorNoche" db:"price_per_night"`

	// CityID references the city catalog entry the residence belongs to.
	CityID int `json:"ciudadSedeId" db:"city_id"`

	// OwnerID is the account that created the residence. Only hosts may
	// create residences, and only the owner may mutate one.
	OwnerID int `json:"anfitrionId" db:"owner_id"`

	// Active is the soft-delete marker. Inactive residences disappear from
	// public reads but remain addressable by their owner.
	Active bool `json:"activa" db:"active"`

	// CreatedAt is the timestamp at which the residence was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ResidenceImage is one gallery photo of a residence. PublicID is the object
// key at the image host, required to delete the remote copy.
type ResidenceImage struct {
	ID          int       `json:"id" db:"id"`
	ResidenceID int       `json:"residenciaId" db:"residence_id"`
	URL         string    `json:"url" db:"url"`
	PublicID    string    `json:"-" db:"public_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// City is a catalog entry for the locations the marketplace operates in.
type City struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"nombre" db:"name"`
}

// ResidenceCard is the public list-view projection of an active residence.
type ResidenceCard struct {
	ID            int     `json:"id"`
	Title         string  `json:"titulo"`
	PricePerNight float64 `json:"precioPorNoche"`
	CityName      string  `json:"ciudadNombre"`
	ImageURL      string  `json:"imagenUrl,omitempty"`
}
