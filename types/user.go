package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Role is the authorization level of an account. It is a closed enumeration:
// hosts own residences, guests book them. The wire and database forms are
// the Spanish names the original API exposes; inside the process only the
// tagged constants exist.
type Role int

const (
	RoleHost Role = iota
	RoleGuest
)

const (
	roleHostName  = "anfitrion"
	roleGuestName = "huesped"
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return roleHostName
	case RoleGuest:
		return roleGuestName
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a wire name into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case roleHostName:
		return RoleHost, nil
	case roleGuestName:
		return RoleGuest, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	switch r {
	case RoleHost, RoleGuest:
		return json.Marshal(r.String())
	default:
		return nil, fmt.Errorf("cannot marshal role %d", int(r))
	}
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRole(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan implements sql.Scanner; roles are stored as text.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseRole(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		parsed, err := ParseRole(string(v))
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan role from %T", src)
	}
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	switch r {
	case RoleHost, RoleGuest:
		return r.String(), nil
	default:
		return nil, fmt.Errorf("cannot store role %d", int(r))
	}
}

// User represents an account in the system: a host who publishes residences
// or a guest who books them.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"nombre" db:"first_name"`

	// PaternalSurname and MaternalSurname follow the original API's
	// two-surname convention; display names concatenate FirstName and
	// PaternalSurname.
	PaternalSurname string `json:"apellidoPaterno" db:"paternal_surname"`
	MaternalSurname string `json:"apellidoMaterno" db:"maternal_surname"`

	// Email is the unique login address.
	Email string `json:"email" db:"email"`

	// Role indicates whether the account is a host or a guest.
	Role Role `json:"rol" db:"role"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// ProfilePhotoURL is the public URL of the profile photo;
	// ProfilePhotoPublicID is the provider key needed to delete it.
	ProfilePhotoURL      string `json:"fotoPerfilUrl" db:"profile_photo_url"`
	ProfilePhotoPublicID string `json:"-" db:"profile_photo_public_id"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DisplayName is the public form of the user's name shown next to a
// residence: given name plus paternal surname.
func (u User) DisplayName() string {
	if u.PaternalSurname == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.PaternalSurname
}
