package auth

import "errors"

// ErrNotOwner is returned when a caller operates on a resource owned by a
// different account. Distinct from a not-found error: callers that reach an
// ownership decision have already loaded the resource.
var ErrNotOwner = errors.New("caller is not the resource owner")

// RequireOwner is the single ownership policy for resource mutations: the
// identity's subject must match the stored owner id. Services apply it after
// loading the resource, so "does not exist" and "exists, not yours" stay
// distinguishable.
func RequireOwner(identity Identity, ownerID int) error {
	if identity.UserID != ownerID {
		return ErrNotOwner
	}
	return nil
}
