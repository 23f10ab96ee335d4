package profile

import (
	"errors"

	"profilereview/pkg/domain"
)

// ErrLocked is returned when another commit for the same profile holds the lock.
var ErrLocked = errors.New("profile commit in progress")

// ErrNotFound aliases the domain not-found error so callers can match on it
// without importing the domain package.
type ErrNotFound = domain.ErrNotFound

func profileNotFound(email string) error {
	return ErrNotFound{Entity: "profile", ID: email}
}
