// Package access holds the ownership and visibility rules shared by every
// resource: private records are readable only by their owner and only the
// owner may change or delete a record.
package access

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Owned is implemented by records that belong to one user and carry a
// visibility flag.
type Owned interface {
	OwnerID() string
	Public() bool
}

// CanRead returns nil when viewerID may see r. An empty viewerID is an
// anonymous caller.
func CanRead(viewerID string, r Owned) error {
	if r.Public() {
		return nil
	}
	if viewerID != "" && viewerID == r.OwnerID() {
		return nil
	}
	return ErrForbidden
}

// RequireOwner returns nil when viewerID owns r.
func RequireOwner(viewerID string, r Owned) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	if viewerID != r.OwnerID() {
		return ErrForbidden
	}
	return nil
}

// IsOwner reports whether viewerID owns r.
func IsOwner(viewerID string, r Owned) bool {
	return viewerID != "" && viewerID == r.OwnerID()
}
