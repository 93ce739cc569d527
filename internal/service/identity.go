package service

import (
	"fmt"

	"github.com/courtside/bookingd/internal/models"
)

// Identity is the already-authenticated caller, resolved from a bearer token
// before a service method runs. Services take it explicitly so authorization
// is checked once per operation and unit tests can call operations with any
// role directly.
type Identity struct {
	UserID int64
	Role   models.Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

func requireAdmin(caller Identity) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}
