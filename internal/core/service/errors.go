package service

import (
	"errors"
	"fmt"

	"github.com/rl1809/mestakip/internal/core/domain"
)

var (
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrShuttingDown       = errors.New("service is shutting down")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrNotFound, fmt.Sprintf(format, args...))
}

// visible hides rows owned by somebody else behind ErrNotFound.
func visible(scope domain.Scope, owner *int64, what string, id any) error {
	if scope.Allows(owner) {
		return nil
	}
	return notFoundf("%s %v", what, id)
}

func requireAdmin(actor domain.User) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: administrator role required", domain.ErrForbidden)
	}
	return nil
}

func ownerOf(actor domain.User) *int64 {
	if actor.ID == 0 {
		return nil
	}
	id := actor.ID
	return &id
}
