package port

import (
	"time"

	"github.com/rl1809/mestakip/internal/core/domain"
)

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(user domain.User) (token string, expiresAt time.Time, err error)
	// Verify returns the user id the token was issued for
	Verify(token string) (int64, error)
}
