package refresh

import (
	"time"
)

// StoredRefreshToken is the server-side record behind an opaque refresh
// token. The client only ever sees Token, inside an HTTP-only cookie.
type StoredRefreshToken struct {
	Token     string
	UserID    string
	AccountID string    // Account the session is scoped to
	Iat       time.Time // Issued at
}

// Repo stores refresh token records keyed by the token string. Unknown
// tokens return errors.ErrNotFound.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetByUserID(userID string) ([]*StoredRefreshToken, error)
}
