// Package token decodes the access tokens issued by the eostre auth backend
// into the identity the session layer exposes.
package token

import (
	"fmt"
	"slices"
	"time"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an eostre access token.
type Claims struct {
	jwtlib.RegisteredClaims
	Username    string              `json:"username"`             // Display name shown by the UI
	Type        string              `json:"type,omitempty"`       // person or service
	AccountID   string              `json:"account_id,omitempty"` // Active account, when the token is account scoped
	Permissions map[string][]string `json:"permissions,omitempty"` // account id -> permission names
}

// Identity is the caller identity derived from a decoded access token.
type Identity struct {
	Subject     string              `json:"sub"`
	Username    string              `json:"username"`
	Type        string              `json:"type,omitempty"`
	AccountID   string              `json:"account_id,omitempty"`
	Permissions map[string][]string `json:"permissions,omitempty"`
	IssuedAt    time.Time           `json:"iat"`
	ExpiresAt   time.Time           `json:"exp"`
}

// Identity converts the claims, rejecting payloads without a username.
func (c *Claims) Identity() (*Identity, error) {
	if c.Username == "" {
		return nil, fmt.Errorf("%w: missing username claim", apperrors.ErrMalformedToken)
	}

	id := &Identity{
		Subject:     c.Subject,
		Username:    c.Username,
		Type:        c.Type,
		AccountID:   c.AccountID,
		Permissions: c.Permissions,
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}

// HasExpiry reports whether the token carried an exp claim.
func (i *Identity) HasExpiry() bool {
	return !i.ExpiresAt.IsZero()
}

// SecondsLeft returns exp - now in whole seconds.
func (i *Identity) SecondsLeft(now time.Time) int64 {
	return i.ExpiresAt.Unix() - now.Unix()
}

func (i *Identity) Expired(now time.Time) bool {
	return i.HasExpiry() && i.SecondsLeft(now) <= 0
}

// Can reports whether the identity holds permission within accountID.
func (i *Identity) Can(accountID, permission string) bool {
	return slices.Contains(i.Permissions[accountID], permission)
}
