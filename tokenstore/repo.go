// Package tokenstore persists the access token so a session survives process
// restarts. Exactly one token is stored per well-known key.
package tokenstore

import (
	"context"
	"time"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = apperrors.ErrNotFound

// Repo stores raw access tokens keyed by name.
type Repo interface {
	// Get returns the stored token or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores the token. A zero expiresAt means the backend may keep it
	// indefinitely.
	Set(ctx context.Context, key, token string, expiresAt time.Time) error

	// Delete removes the token; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
