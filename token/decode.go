package token

import (
	"context"
	"strings"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Decoder turns a raw access token into an Identity. Any failure wraps
// ErrMalformedToken.
type Decoder interface {
	Decode(ctx context.Context, raw string) (*Identity, error)
}

// UnverifiedDecoder reads the claims without checking the signature. The
// backend verifies every token it receives, so the client only needs the
// claims to drive the UI and the watchdog.
type UnverifiedDecoder struct{}

var _ Decoder = UnverifiedDecoder{}

func NewDecoder() UnverifiedDecoder {
	return UnverifiedDecoder{}
}

func (UnverifiedDecoder) Decode(_ context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "empty token")
	}

	claims := &Claims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "parse token: %v", err)
	}
	return claims.Identity()
}
