package token

import (
	"context"
	"crypto"
	"strings"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier checks the token signature against a static set of public keys
// before decoding the claims. Expiry is left to the session watchdog, so an
// expired but correctly signed token still decodes.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

var _ Decoder = (*OIDCVerifier)(nil)

// NewOIDCVerifier builds a verifier. An empty issuer disables the iss check.
func NewOIDCVerifier(issuer string, keys ...crypto.PublicKey) *OIDCVerifier {
	cfg := &oidc.Config{
		SkipClientIDCheck:    true,
		SkipExpiryCheck:      true,
		SkipIssuerCheck:      issuer == "",
		SupportedSigningAlgs: []string{oidc.RS256, oidc.ES256},
	}
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(issuer, &oidc.StaticKeySet{PublicKeys: keys}, cfg),
	}
}

func (v *OIDCVerifier) Decode(ctx context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "empty token")
	}

	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "verify token: %v", err)
	}

	claims := &Claims{}
	if err := idToken.Claims(claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "read claims: %v", err)
	}
	return claims.Identity()
}
