package authstub

import (
	"fmt"
	"time"

	"github.com/agbs2k8/eostre/token"
	"github.com/agbs2k8/eostre/token/keys"
	"github.com/agbs2k8/eostre/users"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Issuer mints and verifies access tokens.
type Issuer struct {
	signer keys.Signer
	issuer string
	expiry time.Duration
}

func NewIssuer(signer keys.Signer, issuer string, expiry time.Duration) *Issuer {
	return &Issuer{signer: signer, issuer: issuer, expiry: expiry}
}

// Issue signs an access token for user scoped to accountID.
func (i *Issuer) Issue(user *users.User, accountID string) (string, time.Time, error) {
	now := NowTimeFunc()
	exp := now.Add(i.expiry)

	claims := &token.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
		},
		Username:    user.Name,
		Type:        string(user.Type),
		AccountID:   accountID,
		Permissions: user.Permissions(),
	}

	raw, err := i.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return raw, exp, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
func (i *Issuer) Verify(raw string) (*token.Claims, error) {
	claims := &token.Claims{}
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	}
	if i.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(i.issuer))
	}

	if _, err := jwtlib.ParseWithClaims(raw, claims, i.signer.GetVerificationKey, opts...); err != nil {
		return nil, err
	}
	return claims, nil
}
