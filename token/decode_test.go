package token_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/agbs2k8/eostre/token"
	"github.com/agbs2k8/eostre/token/keys"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := keys.NewHMACSigner("test-secret").Sign(claims)
	require.NoError(t, err)
	return raw
}

func TestUnverifiedDecoder_Decode(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	raw := sign(t, jwt.MapClaims{
		"sub":        "1",
		"username":   "alice",
		"type":       "person",
		"account_id": "acct-9",
		"permissions": map[string]any{
			"acct-9": []string{"location:read", "location:write"},
		},
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})

	id, err := token.NewDecoder().Decode(context.Background(), raw)
	require.NoError(t, err)

	require.Equal(t, "1", id.Subject)
	require.Equal(t, "alice", id.Username)
	require.Equal(t, "person", id.Type)
	require.Equal(t, "acct-9", id.AccountID)
	require.True(t, id.Can("acct-9", "location:write"))
	require.False(t, id.Can("acct-1", "location:write"))
	require.Equal(t, now.Unix(), id.IssuedAt.Unix())
	require.Equal(t, int64(3600), id.SecondsLeft(now))
	require.False(t, id.Expired(now))
	require.True(t, id.Expired(now.Add(time.Hour)))
}

func TestUnverifiedDecoder_DecodesExpiredTokens(t *testing.T) {
	raw := sign(t, jwt.MapClaims{"sub": "1", "username": "alice", "exp": time.Now().Add(-time.Minute).Unix()})

	id, err := token.NewDecoder().Decode(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, id.Expired(time.Now()))
}

func TestUnverifiedDecoder_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not a jwt", "definitely-not-a-token"},
		{"bad segments", "aaa.bbb.ccc"},
		{"missing username", sign(t, jwt.MapClaims{"sub": "1"})},
		{"wrong permissions shape", sign(t, jwt.MapClaims{"sub": "1", "username": "alice", "permissions": "all"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := token.NewDecoder().Decode(context.Background(), tt.raw)
			require.Nil(t, id)
			require.ErrorIs(t, err, apperrors.ErrMalformedToken)
		})
	}
}

func TestIdentity_NoExpiry(t *testing.T) {
	id, err := token.NewDecoder().Decode(context.Background(), sign(t, jwt.MapClaims{"sub": "1", "username": "svc"}))
	require.NoError(t, err)

	require.False(t, id.HasExpiry())
	require.False(t, id.Expired(time.Now()))
}
