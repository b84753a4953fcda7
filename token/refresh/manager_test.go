package refresh_test

import (
	"testing"
	"time"

	"github.com/agbs2k8/eostre/internal/config"
	"github.com/agbs2k8/eostre/token/refresh"
	refreshrepofake "github.com/agbs2k8/eostre/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	refresh.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })
}

func TestManager_RotateInvalidatesOldToken(t *testing.T) {
	setNow(t, time.Unix(1_700_000_000, 0))
	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), config.New())

	first, err := m.Create("user-1", "acct-9")
	require.NoError(t, err)
	require.Len(t, first, 64)

	rt, second, err := m.Rotate(first)
	require.NoError(t, err)
	require.Equal(t, "user-1", rt.UserID)
	require.Equal(t, "acct-9", rt.AccountID)
	require.NotEqual(t, first, second)

	_, _, err = m.Rotate(first)
	require.ErrorIs(t, err, refresh.ErrInvalidRefreshToken)

	_, _, err = m.Rotate(second)
	require.NoError(t, err)
}

func TestManager_RotateExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	setNow(t, now)
	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), config.New())

	tok, err := m.Create("user-1", "")
	require.NoError(t, err)

	setNow(t, now.Add(25*time.Hour))
	_, _, err = m.Rotate(tok)
	require.ErrorIs(t, err, refresh.ErrInvalidRefreshToken)

	// An expired token is consumed by the failed attempt.
	setNow(t, now)
	_, _, err = m.Rotate(tok)
	require.ErrorIs(t, err, refresh.ErrInvalidRefreshToken)
}

func TestManager_Revoke(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	m := refresh.NewManager(repo, config.New())

	a, err := m.Create("user-1", "")
	require.NoError(t, err)
	b, err := m.Create("user-1", "")
	require.NoError(t, err)
	c, err := m.Create("user-2", "")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(a))
	require.NoError(t, m.Revoke(a))

	require.NoError(t, m.RevokeUser("user-1"))
	_, _, err = m.Rotate(b)
	require.ErrorIs(t, err, refresh.ErrInvalidRefreshToken)

	_, _, err = m.Rotate(c)
	require.NoError(t, err)
}
