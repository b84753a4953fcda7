package users_test

import (
	"testing"
	"time"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/agbs2k8/eostre/users"
	fakeuserrepo "github.com/agbs2k8/eostre/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("pw")
	require.NoError(t, err)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("pw"))
	require.False(t, u.CheckPassword("PW"))
}

func TestPermissions(t *testing.T) {
	revoked := time.Now()
	u := &users.User{
		Grants: []users.Grant{
			{AccountID: "9", Active: true, Permissions: []string{"location:read", "location:write"}},
			{AccountID: "9", Active: true, Permissions: []string{"location:read", "account:read"}},
			{AccountID: "4", Active: false, Permissions: []string{"account:write"}},
			{AccountID: "5", Active: true, RevokedDate: &revoked, Permissions: []string{"account:write"}},
		},
	}

	require.Equal(t, map[string][]string{
		"9": {"location:read", "location:write", "account:read"},
	}, u.Permissions())
	require.Equal(t, []string{"9"}, u.AccountIDs())
}

func TestCanLogin(t *testing.T) {
	require.True(t, (&users.User{Active: true}).CanLogin())
	require.False(t, (&users.User{Active: true, Deleted: true}).CanLogin())
	require.False(t, (&users.User{}).CanLogin())
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	alice := &users.User{Name: "alice"}
	require.NoError(t, repo.Upsert(alice))
	require.NotEmpty(t, alice.ID)
	require.NoError(t, repo.Upsert(&users.User{Name: "bob"}))

	got, err := repo.GetByName("alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	alice.Name = "alice2"
	require.NoError(t, repo.Upsert(alice))
	_, err = repo.GetByName("alice")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.GetByID("missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	list, err := repo.List(0, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "alice2", list[0].Name)

	list, err = repo.List(5, 10)
	require.NoError(t, err)
	require.Empty(t, list)
}
