package authstub

import (
	"errors"
	"fmt"
	"time"

	"github.com/agbs2k8/eostre/internal/config"
	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/agbs2k8/eostre/internal/utils"
	"github.com/agbs2k8/eostre/users"
	"github.com/google/uuid"
)

const (
	seedAccountID   = "1"
	seedAccountName = "eostre"
)

type role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Active      bool     `json:"active"`
	Permissions []string `json:"permissions"`
}

var seedRoles = []role{
	{
		ID:          "1",
		Name:        "admin",
		DisplayName: "Administrator",
		Active:      true,
		Permissions: []string{"account:read", "account:write", "location:read", "location:write", "user:read", "user:write"},
	},
	{
		ID:          "2",
		Name:        "viewer",
		DisplayName: "Viewer",
		Active:      true,
		Permissions: []string{"account:read", "location:read", "user:read"},
	},
}

// Seed makes sure the configured development user exists with an admin
// grant on the seed account. An existing user is left untouched.
func Seed(repo users.UserRepo, cfg config.StubConfig) (*users.User, error) {
	username := cfg.GetSeedUsername()
	if existing, err := repo.GetByName(username); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("[authstub Seed] failed to look up %s: %w", username, err)
	}

	hash, err := users.HashPassword(cfg.GetSeedPassword())
	if err != nil {
		return nil, fmt.Errorf("[authstub Seed] failed to hash password: %w", err)
	}

	now := NowTimeFunc().UTC()
	admin := seedRoles[0]
	user := &users.User{
		ID:           "1",
		Name:         username,
		DisplayName:  username,
		PersonalName: utils.Ptr(username),
		Type:         users.TypePerson,
		Emails: []users.Email{{
			ID:          uuid.NewString(),
			Email:       username + "@example.com",
			Primary:     true,
			Active:      true,
			CreatedDate: now,
		}},
		PasswordHash: hash,
		Active:       true,
		Grants: []users.Grant{{
			ID:                 uuid.NewString(),
			AccountID:          seedAccountID,
			AccountName:        seedAccountName,
			AccountDisplayName: "Eostre",
			RoleID:             admin.ID,
			RoleName:           admin.Name,
			Permissions:        admin.Permissions,
			Active:             true,
			GrantedDate:        now.Add(-24 * time.Hour),
		}},
		DefaultAccountID: seedAccountID,
		CreatedDate:      now,
		ModifiedDate:     now,
	}

	if err := repo.Upsert(user); err != nil {
		return nil, fmt.Errorf("[authstub Seed] failed to store %s: %w", username, err)
	}
	return user, nil
}
