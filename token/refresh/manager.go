package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/agbs2k8/eostre/internal/config"
	apperrors "github.com/agbs2k8/eostre/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrInvalidRefreshToken is returned for unknown, revoked or expired tokens.
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo   Repo
	config config.StubConfig
}

func NewManager(repo Repo, cfg config.StubConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create generates a new refresh token and stores it. A user may hold
// several, one per client session.
func (m *Manager) Create(userID, accountID string) (string, error) {
	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:     tokenStr,
		UserID:    userID,
		AccountID: accountID,
		Iat:       NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenStr, nil
}

// Rotate redeems token and replaces it with a new one. The old token is
// unusable afterwards, whether or not it was valid.
func (m *Manager) Rotate(token string) (*StoredRefreshToken, string, error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", ErrInvalidRefreshToken
		}
		return nil, "", err
	}
	if err := m.repo.Delete(token); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if m.IsExpired(rt) {
		return nil, "", ErrInvalidRefreshToken
	}

	next, err := m.Create(rt.UserID, rt.AccountID)
	if err != nil {
		return nil, "", err
	}
	return rt, next, nil
}

// Revoke deletes token; unknown tokens are ignored.
func (m *Manager) Revoke(token string) error {
	if err := m.repo.Delete(token); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}

// RevokeUser deletes every refresh token held by userID.
func (m *Manager) RevokeUser(userID string) error {
	tokens, err := m.repo.GetByUserID(userID)
	if err != nil {
		return err
	}
	for _, rt := range tokens {
		if err := m.Revoke(rt.Token); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.config.GetRefreshTokenExpiry()
}
