package tokenrepofake

import (
	"context"
	"sync"
	"time"

	"github.com/agbs2k8/eostre/tokenstore"
)

var _ tokenstore.Repo = (*FakeTokenRepo)(nil)

type storedToken struct {
	token     string
	expiresAt time.Time
}

// FakeTokenRepo is the in-memory Repo used by tests and the "memory" backend.
type FakeTokenRepo struct {
	tokens map[string]storedToken
	lock   sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		tokens: make(map[string]storedToken),
	}
}

func (tr *FakeTokenRepo) Get(_ context.Context, key string) (string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	st, ok := tr.tokens[key]
	if !ok {
		return "", tokenstore.ErrNotFound
	}
	return st.token, nil
}

func (tr *FakeTokenRepo) Set(_ context.Context, key, token string, expiresAt time.Time) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[key] = storedToken{token: token, expiresAt: expiresAt}
	return nil
}

func (tr *FakeTokenRepo) Delete(_ context.Context, key string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	delete(tr.tokens, key)
	return nil
}

// Len reports how many keys are stored.
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}
