package expirystore

import (
	"context"
	"sync"
	"time"

	"github.com/clax-app/clax-client/internal/claxerrors"
	"github.com/clax-app/clax-client/internal/models"
)

// InMemoryExpiryStore keeps expiries in a map. It does not survive a process
// restart and is meant for tests and throwaway sessions.
type InMemoryExpiryStore struct {
	lock     *sync.RWMutex
	expiries map[string]string
}

func NewInMemoryExpiryStore() *InMemoryExpiryStore {
	return &InMemoryExpiryStore{lock: &sync.RWMutex{}, expiries: map[string]string{}}
}

func (db *InMemoryExpiryStore) GetExpiry(ctx context.Context, kind models.TokenKind) (time.Time, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	value, found := db.expiries[kind.ExpiryKey()]
	if !found {
		return time.Time{}, claxerrors.ErrExpiryNotFound
	}
	return parseExpiry(value)
}

func (db *InMemoryExpiryStore) SetExpiry(ctx context.Context, kind models.TokenKind, expiresAt time.Time) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	db.expiries[kind.ExpiryKey()] = formatExpiry(expiresAt)
	return nil
}

func (db *InMemoryExpiryStore) RemoveExpiry(ctx context.Context, kind models.TokenKind) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	delete(db.expiries, kind.ExpiryKey())
	return nil
}

func (db *InMemoryExpiryStore) RemoveAll(ctx context.Context) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	for _, kind := range models.AllTokenKinds {
		delete(db.expiries, kind.ExpiryKey())
	}
	return nil
}
