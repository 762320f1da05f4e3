package expirystore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/clax-app/clax-client/internal/claxerrors"
	"github.com/clax-app/clax-client/internal/models"
)

// FileExpiryStore persists expiries in a small JSON file so that they survive
// a process restart. This is the default store for the CLI.
type FileExpiryStore struct {
	lock *sync.Mutex
	path string
}

func NewFileExpiryStore(path string) (*FileExpiryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("the expiry file path cannot be empty")
	}
	return &FileExpiryStore{lock: &sync.Mutex{}, path: path}, nil
}

func (db *FileExpiryStore) GetExpiry(ctx context.Context, kind models.TokenKind) (time.Time, error) {
	db.lock.Lock()
	defer db.lock.Unlock()
	expiries, err := db.load()
	if err != nil {
		return time.Time{}, err
	}
	value, found := expiries[kind.ExpiryKey()]
	if !found {
		return time.Time{}, claxerrors.ErrExpiryNotFound
	}
	return parseExpiry(value)
}

func (db *FileExpiryStore) SetExpiry(ctx context.Context, kind models.TokenKind, expiresAt time.Time) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	expiries, err := db.load()
	if err != nil {
		return err
	}
	expiries[kind.ExpiryKey()] = formatExpiry(expiresAt)
	return db.save(expiries)
}

func (db *FileExpiryStore) RemoveExpiry(ctx context.Context, kind models.TokenKind) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	expiries, err := db.load()
	if err != nil {
		return err
	}
	delete(expiries, kind.ExpiryKey())
	return db.save(expiries)
}

func (db *FileExpiryStore) RemoveAll(ctx context.Context) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	expiries, err := db.load()
	if err != nil {
		return err
	}
	for _, kind := range models.AllTokenKinds {
		delete(expiries, kind.ExpiryKey())
	}
	return db.save(expiries)
}

func (db *FileExpiryStore) load() (map[string]string, error) {
	data, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	expiries := map[string]string{}
	if err := json.Unmarshal(data, &expiries); err != nil {
		// A corrupt file is treated the same as an empty one, the next
		// successful renewal rewrites it.
		return map[string]string{}, nil
	}
	return expiries, nil
}

func (db *FileExpiryStore) save(expiries map[string]string) error {
	data, err := json.MarshalIndent(expiries, "", "  ")
	if err != nil {
		return err
	}
	tempFile := db.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(db.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tempFile, db.path)
}
