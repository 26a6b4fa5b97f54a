// Package localstore is the client-local durable storage used by the
// cart and session packages. One entry per fixed key, loaded at startup,
// cleared on logout or on decode failure by the callers.
package localstore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
)

// Fixed storage keys shared by the client-side packages.
const (
	KeyCart    = "community_cart"
	KeyToken   = "community_token"
	KeyProfile = "community_user"
)

// ErrNoEntry is returned when a key has no stored value.
var ErrNoEntry = errors.New("no stored entry")

// Storage holds opaque byte values under string keys. Implementations
// must tolerate Delete of absent keys.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// FileStore keeps one file per key under a directory, the durable
// equivalent of browser local storage.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNoEntry
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", key)
	}
	return data, nil
}

func (f *FileStore) Save(key string, data []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "save %s", key)
	}
	return os.Rename(tmp, f.path(key))
}

func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

// MemStore is an in-memory Storage for tests.
type MemStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string][]byte)}
}

func (m *MemStore) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.entries[key]
	if !ok {
		return nil, ErrNoEntry
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemStore) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.entries[key] = cp
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
