// Package hashstore tracks content hashes of invoices the pipeline has
// already completed. The ingestion monitor consults it before dispatching a
// file and records the hash only after the pipeline and persistence both
// succeed, so redelivered content is processed exactly once.
package hashstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
)

// Store is a persistent append-only set of content hashes.
type Store interface {
	// Contains reports whether the hash has been recorded.
	Contains(ctx context.Context, hash string) (bool, error)

	// Add records a hash. Adding an existing hash is a no-op.
	Add(ctx context.Context, hash string) error

	// Close releases any underlying resources.
	Close() error
}

// HashFile computes the SHA-256 content hash of a file on disk.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MemoryStore is an in-memory Store for tests and single-run tooling.
type MemoryStore struct {
	mu     sync.RWMutex
	hashes map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hashes: make(map[string]struct{})}
}

func (s *MemoryStore) Contains(ctx context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[hash]
	return ok, nil
}

func (s *MemoryStore) Add(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[hash] = struct{}{}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
