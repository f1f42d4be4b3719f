// Package settings stores admin-managed configuration documents keyed by
// name (tax rates, shipping rate charts). Values are free-form JSON so the
// dashboard can evolve them without schema changes.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Well-known setting keys.
const (
	KeyTaxSettings      = "taxSettings"
	KeyShippingSettings = "shippingSettings"
)

// ErrNotFound is returned when no value exists for the key.
var ErrNotFound = errors.New("setting not found")

// Store is the read/write surface for settings documents.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
}

// PGStore persists settings in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore on the provided pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Get loads the raw JSON value for key.
func (s *PGStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("settings store not configured")
	}
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for key.
func (s *PGStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if s == nil || s.pool == nil {
		return errors.New("settings store not configured")
	}
	if !json.Valid(value) {
		return errors.New("settings value is not valid json")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]json.RawMessage{}}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return errors.New("settings value is not valid json")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append(json.RawMessage(nil), value...)
	return nil
}

// Decode loads and unmarshals the setting for key into dst. Missing keys
// return ErrNotFound with dst untouched.
func Decode(ctx context.Context, store Store, key string, dst any) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
