// Package kv provides the namespaced key-value backends that hold the
// reminder collection and the app settings.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("kv: key not found")

// Store is a flat string-keyed blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend named by driver. path is ignored for the memory driver.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return NewSQLite(path)
	case DriverBolt:
		return NewBolt(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s (supported: %s, %s, %s)",
			driver, DriverSQLite, DriverBolt, DriverMemory)
	}
}
