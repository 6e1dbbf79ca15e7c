// Package kv defines the single-key storage contract shared by the snapshot
// drivers.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when nothing has been stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// Store reads and overwrites whole values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
