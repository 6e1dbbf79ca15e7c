package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mamadbah2/fieldops/internal/domain/models"
	"github.com/mamadbah2/fieldops/internal/repository/kv"
)

// DefaultSnapshotKey is the key holding the serialized collection.
const DefaultSnapshotKey = "stock_items"

// SnapshotStore persists the complete collection as one unit.
type SnapshotStore interface {
	Load(ctx context.Context) ([]models.StockItem, error)
	Save(ctx context.Context, items []models.StockItem) error
}

// KVSnapshot stores the collection as a JSON array under a single key.
type KVSnapshot struct {
	store kv.Store
	key   string
}

// NewKVSnapshot binds a snapshot to key in store.
func NewKVSnapshot(store kv.Store, key string) *KVSnapshot {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &KVSnapshot{store: store, key: key}
}

// Load returns an empty collection when the key has never been written.
func (s *KVSnapshot) Load(ctx context.Context) ([]models.StockItem, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []models.StockItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.key, err)
	}
	if len(raw) == 0 {
		return []models.StockItem{}, nil
	}

	var items []models.StockItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.key, err)
	}
	if items == nil {
		items = []models.StockItem{}
	}
	return items, nil
}

// Save overwrites the key with the full collection.
func (s *KVSnapshot) Save(ctx context.Context, items []models.StockItem) error {
	if items == nil {
		items = []models.StockItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.key, err)
	}
	return nil
}
