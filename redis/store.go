package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/store"
)

// Store is a store.Repository that keeps JSON snapshots under
// <prefix>:<resource>:<id> and remembers insertion order in a sorted set.
type Store[T store.Record[T]] struct {
	client   *Client
	resource string
	prefix   string
	ttl      time.Duration
}

// NewStore creates a repository for one record kind.
func NewStore[T store.Record[T]](client *Client, resource string) *Store[T] {
	cfg := client.Config()
	return &Store[T]{
		client:   client,
		resource: resource,
		prefix:   cfg.KeyPrefix + ":" + resource,
		ttl:      cfg.TTL(),
	}
}

func (s *Store[T]) key(id string) string { return s.prefix + ":" + id }
func (s *Store[T]) indexKey() string { return s.prefix + ":index" }

// Get loads and decodes one snapshot.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	raw, err := s.client.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return rec, apperrors.NotFound(s.resource, id)
	}
	if err != nil {
		return rec, apperrors.StorageError(fmt.Errorf("load %s %q: %w", s.resource, id, err))
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, apperrors.StorageError(fmt.Errorf("decode %s %q: %w", s.resource, id, err))
	}
	return rec, nil
}

// Put writes the snapshot and indexes its id on first insert.
func (s *Store[T]) Put(ctx context.Context, record T) error {
	id := record.RecordID()
	data, err := json.Marshal(record)
	if err != nil {
		return apperrors.StorageError(fmt.Errorf("encode %s %q: %w", s.resource, id, err))
	}
	_, err = s.client.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.key(id), data, s.ttl)
		p.ZAddNX(ctx, s.indexKey(), goredis.Z{Score: float64(time.Now().UnixMicro()), Member: id})
		return nil
	})
	if err != nil {
		return apperrors.StorageError(fmt.Errorf("save %s %q: %w", s.resource, id, err))
	}
	return nil
}

// List returns all live snapshots in insertion order. Index entries whose
// snapshot has expired are pruned.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	ids, err := s.client.rdb.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, apperrors.StorageError(fmt.Errorf("list %s: %w", s.resource, err))
	}
	if len(ids) == 0 {
		return []T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperrors.StorageError(fmt.Errorf("list %s: %w", s.resource, err))
	}

	out := make([]T, 0, len(values))
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var rec T
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, apperrors.StorageError(fmt.Errorf("decode %s %q: %w", s.resource, ids[i], err))
		}
		out = append(out, rec)
	}
	if len(stale) > 0 {
		if err := s.client.rdb.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			s.client.log.Warn("failed to prune redis index", map[string]interface{}{
				"resource": s.resource,
				"error":    err.Error(),
			})
		}
	}
	return out, nil
}
