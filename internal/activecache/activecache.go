// Package activecache keeps a Redis index from vehicle ID to its active
// parking session ID.
//
// The index is a read accelerator only. Postgres (or the in-memory store)
// remains the authority on which session is active; a stale or missing
// entry is always resolved against the store.
package activecache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// NewClient returns a configured go-redis client and validates the connection with PING.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("activecache: redis addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("activecache: ping: %w", err)
	}
	return client, nil
}

// Store manages the vehicle -> active session index.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewStore returns a redis-backed index. Entries expire after ttl so an
// index that missed a Remove heals on its own; ttl <= 0 keeps entries forever.
func NewStore(client redis.Cmdable, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(vehicleID uuid.UUID) string {
	return fmt.Sprintf("parking:active:%s", vehicleID)
}

// Put records sessionID as the active session of vehicleID.
func (s *Store) Put(ctx context.Context, vehicleID, sessionID uuid.UUID) error {
	if err := s.client.Set(ctx, s.key(vehicleID), sessionID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("activecache.Store.Put: %w", err)
	}
	return nil
}

// Lookup returns the cached active session ID for vehicleID.
// found is false when the vehicle has no entry.
func (s *Store) Lookup(ctx context.Context, vehicleID uuid.UUID) (sessionID uuid.UUID, found bool, err error) {
	raw, err := s.client.Get(ctx, s.key(vehicleID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.UUID{}, false, nil
	}
	if err != nil {
		return uuid.UUID{}, false, fmt.Errorf("activecache.Store.Lookup: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, false, fmt.Errorf("activecache.Store.Lookup: corrupt entry %q: %w", raw, err)
	}
	return id, true, nil
}

// Remove deletes the entry for vehicleID. Removing a missing entry is not an error.
func (s *Store) Remove(ctx context.Context, vehicleID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(vehicleID)).Err(); err != nil {
		return fmt.Errorf("activecache.Store.Remove: %w", err)
	}
	return nil
}
