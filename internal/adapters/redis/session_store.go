// Package redis provides Redis-based adapters for FreelanceHub.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	domainauth "github.com/freelancehub/web/internal/domain/auth"
	"github.com/freelancehub/web/internal/ports"
)

const (
	defaultPrefix   = "session:"
	scanBatchSize   = 200
	deleteBatchSize = 500
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is a Redis-based session store for production use.
// Keys expire with the session's ExpiresAt; a zero ExpiresAt stores without TTL.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	clock  clockwork.Clock
}

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Prefix string
	Clock  clockwork.Clock
}

// NewSessionStore creates a new Redis-based session store with the default "session:" prefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithOptions(client, SessionStoreOptions{})
}

// NewSessionStoreWithOptions creates a Redis session store with a custom prefix or clock.
func NewSessionStoreWithOptions(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &SessionStore{
		client: client,
		prefix: opts.Prefix,
		clock:  opts.Clock,
	}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.clock.Now())
		if ttl <= 0 {
			return errors.New("session is expired")
		}
	}

	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal(data, &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("%w: %w", ports.ErrSessionMalformed, unmarshalErr)
	}

	// Redis TTL normally evicts first; clock skew between replicas can leave a stale key behind.
	if sess.Expired(s.clock.Now()) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil // Nothing to delete
	}

	return s.client.Del(ctx, s.prefix+id).Err()
}

// List returns up to limit stored sessions. Undecodable entries are skipped.
func (s *SessionStore) List(ctx context.Context, limit int) ([]domainauth.Session, error) {
	keys, err := s.keys(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domainauth.Session, 0, len(keys))
	for _, key := range keys {
		sess, getErr := s.Get(ctx, strings.TrimPrefix(key, s.prefix))
		if errors.Is(getErr, ports.ErrSessionNotFound) || errors.Is(getErr, ports.ErrSessionMalformed) {
			continue
		}
		if getErr != nil {
			return nil, getErr
		}
		out = append(out, sess)
	}
	return out, nil
}

// DeleteAll removes every session under the store prefix and returns how many keys were deleted.
// Keys are deleted one per DEL in a pipeline, so a cluster client routes each
// to its own slot.
func (s *SessionStore) DeleteAll(ctx context.Context) (int64, error) {
	keys, err := s.keys(ctx, 0)
	if err != nil {
		return 0, err
	}
	var deleted int64
	for start := 0; start < len(keys); start += deleteBatchSize {
		batch := keys[start:min(start+deleteBatchSize, len(keys))]
		cmds, pipeErr := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range batch {
				pipe.Del(ctx, key)
			}
			return nil
		})
		for _, cmd := range cmds {
			if del, ok := cmd.(*redis.IntCmd); ok && del.Err() == nil {
				deleted += del.Val()
			}
		}
		if pipeErr != nil {
			return deleted, fmt.Errorf("redis del: %w", pipeErr)
		}
	}
	return deleted, nil
}

// keys scans for session keys. limit <= 0 means no limit. A cluster client
// scans every master, since SCAN only covers the node it runs on.
func (s *SessionStore) keys(ctx context.Context, limit int) ([]string, error) {
	cluster, ok := s.client.(*redis.ClusterClient)
	if !ok {
		return scanKeys(ctx, s.client, s.prefix+"*", limit)
	}

	var (
		mu   sync.Mutex
		keys []string
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		found, err := scanKeys(ctx, node, s.prefix+"*", limit)
		if err != nil {
			return err
		}
		mu.Lock()
		keys = append(keys, found...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

func scanKeys(ctx context.Context, client redis.Cmdable, match string, limit int) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := client.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		keys = append(keys, batch...)
		if limit > 0 && len(keys) >= limit {
			return keys[:limit], nil
		}
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
