package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Memo
// ─────────────────────────────────────────────────────────────────────────────

// MemoStore keeps build results as JSON under <prefix>memo:<key>.
type MemoStore struct {
	client *Client
	ttl    time.Duration
	logger logging.Logger
}

// NewMemoStore returns a Redis-backed orgchart.Memo.  A zero ttl keeps
// entries until they are invalidated.
func NewMemoStore(client *Client, ttl time.Duration, log logging.Logger) *MemoStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MemoStore{client: client, ttl: ttl, logger: log}
}

func (m *MemoStore) Get(ctx context.Context, key string) (*hierarchy.Result, bool, error) {
	data, err := m.client.Get(ctx, m.client.Key("memo", key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read memo")
	}
	var res hierarchy.Result
	if err := json.Unmarshal(data, &res); err != nil {
		// A corrupt entry is treated as a miss and rebuilt.
		m.logger.Warn("discarding unreadable memo entry", logging.String("key", key), logging.Err(err))
		return nil, false, nil
	}
	return &res, true, nil
}

func (m *MemoStore) Set(ctx context.Context, key string, res *hierarchy.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode memo")
	}
	if err := m.client.Set(ctx, m.client.Key("memo", key), data, m.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write memo")
	}
	return nil
}

func (m *MemoStore) Invalidate(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.client.Key("memo", key)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to invalidate memo")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

// SessionStore keeps session datasets as JSON under <prefix>session:<id>.
// Every Put restarts the session's TTL.
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewSessionStore returns a Redis-backed orgchart.SessionStore.
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Put(ctx context.Context, ds *orgchart.Dataset) error {
	if ds == nil || ds.ID == "" {
		return errors.New(errors.ErrCodeValidation, "dataset requires a session id")
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode dataset")
	}
	ttl := s.ttl
	if ds.ID == orgchart.DefaultSessionID {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.client.Key("session", ds.ID), data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSessionStoreError, "failed to store session")
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*orgchart.Dataset, error) {
	data, err := s.client.Get(ctx, s.client.Key("session", id)).Bytes()
	if err == redis.Nil {
		return nil, errors.SessionNotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSessionStoreError, "failed to load session")
	}
	var ds orgchart.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode session")
	}
	return &ds, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.client.Key("session", id)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSessionStoreError, "failed to delete session")
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

//Personal.AI order the ending
