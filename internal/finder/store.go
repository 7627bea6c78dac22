package finder

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"business-finder/internal/common/database"
	"business-finder/internal/common/errors"
	"business-finder/internal/models"
)

const DefaultKeyPrefix = "business-finder:results:"

// RedisStore keeps one JSON encoded result set per session with a TTL.
type RedisStore struct {
	client *database.RedisClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *database.RedisClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Save(ctx context.Context, rs *models.ResultSet) error {
	payload, err := json.Marshal(rs)
	if err != nil {
		return errors.NewResultStoreFailedError("encode", err)
	}
	if err := s.client.Set(ctx, s.key(rs.SessionID), payload, s.ttl); err != nil {
		return errors.NewResultStoreFailedError("set", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.ResultSet, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID))
	if stderrors.Is(err, database.ErrKeyNotFound) {
		return nil, errors.NewResultsNotFoundError(sessionID)
	}
	if err != nil {
		return nil, errors.NewResultStoreFailedError("get", err)
	}

	var rs models.ResultSet
	if err := json.Unmarshal(payload, &rs); err != nil {
		return nil, errors.NewResultStoreFailedError("decode", err)
	}
	return &rs, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)); err != nil {
		return errors.NewResultStoreFailedError("del", err)
	}
	return nil
}

// MemoryStore is the in-process store used when no Redis address is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.ResultSet
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*models.ResultSet), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, rs *models.ResultSet) error {
	cp := *rs
	cp.Businesses = append([]models.Business(nil), rs.Businesses...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rs.SessionID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.ResultSet, error) {
	s.mu.RLock()
	rs, ok := s.items[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewResultsNotFoundError(sessionID)
	}

	now := s.now()
	if rs.IsExpired(now) {
		// a Save may have replaced the entry since the read lock was released
		s.mu.Lock()
		current, ok := s.items[sessionID]
		if ok && current.IsExpired(now) {
			delete(s.items, sessionID)
		}
		s.mu.Unlock()

		if !ok || current.IsExpired(now) {
			return nil, errors.NewResultsNotFoundError(sessionID)
		}
		rs = current
	}

	cp := *rs
	cp.Businesses = append([]models.Business(nil), rs.Businesses...)
	return &cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionID)
	return nil
}
