package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/utils"
)

// SessionStore keeps form sessions for their lifetime only.
type SessionStore interface {
	Save(ctx context.Context, session *models.FormSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.FormSession, error)
	Delete(ctx context.Context, id string) error
	// AcquireSubmitLock returns false when a submission for id is already in flight.
	AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, id string) error
}

// RedisSessionStore stores sessions as JSON strings in Redis.
type RedisSessionStore struct {
	redis *RedisClient
}

// NewRedisSessionStore creates a new RedisSessionStore.
func NewRedisSessionStore(redis *RedisClient) *RedisSessionStore {
	return &RedisSessionStore{redis: redis}
}

// keySession returns the Redis key for a session.
func (s *RedisSessionStore) keySession(id string) string {
	return fmt.Sprintf("form:session:%s", id)
}

// keySubmitLock returns the Redis key guarding an in-flight submission.
func (s *RedisSessionStore) keySubmitLock(id string) string {
	return fmt.Sprintf("form:submit:%s", id)
}

// Save stores the session with a TTL; every save extends its lifetime.
func (s *RedisSessionStore) Save(ctx context.Context, session *models.FormSession, ttl time.Duration) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal form session: %w", err)
	}
	if err := s.redis.Set(ctx, s.keySession(session.ID), string(jsonData), ttl); err != nil {
		return fmt.Errorf("failed to save form session: %w", err)
	}
	return nil
}

// Get retrieves a session by id.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.FormSession, error) {
	jsonData, err := s.redis.Get(ctx, s.keySession(id))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, utils.ErrSessionNotFound
		}
		return nil, err
	}

	var session models.FormSession
	if err := json.Unmarshal([]byte(jsonData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form session: %w", err)
	}
	return &session, nil
}

// Delete removes a session and its submit lock.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.redis.Delete(ctx, s.keySession(id), s.keySubmitLock(id))
}

// AcquireSubmitLock sets the lock key with SET NX. The TTL frees the lock
// if the holder dies mid-request.
func (s *RedisSessionStore) AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, s.keySubmitLock(id), time.Now().Format(time.RFC3339Nano), ttl)
}

// ReleaseSubmitLock removes the lock key.
func (s *RedisSessionStore) ReleaseSubmitLock(ctx context.Context, id string) error {
	return s.redis.Delete(ctx, s.keySubmitLock(id))
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Expired entries are
// dropped lazily on access and by Sweep.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	locks    map[string]time.Time
	now      func() time.Time
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]time.Time),
		now:      time.Now,
	}
}

// Save stores a copy of the session.
func (s *MemorySessionStore) Save(_ context.Context, session *models.FormSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal form session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = memoryEntry{data: data, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns a copy of the session.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.FormSession, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if ok && !s.now().Before(entry.expiresAt) {
		delete(s.sessions, id)
		delete(s.locks, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, utils.ErrSessionNotFound
	}

	var session models.FormSession
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form session: %w", err)
	}
	return &session, nil
}

// Delete removes a session and its submit lock.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.locks, id)
	return nil
}

// AcquireSubmitLock takes the lock unless a live one exists.
func (s *MemorySessionStore) AcquireSubmitLock(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, held := s.locks[id]; held && now.Before(exp) {
		return false, nil
	}
	s.locks[id] = now.Add(ttl)
	return true, nil
}

// ReleaseSubmitLock drops the lock.
func (s *MemorySessionStore) ReleaseSubmitLock(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	return nil
}

// Sweep removes expired sessions and locks. It returns the number of
// sessions removed.
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	for id, exp := range s.locks {
		if !now.Before(exp) {
			delete(s.locks, id)
		}
	}
	return removed
}
