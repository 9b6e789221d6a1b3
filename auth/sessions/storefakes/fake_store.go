// Package storefakes provides an in-memory sessions.Store for tests.
package storefakes

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/go-blog-server/auth/sessions"
)

var _ sessions.Store = (*FakeStore)(nil)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// FakeStore is an in-memory Store with real TTL semantics. The clock is
// injectable so tests can advance past an expiry window without sleeping.
type FakeStore struct {
	lock    sync.Mutex
	entries map[string]entry
	NowTime func() time.Time
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		entries: make(map[string]entry),
		NowTime: time.Now,
	}
}

// live returns the entry for key, expiring it lazily. Callers must hold the lock.
func (s *FakeStore) live(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !s.NowTime().Before(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *FakeStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.NowTime().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *FakeStore) Get(_ context.Context, key string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.live(key)
	if !ok {
		return "", nil
	}
	return e.value, nil
}

func (s *FakeStore) Delete(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *FakeStore) IncrementWithExpiry(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.live(key)
	count := int64(0)
	if ok {
		count, _ = strconv.ParseInt(e.value, 10, 64)
	}
	count++

	next := entry{value: strconv.FormatInt(count, 10), expiresAt: e.expiresAt}
	if count == 1 && ttl > 0 {
		next.expiresAt = s.NowTime().Add(ttl)
	}
	s.entries[key] = next
	return count, nil
}

func (s *FakeStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.live(key)
	if !ok || e.value != expected {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}
