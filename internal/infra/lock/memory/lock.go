// Package memory provides a process-local commit lock with expiry.
package memory

import (
	"context"
	"sync"
	"time"

	"profilereview/internal/profile"
)

var _ profile.Locker = (*Locker)(nil)

// Locker holds named leases in a map guarded by a mutex.
type Locker struct {
	mu     sync.Mutex
	leases map[string]lease
	seq    uint64
	now    func() time.Time
}

type lease struct {
	token   uint64
	expires time.Time
}

// New returns an empty locker.
func New() *Locker {
	return &Locker{leases: make(map[string]lease), now: time.Now}
}

// SetClock overrides the time source used for expiry.
func (l *Locker) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now != nil {
		l.now = now
	}
}

// Acquire takes key for ttl. Expired leases are reclaimed.
func (l *Locker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if held, ok := l.leases[key]; ok && now.Before(held.expires) {
		return nil, profile.ErrLocked
	}
	l.seq++
	token := l.seq
	l.leases[key] = lease{token: token, expires: now.Add(ttl)}
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if held, ok := l.leases[key]; ok && held.token == token {
			delete(l.leases, key)
		}
		return nil
	}, nil
}
