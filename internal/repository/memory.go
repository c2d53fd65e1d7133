package repository

import (
	"context"
	"sync"
	"time"

	"salonbook/internal/models"
)

// MemoryStateRepository keeps wizard sessions in process memory. Used in
// tests and as the failover target when Redis is down.
type MemoryStateRepository struct {
	sessions   sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		ttl: ttl,
	}
}

type sessionEntry struct {
	session   *models.WizardSession
	expiresAt time.Time
}

func (r *MemoryStateRepository) GetSession(ctx context.Context, clientID string) (*models.WizardSession, error) {
	val, ok := r.sessions.Load(clientID)
	if !ok {
		return nil, nil
	}
	entry := val.(*sessionEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.sessions.Delete(clientID)
		return nil, nil
	}
	return entry.session, nil
}

func (r *MemoryStateRepository) SetSession(ctx context.Context, session *models.WizardSession) error {
	r.sessions.Store(session.ClientID, &sessionEntry{
		session:   session,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryStateRepository) ClearSession(ctx context.Context, clientID string) error {
	r.sessions.Delete(clientID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
