package subscription_service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wolf-push-service/models"
)

// MemorySubscriptionStore is an in-memory SubscriptionStore.
// Intended for tests and local development without MySQL.
type MemorySubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]*models.NotificationSubscription
	next uint
}

// NewMemorySubscriptionStore creates an empty in-memory store.
func NewMemorySubscriptionStore() *MemorySubscriptionStore {
	return &MemorySubscriptionStore{
		subs: make(map[string]*models.NotificationSubscription),
	}
}

// Upsert inserts or replaces a subscription keyed by endpoint.
func (s *MemorySubscriptionStore) Upsert(ctx context.Context, sub *models.NotificationSubscription) error {
	if sub == nil || sub.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.LastActive.IsZero() {
		sub.LastActive = time.Now()
	}

	cp := *sub
	if existing, ok := s.subs[sub.Endpoint]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		s.next++
		cp.ID = s.next
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
	}
	s.subs[sub.Endpoint] = &cp
	sub.ID = cp.ID
	return nil
}

// GetByEndpoint returns the subscription for an endpoint, or nil.
func (s *MemorySubscriptionStore) GetByEndpoint(ctx context.Context, endpoint string) (*models.NotificationSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[endpoint]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

// Remove deletes the subscription for an endpoint.
func (s *MemorySubscriptionStore) Remove(ctx context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, endpoint)
	return nil
}

// ListActiveSince returns subscriptions whose last_active is at or after since.
func (s *MemorySubscriptionStore) ListActiveSince(ctx context.Context, since time.Time) ([]*models.NotificationSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.NotificationSubscription
	for _, sub := range s.subs {
		if !sub.LastActive.Before(since) {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteInactiveBefore removes subscriptions whose last_active is before the cutoff.
func (s *MemorySubscriptionStore) DeleteInactiveBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for endpoint, sub := range s.subs {
		if sub.LastActive.Before(before) {
			delete(s.subs, endpoint)
			removed++
		}
	}
	return removed, nil
}

// List returns a page of subscriptions ordered by insertion id.
func (s *MemorySubscriptionStore) List(ctx context.Context, page, pageSize int) (*PaginatedSubscriptions, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*models.NotificationSubscription, 0, len(s.subs))
	for _, sub := range s.subs {
		cp := *sub
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &PaginatedSubscriptions{
		Subscriptions: all[start:end],
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
	}, nil
}

// Count returns the number of stored subscriptions.
func (s *MemorySubscriptionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
