// internal/notify/store.go
package notify

import (
	"encoding/json"
	"sync"

	"vascomart-client/internal/common/logger"
	"vascomart-client/internal/common/metrics"
	"vascomart-client/internal/models"
)

// Store is the bounded, ordered notification collection. Newest first,
// at most capacity entries, oldest evicted. The store is the sole owner
// of its records; List returns copies.
type Store struct {
	mu       sync.Mutex
	capacity int
	items    []models.Notification
	log      logger.Logger
}

func NewStore(capacity int, log logger.Logger) *Store {
	if capacity < 1 {
		capacity = 50
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		capacity: capacity,
		items:    make([]models.Notification, 0, capacity),
		log:      log,
	}
}

// Insert prepends n. An existing entry with the same notification ID or
// the same order identity is replaced rather than duplicated, then the
// collection is truncated to capacity.
func (s *Store) Insert(n *models.Notification) {
	if n == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	incomingOrder, hasOrder := orderIdentity(n.RawData)

	kept := s.items[:0]
	for _, existing := range s.items {
		if existing.ID == n.ID {
			continue
		}
		if hasOrder {
			if existingOrder, ok := orderIdentity(existing.RawData); ok && existingOrder == incomingOrder {
				continue
			}
		}
		kept = append(kept, existing)
	}

	s.items = append([]models.Notification{*n}, kept...)
	if len(s.items) > s.capacity {
		s.items = s.items[:s.capacity]
	}

	metrics.NotificationsStored.WithLabelValues(string(n.Type)).Inc()
}

// MarkRead flips the notification to read. Read never transitions back.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return true
		}
	}
	return false
}

func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
}

// List returns the notifications newest first.
func (s *Store) List() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for i := range s.items {
		if !s.items[i].Read {
			count++
		}
	}
	return count
}

// orderIdentity extracts the order identity from a stored raw event.
func orderIdentity(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	if v, ok := obj["orderId"]; ok {
		return stringifyID(v), true
	}
	return "", false
}
