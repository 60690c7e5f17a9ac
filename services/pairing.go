package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PairingSession is one short-lived ID-scan pairing: the front desk opens a
// session, the scanner device attaches the scanned document fields, the desk
// claims them. Sessions self-expire after the TTL whether or not anyone ever
// responds.
type PairingSession struct {
	ID        string                 `json:"id"`
	BookingID uint                   `json:"bookingId,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	ExpiresAt time.Time              `json:"expiresAt"`
}

type pairingEntry struct {
	session PairingSession
	timer   *time.Timer
}

// PairingStore is a process-wide keyed store with per-entry expiry timers.
// Single-process only: a multi-instance deployment needs an external
// TTL-capable store instead.
type PairingStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]*pairingEntry
	onExpire func(id string)
}

func NewPairingStore(ttl time.Duration, onExpire func(id string)) *PairingStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PairingStore{
		ttl:      ttl,
		entries:  map[string]*pairingEntry{},
		onExpire: onExpire,
	}
}

func (s *PairingStore) Create(bookingID uint) PairingSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	session := PairingSession{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	id := session.ID
	s.entries[id] = &pairingEntry{
		session: session,
		timer: time.AfterFunc(s.ttl, func() {
			s.expire(id)
		}),
	}
	return session
}

// Attach stores the scanned payload on a live session.
func (s *PairingStore) Attach(id string, payload map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return NotFoundf("pairing session not found or expired")
	}
	entry.session.Payload = payload
	return nil
}

// Claim removes and returns a live session, stopping its expiry timer.
func (s *PairingStore) Claim(id string) (PairingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return PairingSession{}, false
	}
	entry.timer.Stop()
	delete(s.entries, id)
	return entry.session, true
}

func (s *PairingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *PairingStore) expire(id string) {
	s.mu.Lock()
	_, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	cb := s.onExpire
	s.mu.Unlock()

	if ok && cb != nil {
		cb(id)
	}
}
