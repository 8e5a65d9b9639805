package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

type pending struct {
	userID   string
	issuedAt time.Time
}

// Registry holds single-use verification tokens and the user each one
// was issued to. State is process-local; a restart forgets every
// pending verification.
type Registry struct {
	mu  sync.Mutex
	ttl time.Duration

	pending map[string]pending
	now     func() time.Time
}

// NewRegistry creates a registry whose tokens expire ttl after
// issuance. A zero ttl disables expiry.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:     ttl,
		pending: make(map[string]pending),
		now:     time.Now,
	}
}

// Issue generates a fresh URL-safe token bound to userID. Repeated
// issuance for the same user creates independent tokens; each is
// consumable on its own.
func (r *Registry) Issue(userID string) (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	tok := base64.RawURLEncoding.EncodeToString(buf[:])

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[tok] = pending{userID: userID, issuedAt: r.now()}
	return tok, nil
}

// Consume atomically removes tok and returns the user it was issued to.
// Unknown, already-consumed, and expired tokens all report false; the
// caller cannot distinguish them.
func (r *Registry) Consume(tok string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pending[tok]
	if !ok {
		return "", false
	}
	delete(r.pending, tok)

	if r.expired(entry) {
		return "", false
	}
	return entry.userID, true
}

// Pending reports the number of unconsumed tokens, sweeping out expired
// ones first.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tok, entry := range r.pending {
		if r.expired(entry) {
			delete(r.pending, tok)
		}
	}
	return len(r.pending)
}

func (r *Registry) expired(entry pending) bool {
	return r.ttl > 0 && r.now().Sub(entry.issuedAt) > r.ttl
}
