package listpage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrConfirmationRequired = errors.New("confirmation required")

const DefaultConfirmTTL = 2 * time.Minute

type pending struct {
	operator string
	resource string
	id       int64
	expires  time.Time
}

// ConfirmDialog stands in front of destructive row actions. A token is
// issued to one operator for one resource+id, and a later call by that
// operator must present it. Tokens are single use.
type ConfirmDialog struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]pending
}

func NewConfirmDialog(ttl time.Duration) *ConfirmDialog {
	if ttl <= 0 {
		ttl = DefaultConfirmTTL
	}
	return &ConfirmDialog{ttl: ttl, now: time.Now, tokens: make(map[string]pending)}
}

// Issue opens the dialog for a row and returns the token that confirms it.
func (d *ConfirmDialog) Issue(operatorID, resource string, id int64) (string, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweep()

	token := uuid.NewString()
	exp := d.now().Add(d.ttl)
	d.tokens[token] = pending{operator: operatorID, resource: resource, id: id, expires: exp}
	return token, exp
}

// Confirm consumes token. Any mismatch, reuse or expiry yields
// ErrConfirmationRequired. A token presented by another operator is left
// in place for its owner.
func (d *ConfirmDialog) Confirm(operatorID, resource string, id int64, token string) error {
	if token == "" {
		return ErrConfirmationRequired
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.tokens[token]
	if !ok || p.operator != operatorID {
		return ErrConfirmationRequired
	}
	delete(d.tokens, token)
	if p.resource != resource || p.id != id || !d.now().Before(p.expires) {
		return ErrConfirmationRequired
	}
	return nil
}

// Cancel drops the operator's token without acting on it.
func (d *ConfirmDialog) Cancel(operatorID, token string) {
	d.mu.Lock()
	if p, ok := d.tokens[token]; ok && p.operator == operatorID {
		delete(d.tokens, token)
	}
	d.mu.Unlock()
}

func (d *ConfirmDialog) sweep() {
	now := d.now()
	for k, p := range d.tokens {
		if !now.Before(p.expires) {
			delete(d.tokens, k)
		}
	}
}
