// Package notify holds the transient toast queue shown over every view.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification for display.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

// Notification is one visible toast. Owned by the Center; callers keep only
// the identifier.
type Notification struct {
	ID      string
	Message string
	Kind    Kind
	ShownAt time.Time
}

const defaultTTL = 5 * time.Second

// Center is the process-wide toast queue. Construct one at the application
// root and pass it down; there is no package-level instance.
type Center struct {
	mu    sync.Mutex
	items []Notification
	ttl   time.Duration
	now   func() time.Time
}

// NewCenter returns a Center with the standard 5 second display duration.
func NewCenter() *Center {
	return &Center{ttl: defaultTTL, now: time.Now}
}

// Show appends a toast and returns its identifier so a caller may dismiss it
// early. Toasts expire automatically after the display duration.
func (c *Center) Show(message string, kind Kind) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	c.items = append(c.items, Notification{
		ID:      id,
		Message: message,
		Kind:    kind,
		ShownAt: c.now(),
	})
	return id
}

// Hide removes the toast with the given identifier. Hiding an unknown or
// already-expired identifier is a no-op.
func (c *Center) Hide(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Active prunes expired toasts and returns the visible ones oldest-first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.ttl)
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ShownAt.After(cutoff) {
			kept = append(kept, item)
		}
	}
	c.items = kept

	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}
