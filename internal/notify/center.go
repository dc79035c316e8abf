// internal/notify/center.go

// Package notify holds the transient status banners shown to the user.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a banner.
type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Warning Level = "warning"
	Info    Level = "info"
)

// DefaultTTL is how long a banner stays visible.
const DefaultTTL = 5 * time.Second

// Notification is one banner.
type Notification struct {
	ID      uuid.UUID
	Level   Level
	Text    string
	Posted  time.Time
	Expires time.Time
}

// Center collects banners and drops them once they expire.
type Center struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	items  []Notification
	logger *slog.Logger
}

// Option configures a Center.
type Option func(*Center)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithLogger logs every banner through l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Center) { c.logger = l }
}

// NewCenter creates a Center whose banners live for ttl (DefaultTTL if zero).
func NewCenter(ttl time.Duration, opts ...Option) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Center{
		ttl:    ttl,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post adds a banner.
func (c *Center) Post(level Level, text string) Notification {
	c.mu.Lock()
	now := c.now()
	n := Notification{
		ID:      uuid.New(),
		Level:   level,
		Text:    text,
		Posted:  now,
		Expires: now.Add(c.ttl),
	}
	c.items = append(c.items, n)
	c.mu.Unlock()

	switch level {
	case Error:
		c.logger.Error(text, "banner", n.ID)
	case Warning:
		c.logger.Warn(text, "banner", n.ID)
	default:
		c.logger.Info(text, "banner", n.ID, "level", string(level))
	}
	return n
}

// Active returns unexpired banners, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.Expires) {
			kept = append(kept, n)
		}
	}
	c.items = kept
	return append([]Notification(nil), kept...)
}

// Latest returns the most recent unexpired banner.
func (c *Center) Latest() (Notification, bool) {
	active := c.Active()
	if len(active) == 0 {
		return Notification{}, false
	}
	return active[len(active)-1], true
}

// Dismiss removes a banner before it expires.
func (c *Center) Dismiss(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}
