// Package clipboard moves secrets to the system clipboard and erases them
// after a delay so they don't linger.
package clipboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	atotto "github.com/atotto/clipboard"
	"github.com/securepass/securepass/vault"
)

// ErrUnavailable indicates the system clipboard rejected the write.
var ErrUnavailable = errors.New("clipboard unavailable")

// DefaultClearAfter matches the original 30-second auto-clear.
const DefaultClearAfter = 30 * time.Second

// Writer abstracts the system clipboard.
type Writer interface {
	WriteAll(text string) error
}

type systemWriter struct{}

func (systemWriter) WriteAll(text string) error {
	return atotto.WriteAll(text)
}

// Channel copies secrets to the clipboard and schedules their erasure.
// Each label has at most one pending erasure: copying under the same label
// cancels and replaces the previous timer (last write wins), while
// distinct labels run independent timers.
type Channel struct {
	mu     sync.Mutex
	writer Writer
	audit  *vault.AuditLog
	timers map[string]*time.Timer
	closed bool
}

// Option configures a Channel.
type Option func(*Channel)

// WithWriter replaces the system clipboard writer, for tests.
func WithWriter(w Writer) Option {
	return func(c *Channel) {
		c.writer = w
	}
}

// WithAuditLog records every copy in the audit ledger.
func WithAuditLog(audit *vault.AuditLog) Option {
	return func(c *Channel) {
		c.audit = audit
	}
}

// NewChannel creates a Channel writing to the system clipboard.
func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		writer: systemWriter{},
		timers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy writes text to the clipboard and schedules its erasure after
// clearAfter. The write failure is surfaced; the later erasure is
// best-effort because the secret has already left the process.
func (c *Channel) Copy(text, label string, clearAfter time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("%w: channel closed", ErrUnavailable)
	}

	if err := c.writer.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if prior, ok := c.timers[label]; ok {
		prior.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(clearAfter, func() {
		// Ownership check before the write: a timer that has been
		// superseded or cancelled while its callback was already in
		// flight must not erase the replacement's secret.
		c.mu.Lock()
		if c.closed || c.timers[label] != timer {
			c.mu.Unlock()
			return
		}
		delete(c.timers, label)
		c.mu.Unlock()
		_ = c.writer.WriteAll("")
	})
	c.timers[label] = timer

	if c.audit != nil {
		c.audit.AddLog(fmt.Sprintf("Copied %s to clipboard", label))
	}
	return nil
}

// Close cancels all pending erasures. Secrets already on the clipboard are
// cleared one final time.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := len(c.timers)
	for label, timer := range c.timers {
		timer.Stop()
		delete(c.timers, label)
	}
	c.mu.Unlock()

	if pending > 0 {
		_ = c.writer.WriteAll("")
	}
}
