package chat

import (
	"sync"

	"shapechat/internal/domain"
)

// Compose holds the transient state of the message being written: at
// most one pending attachment. Every exit path — replacement, explicit
// removal, send, session close — releases the held preview handle
// exactly once.
type Compose struct {
	mu      sync.Mutex
	pending *domain.PendingAttachment
}

func NewCompose() *Compose {
	return &Compose{}
}

// Attach stages an attachment, releasing any previously staged one
// first so no two preview handles are ever live at once.
func (c *Compose) Attach(att *domain.PendingAttachment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Preview.Release()
	}
	c.pending = att
}

// Clear drops the pending attachment, if any.
func (c *Compose) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Preview.Release()
		c.pending = nil
	}
}

// Take transfers ownership of the pending attachment to the caller and
// clears the compose state. The handle is NOT released: the caller now
// owns it.
func (c *Compose) Take() *domain.PendingAttachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	att := c.pending
	c.pending = nil
	return att
}

// Pending reports whether an attachment is staged.
func (c *Compose) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// PendingName returns the staged attachment's file name, or "".
func (c *Compose) PendingName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return ""
	}
	return c.pending.FileName
}

// Close ends the compose session. Safe to call more than once.
func (c *Compose) Close() {
	c.Clear()
}
