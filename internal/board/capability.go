package board

import (
	"sync"

	"github.com/perch-labs/noticeboard/internal/domain"
)

// Capability is the single-holder admin token. It is bound at creation to
// exactly one registry and never rebound; exactly one principal holds it at
// any time. Holding it is necessary and sufficient for gated writes on the
// bound registry.
type Capability struct {
	boundTo domain.ID

	mu     sync.Mutex
	holder domain.Principal
}

// NewCapability mints a capability bound to reg, held by holder.
func NewCapability(reg *Registry, holder domain.Principal) *Capability {
	return &Capability{boundTo: reg.ID(), holder: holder}
}

// Holder returns the current holder.
func (c *Capability) Holder() domain.Principal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.holder
}

// Authorize checks that the capability is bound to reg and presented by its
// current holder. A capability bound to a different registry is rejected with
// ErrCapabilityMismatch, never silently ignored.
func (c *Capability) Authorize(presenter domain.Principal, reg *Registry) error {
	if c.boundTo != reg.ID() {
		return ErrCapabilityMismatch
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.holder != presenter {
		return ErrNotHolder
	}
	return nil
}

// transfer moves exclusive ownership from the current holder to newHolder.
// The move is atomic: once it returns, the previous holder can no longer
// exercise the capability.
func (c *Capability) transfer(from, to domain.Principal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.holder != from {
		return ErrNotHolder
	}
	c.holder = to
	return nil
}
