package netid

import "sync/atomic"

// ID is the 32-bit handle clients use to address a simulated object.
type ID uint32

// None is never issued and marks "no object" on the wire.
const None ID = 0

// DefaultBase is the first identifier handed out by NewProvider. Low values
// stay free for map-authored objects whose ids are fixed by content.
const DefaultBase ID = 0x40000000

// Provider hands out monotonically increasing identifiers. Identifiers are
// retired with their object and never reissued for the lifetime of a match.
type Provider struct {
	last atomic.Uint32
}

// NewProvider constructs a provider whose first identifier is DefaultBase.
func NewProvider() *Provider {
	return NewProviderFrom(DefaultBase)
}

// NewProviderFrom constructs a provider whose first identifier is base.
func NewProviderFrom(base ID) *Provider {
	p := &Provider{}
	if base == None {
		base = 1
	}
	p.last.Store(uint32(base) - 1)
	return p
}

// Next returns a fresh identifier. Safe for concurrent callers.
func (p *Provider) Next() ID {
	return ID(p.last.Add(1))
}

// Last reports the most recently issued identifier, or the value preceding
// the base when nothing was issued yet.
func (p *Provider) Last() ID {
	return ID(p.last.Load())
}
