// Package mapper provides the MegaROM mapper engine that tracks the bank
// registers of cartridge slots and translates cartridge addresses to ROM offsets.
package mapper

import (
	"github.com/retroenv/msxmem/internal/slot"
)

// Engine holds the mapper state of all registered cartridge slots.
// It is not safe for concurrent use, the owning bus serializes all access.
type Engine struct {
	states map[slot.ID]*state
}

// New creates a new mapper engine without registered cartridges.
func New() *Engine {
	return &Engine{
		states: make(map[slot.ID]*state),
	}
}

// Register creates the mapper state for a cartridge of the given variant and
// ROM size in the slot. An existing state of the slot is replaced, a failed
// registration leaves all states untouched.
func (e *Engine) Register(id slot.ID, variant Variant, romSize int) error {
	s, err := newState(variant, romSize)
	if err != nil {
		return err
	}
	e.states[id.Key()] = s
	return nil
}

// Unregister removes the mapper state of the slot.
func (e *Engine) Unregister(id slot.ID) {
	delete(e.states, id.Key())
}

// Registered returns whether a mapper state exists for the slot.
func (e *Engine) Registered(id slot.ID) bool {
	_, ok := e.states[id.Key()]
	return ok
}

// Variant returns the mapper variant registered for the slot.
func (e *Engine) Variant(id slot.ID) (Variant, bool) {
	s, ok := e.states[id.Key()]
	if !ok {
		return None, false
	}
	return s.variant, true
}

// BankCount returns the number of physical banks of the cartridge in the slot.
func (e *Engine) BankCount(id slot.ID) int {
	s, ok := e.states[id.Key()]
	if !ok {
		return 0
	}
	return s.bankCount
}

// OnWrite handles a write to an address of the slot. Writes to a control
// register of the mapper update its bank selection, all other writes are
// returned as forwarded to be handled as ordinary memory writes.
func (e *Engine) OnWrite(id slot.ID, address uint16, value byte) WriteResult {
	s, ok := e.states[id.Key()]
	if !ok {
		return WriteResult{Kind: Forwarded}
	}
	return s.write(address, value)
}

// TranslateRead returns the backing location of the page offset for the slot.
func (e *Engine) TranslateRead(id slot.ID, page slot.Page, offset uint16) Access {
	s, ok := e.states[id.Key()]
	if !ok {
		return Access{Kind: Unmapped}
	}
	return s.translate(page.Address(offset))
}
