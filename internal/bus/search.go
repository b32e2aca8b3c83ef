package bus

import (
	"github.com/retroenv/msxmem/internal/slot"
)

// ROMSignature is the signature at the start of an MSX ROM cartridge header.
var ROMSignature = []byte{'A', 'B'}

// Slots returns all slots of the address space in search order: the primary
// slots, with the secondary slots of an expanded primary slot in place of it.
func (b *Bus) Slots() []slot.ID {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.slots()
}

// SearchSignature returns the first slot that contains the signature at the
// start of the page.
func (b *Bus) SearchSignature(signature []byte, page slot.Page) (slot.ID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(signature) == 0 {
		return slot.ID{}, false
	}

	base := page.Base()
	for _, id := range b.slots() {
		if b.matchesAt(id, base, signature) {
			return id, true
		}
	}
	return slot.ID{}, false
}

func (b *Bus) matchesAt(id slot.ID, address uint16, signature []byte) bool {
	for i, expected := range signature {
		if b.readSlot(id, address+uint16(i)) != expected {
			return false
		}
	}
	return true
}

func (b *Bus) slots() []slot.ID {
	var ids []slot.ID
	for primary := range uint8(4) {
		if !b.resolver.IsExpanded(primary) {
			ids = append(ids, slot.Primary(primary))
			continue
		}
		for secondary := range uint8(4) {
			ids = append(ids, slot.Expanded(primary, secondary))
		}
	}
	return ids
}
