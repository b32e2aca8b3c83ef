// Package slot provides the MSX slot resolver that maps 16-bit addresses to slots and pages.
package slot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// expandedFlag marks a slot byte as referencing a secondary slot.
const expandedFlag = 0x80

var errInvalidID = errors.New("invalid slot id")

// ID identifies a primary slot and, if expanded, one of its secondary slots.
type ID struct {
	Expanded  bool
	Secondary uint8 // only meaningful if Expanded is set
	Primary   uint8
}

// Primary returns the ID of a non-expanded primary slot.
func Primary(primary uint8) ID {
	return ID{Primary: primary & 3}
}

// Expanded returns the ID of a secondary slot of an expanded primary slot.
func Expanded(primary, secondary uint8) ID {
	return ID{
		Expanded:  true,
		Secondary: secondary & 3,
		Primary:   primary & 3,
	}
}

// FromByte decodes a slot byte in the E0SSPP format.
func FromByte(b byte) ID {
	if b&expandedFlag == 0 {
		return Primary(b)
	}
	return Expanded(b, b>>4)
}

// Byte encodes the ID in the E0SSPP format.
func (id ID) Byte() byte {
	b := id.Primary & 3
	if id.Expanded {
		b |= expandedFlag | (id.Secondary&3)<<4
	}
	return b
}

// Key returns a normalized copy of the ID that can be compared and used as map key.
// The secondary index is cleared for non-expanded IDs.
func (id ID) Key() ID {
	if !id.Expanded {
		return Primary(id.Primary)
	}
	return Expanded(id.Primary, id.Secondary)
}

// Equal returns whether both IDs reference the same effective slot.
func (id ID) Equal(other ID) bool {
	return id.Key() == other.Key()
}

func (id ID) String() string {
	if !id.Expanded {
		return strconv.Itoa(int(id.Primary & 3))
	}
	return fmt.Sprintf("%d-%d", id.Primary&3, id.Secondary&3)
}

// Parse parses a slot ID in the format "1" for a primary slot or "1-2" for a secondary slot.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	primary, secondary, expanded := strings.Cut(s, "-")

	p, err := parseIndex(primary)
	if err != nil {
		return ID{}, fmt.Errorf("%w '%s': %w", errInvalidID, s, err)
	}
	if !expanded {
		return Primary(p), nil
	}

	sec, err := parseIndex(secondary)
	if err != nil {
		return ID{}, fmt.Errorf("%w '%s': %w", errInvalidID, s, err)
	}
	return Expanded(p, sec), nil
}

func parseIndex(s string) (uint8, error) {
	i, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("parsing index: %w", err)
	}
	if i > 3 {
		return 0, fmt.Errorf("index %d out of range 0-3", i)
	}
	return uint8(i), nil
}
