package mapper

import (
	"encoding/gob"
	"fmt"
	"io"
	"sort"

	"github.com/retroenv/msxmem/internal/slot"
)

// SlotState is the serialized mapper state of one cartridge slot.
type SlotState struct {
	Slot       byte // slot byte in E0SSPP format
	Variant    Variant
	ROMSize    int
	Banks      []int
	SCCEnabled bool
}

// Snapshot returns the state of all registered mappers ordered by slot.
func (e *Engine) Snapshot() []SlotState {
	states := make([]SlotState, 0, len(e.states))
	for id, s := range e.states {
		banks := make([]int, len(s.banks))
		copy(banks, s.banks)

		states = append(states, SlotState{
			Slot:       id.Byte(),
			Variant:    s.variant,
			ROMSize:    s.romSize,
			Banks:      banks,
			SCCEnabled: s.sccEnabled,
		})
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].Slot < states[j].Slot
	})
	return states
}

// Restore replaces the state of all mappers with the snapshot. The engine is
// left unchanged if the snapshot contains an invalid state.
func (e *Engine) Restore(snapshot []SlotState) error {
	states := make(map[slot.ID]*state, len(snapshot))

	for _, ss := range snapshot {
		id := slot.FromByte(ss.Slot)
		if _, ok := states[id]; ok {
			return fmt.Errorf("%w: slot %s: duplicate state", ErrInvalidSnapshot, id)
		}

		s, err := newState(ss.Variant, ss.ROMSize)
		if err != nil {
			return fmt.Errorf("%w: slot %s: %w", ErrInvalidSnapshot, id, err)
		}
		if len(ss.Banks) != len(s.banks) {
			return fmt.Errorf("%w: slot %s: %d banks for %d windows",
				ErrInvalidSnapshot, id, len(ss.Banks), len(s.banks))
		}

		for i, bank := range ss.Banks {
			if bank < 0 || bank >= s.bankCount {
				return fmt.Errorf("%w: slot %s: bank %d out of range", ErrInvalidSnapshot, id, bank)
			}
			s.banks[i] = bank
		}
		s.sccEnabled = ss.SCCEnabled && ss.Variant == KonamiSCC

		states[id] = s
	}

	e.states = states
	return nil
}

// SaveState writes the snapshot of all mappers to the writer.
func (e *Engine) SaveState(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(e.Snapshot()); err != nil {
		return fmt.Errorf("encoding mapper state: %w", err)
	}
	return nil
}

// LoadState restores the mappers from a snapshot written by SaveState.
func (e *Engine) LoadState(r io.Reader) error {
	var snapshot []SlotState
	if err := gob.NewDecoder(r).Decode(&snapshot); err != nil {
		return fmt.Errorf("decoding mapper state: %w", err)
	}
	return e.Restore(snapshot)
}
