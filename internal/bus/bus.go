// Package bus provides the MSX address space context that combines the slot
// resolver, the mapper engine and the memory devices plugged into the slots.
package bus

import (
	"fmt"
	"io"
	"sync"

	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/msxmem/internal/memory"
	"github.com/retroenv/msxmem/internal/slot"
	"github.com/retroenv/retrogolib/arch/cpu/z80"
	"github.com/retroenv/retrogolib/log"
)

var _ z80.Memory = (*Bus)(nil)

const (
	// PrimarySelectPort is the I/O port of the primary slot select register.
	PrimarySelectPort = 0xA8

	// SecondarySelectAddress is the memory mapped secondary slot register of
	// the expanded slot selected in page 3.
	SecondarySelectAddress = 0xFFFF
)

// SoundChip is the register interface of the SCC sound chip of Konami cartridges.
type SoundChip interface {
	ReadRegister(register uint8) byte
	WriteRegister(register uint8, value byte)
}

type ramKey struct {
	slot slot.ID
	page slot.Page
}

// Bus is an independent MSX address space. All methods are safe for concurrent
// use, every operation is serialized by a single mutex.
type Bus struct {
	mu     sync.Mutex
	logger *log.Logger

	resolver *slot.Resolver
	engine   *mapper.Engine

	roms map[slot.ID]memory.ROM
	ram  map[ramKey]memory.RAM
	scc  SoundChip
}

// Option configures a bus.
type Option func(*config)

type config struct {
	expanded []uint8
	scc      SoundChip
}

// WithExpanded marks the given primary slots as expanded.
func WithExpanded(primaries ...uint8) Option {
	return func(c *config) {
		c.expanded = append(c.expanded, primaries...)
	}
}

// WithSoundChip sets the device that handles SCC register accesses.
func WithSoundChip(scc SoundChip) Option {
	return func(c *config) {
		c.scc = scc
	}
}

// New returns a new address space with all pages selecting primary slot 0
// and no devices attached.
func New(logger *log.Logger, options ...Option) *Bus {
	cfg := &config{}
	for _, option := range options {
		option(cfg)
	}
	if cfg.scc == nil {
		cfg.scc = &SCCRegisters{}
	}

	return &Bus{
		logger:   logger,
		resolver: slot.NewResolver(slot.WithExpanded(cfg.expanded...)),
		engine:   mapper.New(),
		roms:     make(map[slot.ID]memory.ROM),
		ram:      make(map[ramKey]memory.RAM),
		scc:      cfg.scc,
	}
}

// InsertCartridge registers the ROM image with the mapper variant in the slot.
func (b *Bus) InsertCartridge(id slot.ID, image memory.ROM, variant mapper.Variant) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.engine.Register(id, variant, image.Size()); err != nil {
		return fmt.Errorf("inserting cartridge into slot %s: %w", id, err)
	}
	b.roms[id.Key()] = image

	b.logger.Debug("Cartridge inserted",
		log.Stringer("slot", id),
		log.Stringer("mapper", variant),
		log.Int("size", image.Size()))
	return nil
}

// EjectCartridge removes the cartridge and its mapper state from the slot.
func (b *Bus) EjectCartridge(id slot.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.engine.Unregister(id)
	delete(b.roms, id.Key())
}

// AttachRAM attaches a RAM page to the page of the slot.
func (b *Bus) AttachRAM(id slot.ID, page slot.Page, ram memory.RAM) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ram[ramKey{slot: id.Key(), page: page & 3}] = ram
}

// Resolve returns the slot, page and page offset of the address.
func (b *Bus) Resolve(address uint16) slot.Resolution {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.resolver.Resolve(address)
}

// SelectSlot selects the slot for the page.
func (b *Bus) SelectSlot(page slot.Page, id slot.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resolver.SelectSlot(page, id)
	b.logger.Debug("Slot selected",
		log.Uint8("page", uint8(page&3)),
		log.Stringer("slot", b.resolver.Slot(page)))
}

// IsExpanded returns whether the primary slot is expanded.
func (b *Bus) IsExpanded(primary uint8) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.resolver.IsExpanded(primary)
}

// Assignment returns the slot selected for every page.
func (b *Bus) Assignment() [slot.NumPages]slot.ID {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.resolver.Assignment()
}

// RegisterMapper registers a mapper for the slot without attaching a ROM image,
// reads of ROM locations return the unmapped value until a cartridge is inserted.
func (b *Bus) RegisterMapper(id slot.ID, variant mapper.Variant, romSize int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.engine.Register(id, variant, romSize); err != nil {
		return fmt.Errorf("registering mapper for slot %s: %w", id, err)
	}
	return nil
}

// OnWrite writes the value to the address of the slot. Writes to mapper control
// registers switch banks, all other writes go to the memory of the slot.
func (b *Bus) OnWrite(id slot.ID, address uint16, value byte) mapper.WriteResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.writeSlot(id, address, value)
}

// TranslateRead returns the backing location of the page offset of the slot.
func (b *Bus) TranslateRead(id slot.ID, page slot.Page, offset uint16) mapper.Access {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.engine.TranslateRead(id, page, offset)
}

// Read reads the byte at the address from the slot that is selected for its page.
func (b *Bus) Read(address uint16) byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.read(address)
}

// Write writes the byte to the address of the slot that is selected for its page.
func (b *Bus) Write(address uint16, value byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.write(address, value)
}

// ReadWord reads a little endian word starting at the address. The high byte
// is read from the next address, wrapping around at the end of the address space.
func (b *Bus) ReadWord(address uint16) uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	low := b.read(address)
	high := b.read(address + 1)
	return uint16(high)<<8 | uint16(low)
}

// WriteWord writes a little endian word starting at the address.
func (b *Bus) WriteWord(address uint16, value uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.write(address, byte(value))
	b.write(address+1, byte(value>>8))
}

// ReadSlot reads the byte at the address from the given slot without changing
// the slot selection.
func (b *Bus) ReadSlot(id slot.ID, address uint16) byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.readSlot(id, address)
}

// WriteSlot writes the byte to the address of the given slot without changing
// the slot selection and returns the effect of the write.
func (b *Bus) WriteSlot(id slot.ID, address uint16, value byte) mapper.WriteResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.writeSlot(id, address, value)
}

// ReadPort reads an I/O port, only the primary slot select register is handled.
func (b *Bus) ReadPort(port uint8) byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if port != PrimarySelectPort {
		return memory.Unmapped()
	}
	return b.resolver.PrimarySelect()
}

// WritePort writes an I/O port, only the primary slot select register is handled.
func (b *Bus) WritePort(port uint8, value byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if port != PrimarySelectPort {
		return
	}
	b.resolver.SetPrimarySelect(value)
	b.logger.Debug("Primary slot select", log.Hex("value", value))
}

// SaveState writes the state of all mappers to the writer.
func (b *Bus) SaveState(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.engine.SaveState(w)
}

// LoadState restores the state of all mappers from the reader.
func (b *Bus) LoadState(r io.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.engine.LoadState(r)
}

func (b *Bus) read(address uint16) byte {
	res := b.resolver.Resolve(address)
	if address == SecondarySelectAddress && res.Slot.Expanded {
		return ^b.resolver.SecondarySelect(res.Slot.Primary)
	}
	return b.readSlot(res.Slot, address)
}

func (b *Bus) write(address uint16, value byte) {
	res := b.resolver.Resolve(address)
	if address == SecondarySelectAddress && res.Slot.Expanded {
		b.resolver.SetSecondarySelect(res.Slot.Primary, value)
		return
	}
	b.writeSlot(res.Slot, address, value)
}

func (b *Bus) readSlot(id slot.ID, address uint16) byte {
	id = id.Key()
	page := slot.PageOf(address)
	offset := slot.OffsetOf(address)

	if b.engine.Registered(id) {
		access := b.engine.TranslateRead(id, page, offset)
		switch access.Kind {
		case mapper.ROMAccess:
			if rom, ok := b.roms[id]; ok {
				return rom.Byte(access.Offset)
			}
		case mapper.SCCAccess:
			return b.scc.ReadRegister(uint8(access.Offset))
		case mapper.Unmapped:
		}
	}

	if ram, ok := b.ram[ramKey{slot: id, page: page}]; ok {
		return ram.Read(offset)
	}
	return memory.Unmapped()
}

func (b *Bus) writeSlot(id slot.ID, address uint16, value byte) mapper.WriteResult {
	id = id.Key()
	res := b.engine.OnWrite(id, address, value)

	switch res.Kind {
	case mapper.BankSwitched:
		b.logger.Debug("Bank switched",
			log.Stringer("slot", id),
			log.Hex("address", address),
			log.Int("window", res.Window),
			log.Int("bank", res.Bank))

	case mapper.SCCEnabled:
		b.logger.Debug("SCC enabled", log.Stringer("slot", id))

	case mapper.SCCWrite:
		b.scc.WriteRegister(res.Register, value)

	case mapper.Forwarded:
		page := slot.PageOf(address)
		if ram, ok := b.ram[ramKey{slot: id, page: page}]; ok {
			ram.Write(slot.OffsetOf(address), value)
		}
	}

	return res
}

// SCCRegisters is a plain register file used as SCC when no sound chip is attached.
type SCCRegisters struct {
	registers [256]byte
}

// ReadRegister returns the value of the register.
func (s *SCCRegisters) ReadRegister(register uint8) byte {
	return s.registers[register]
}

// WriteRegister sets the value of the register.
func (s *SCCRegisters) WriteRegister(register uint8, value byte) {
	s.registers[register] = value
}
