package bus

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/msxmem/internal/memory"
	"github.com/retroenv/msxmem/internal/slot"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// createImage returns a ROM image where the first byte of every 8KB bank
// contains the bank number.
func createImage(size int) memory.Image {
	img := make(memory.Image, size)
	for bank := 0; bank*0x2000 < size; bank++ {
		img[bank*0x2000] = byte(bank)
	}
	return img
}

func TestBus_RAMAndROM(t *testing.T) {
	b := New(log.NewTestLogger(t))
	cart := slot.Primary(1)
	ramSlot := slot.Primary(3)

	img := createImage(0x8000)
	copy(img, ROMSignature)
	assert.NoError(t, b.InsertCartridge(cart, img, mapper.None))
	for page := range slot.Page(4) {
		b.AttachRAM(ramSlot, page, memory.NewRAMPage())
	}

	b.SelectSlot(1, cart)
	b.SelectSlot(2, cart)
	b.SelectSlot(3, ramSlot)

	assert.Equal(t, byte('A'), b.Read(0x4000))
	assert.Equal(t, byte('B'), b.Read(0x4001))
	assert.Equal(t, byte(2), b.Read(0x8000))
	assert.Equal(t, byte(0xFF), b.Read(0x0000)) // nothing in slot 0

	// ROM discards writes
	b.Write(0x4000, 0x00)
	assert.Equal(t, byte('A'), b.Read(0x4000))

	b.Write(0xC123, 0x55)
	assert.Equal(t, byte(0x55), b.Read(0xC123))
	assert.Equal(t, byte(0x55), b.ReadSlot(ramSlot, 0xC123))
	assert.Equal(t, byte(0), b.ReadSlot(ramSlot, 0x4123))
}

func TestBus_MegaROM(t *testing.T) {
	b := New(log.NewTestLogger(t))
	cart := slot.Primary(2)
	assert.NoError(t, b.InsertCartridge(cart, createImage(0x10000), mapper.ASCII8))

	b.SelectSlot(1, cart)
	b.SelectSlot(2, cart)

	b.Write(0x6000, 3)
	b.Write(0x7000, 5)
	assert.Equal(t, byte(3), b.Read(0x4000))
	assert.Equal(t, byte(5), b.Read(0x8000))

	res := b.OnWrite(cart, 0x7800, 11) // 11 mod 8
	assert.Equal(t, mapper.BankSwitched, res.Kind)
	assert.Equal(t, 3, res.Bank)
	assert.Equal(t, byte(3), b.Read(0xA000))

	access := b.TranslateRead(cart, 2, 0x2000)
	assert.Equal(t, mapper.Access{Kind: mapper.ROMAccess, Offset: 3 * 0x2000}, access)

	b.EjectCartridge(cart)
	assert.Equal(t, byte(0xFF), b.Read(0x4000))
}

func TestBus_RegisterMapperError(t *testing.T) {
	b := New(log.NewTestLogger(t))

	err := b.RegisterMapper(slot.Primary(1), mapper.ASCII16, 0x3000)
	assert.True(t, errors.Is(err, mapper.ErrInvalidConfiguration))

	err = b.InsertCartridge(slot.Primary(1), memory.Image(make([]byte, 0x3000)), mapper.ASCII16)
	assert.True(t, errors.Is(err, mapper.ErrInvalidConfiguration))

	assert.NoError(t, b.RegisterMapper(slot.Primary(1), mapper.ASCII16, 0x8000))
	assert.Equal(t, byte(0xFF), b.ReadSlot(slot.Primary(1), 0x4000))
}

func TestBus_SCC(t *testing.T) {
	b := New(log.NewTestLogger(t))
	cart := slot.Primary(1)
	assert.NoError(t, b.InsertCartridge(cart, createImage(0x20000), mapper.KonamiSCC))
	b.SelectSlot(2, cart)

	b.Write(0x9000, 4)
	assert.Equal(t, byte(4), b.Read(0x8000))

	b.Write(0x9000, 0x3F)
	b.Write(0x9801, 0x77)
	assert.Equal(t, byte(0x77), b.Read(0x9801))
	assert.Equal(t, byte(0x77), b.Read(0x9901)) // registers repeat every 256 bytes
	assert.Equal(t, byte(4), b.Read(0x8000))
}

// soundChip records the register writes that reach it.
type soundChip struct {
	registers map[uint8]byte
}

func (s *soundChip) ReadRegister(register uint8) byte {
	return s.registers[register]
}

func (s *soundChip) WriteRegister(register uint8, value byte) {
	s.registers[register] = value
}

func TestBus_SoundChip(t *testing.T) {
	scc := &soundChip{registers: map[uint8]byte{}}
	b := New(log.NewTestLogger(t), WithSoundChip(scc))
	cart := slot.Primary(1)
	assert.NoError(t, b.InsertCartridge(cart, createImage(0x20000), mapper.KonamiSCC))
	b.SelectSlot(2, cart)

	// registers are only visible after bank 3Fh is selected in window 2
	b.Write(0x9805, 0x11)
	assert.Len(t, scc.registers, 0)

	b.Write(0x9000, 0x3F)
	b.Write(0x9805, 0xAA)
	assert.Equal(t, byte(0xAA), scc.registers[5])
	assert.Equal(t, byte(0xAA), b.Read(0x9805))

	scc.registers[0x8A] = 0x42
	assert.Equal(t, byte(0x42), b.Read(0x988A))
}

func TestBus_Word(t *testing.T) {
	b := New(log.NewTestLogger(t))
	ramSlot := slot.Primary(3)
	for page := range slot.Page(4) {
		b.AttachRAM(ramSlot, page, memory.NewRAMPage())
		b.SelectSlot(page, ramSlot)
	}

	b.WriteWord(0xC000, 0x1234)
	assert.Equal(t, byte(0x34), b.Read(0xC000))
	assert.Equal(t, byte(0x12), b.Read(0xC001))
	assert.Equal(t, uint16(0x1234), b.ReadWord(0xC000))

	// crosses the page boundary
	b.WriteWord(0x7FFF, 0xBEEF)
	assert.Equal(t, byte(0xEF), b.Read(0x7FFF))
	assert.Equal(t, byte(0xBE), b.Read(0x8000))
	assert.Equal(t, uint16(0xBEEF), b.ReadWord(0x7FFF))
}

func TestBus_SecondarySlotRegister(t *testing.T) {
	b := New(log.NewTestLogger(t), WithExpanded(3))
	assert.True(t, b.IsExpanded(3))
	assert.False(t, b.IsExpanded(0))

	for sec := range uint8(4) {
		ram := memory.NewRAMPage()
		ram.Write(0, sec+0x10)
		b.AttachRAM(slot.Expanded(3, sec), 1, ram)
		b.AttachRAM(slot.Expanded(3, sec), 3, memory.NewRAMPage())
	}

	// primary slot 3 for pages 1 and 3
	b.WritePort(PrimarySelectPort, 0b11_00_11_00)
	assert.Equal(t, byte(0b11_00_11_00), b.ReadPort(PrimarySelectPort))
	assert.Equal(t, byte(0xFF), b.ReadPort(0x99))

	// secondary slot 2 for page 1
	b.Write(SecondarySelectAddress, 0b00_00_10_00)
	assert.Equal(t, ^byte(0b00_00_10_00), b.Read(SecondarySelectAddress))
	assert.Equal(t, slot.Expanded(3, 2), b.Resolve(0x4000).Slot)
	assert.Equal(t, byte(0x12), b.Read(0x4000))
	assert.Equal(t, slot.Expanded(3, 0), b.Assignment()[3])
}

func TestBus_SearchSignature(t *testing.T) {
	b := New(log.NewTestLogger(t), WithExpanded(2))

	img := createImage(0x4000)
	copy(img, ROMSignature)
	assert.NoError(t, b.InsertCartridge(slot.Expanded(2, 3), img, mapper.None))

	id, ok := b.SearchSignature(ROMSignature, 1)
	assert.True(t, ok)
	assert.Equal(t, slot.Expanded(2, 3), id)

	_, ok = b.SearchSignature(ROMSignature, 2)
	assert.False(t, ok)
	_, ok = b.SearchSignature(nil, 1)
	assert.False(t, ok)

	assert.Equal(t, 7, len(b.Slots()))
}

func TestBus_SaveLoadState(t *testing.T) {
	b := New(log.NewTestLogger(t))
	cart := slot.Primary(1)
	assert.NoError(t, b.InsertCartridge(cart, createImage(0x20000), mapper.ASCII16))
	b.OnWrite(cart, 0x6000, 3)

	buf := &bytes.Buffer{}
	assert.NoError(t, b.SaveState(buf))

	b.OnWrite(cart, 0x6000, 1)
	assert.NoError(t, b.LoadState(buf))
	assert.Equal(t, byte(6), b.ReadSlot(cart, 0x4000)) // 16KB bank 3 starts with 8KB bank 6
}

func TestBus_ConcurrentAccess(t *testing.T) {
	b := New(log.NewTestLogger(t))
	cart := slot.Primary(1)
	assert.NoError(t, b.InsertCartridge(cart, createImage(0x20000), mapper.Konami))
	b.SelectSlot(1, cart)
	b.SelectSlot(2, cart)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				b.Write(0x8000, byte(i+j))
				_ = b.Read(0x8000)
				_ = b.Resolve(uint16(j))
			}
		}()
	}
	wg.Wait()

	bank := b.Read(0x8000)
	assert.True(t, bank < 16)
}
