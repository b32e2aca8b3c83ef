package writer

import (
	"bytes"
	"testing"

	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/msxmem/internal/rom"
	"github.com/retroenv/msxmem/internal/slot"
	"github.com/retroenv/retrogolib/assert"
)

func TestWriter_Write(t *testing.T) {
	report := &Report{
		File:   "game.rom",
		Size:   0x20000,
		Mapper: mapper.ASCII16,
		Slot:   slot.Primary(1),
		Header: &rom.Header{Init: 0x4010},
		Assignment: [slot.NumPages]slot.ID{
			slot.Primary(0), slot.Primary(1), slot.Primary(1), slot.Expanded(3, 2),
		},
		Writes: []Write{
			{Address: 0x6000, Value: 9, Result: mapper.WriteResult{Kind: mapper.BankSwitched, Window: 0, Bank: 1}},
			{Address: 0x4000, Value: 1, Result: mapper.WriteResult{Kind: mapper.Forwarded}},
		},
		Translations: []Translation{
			{Address: 0x4000, Page: 1, Access: mapper.Access{Kind: mapper.ROMAccess, Offset: 0x4000}, Data: []byte{0x41, 0x42}},
			{Address: 0xC000, Page: 3, Access: mapper.Access{Kind: mapper.Unmapped}},
		},
	}

	buf := &bytes.Buffer{}
	assert.NoError(t, New(buf).Write(report))

	expected := `; File: game.rom
; Size: 131072 bytes (MegaROM)
; Mapper: ascii16
; Slot: 1
; Header: INIT $4010 STATEMENT $0000 DEVICE $0000 TEXT $0000

page 0 $0000-$3FFF: slot 0
page 1 $4000-$7FFF: slot 1
page 2 $8000-$BFFF: slot 1
page 3 $C000-$FFFF: slot 3-2

write $6000 = $09: window 0 -> bank 1
write $4000 = $01: forwarded

$4000 page 1 offset $0000: ROM $004000
  .byte $41, $42
$C000 page 3 offset $0000: unmapped
`
	assert.Equal(t, expected, buf.String())
}

func TestWriter_BundleDataWrites(t *testing.T) {
	data := make([]byte, 18)
	for i := range data {
		data[i] = byte(i)
	}

	buf := &bytes.Buffer{}
	assert.NoError(t, New(buf).BundleDataWrites(data))

	expected := "  .byte $00, $01, $02, $03, $04, $05, $06, $07, $08, $09, $0a, $0b, $0c, $0d, $0e, $0f\n" +
		"  .byte $10, $11\n"
	assert.Equal(t, expected, buf.String())
}
