package detector

import (
	"testing"

	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// createROM returns an image that contains an LD (nn),A instruction for each address.
func createROM(size int, addresses ...uint16) []byte {
	image := make([]byte, size)
	pos := 0x10
	for _, address := range addresses {
		image[pos] = storeA.Opcode
		image[pos+1] = byte(address)
		image[pos+2] = byte(address >> 8)
		pos += 3
	}
	return image
}

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name        string
		image       []byte
		wantVariant mapper.Variant
	}{
		{
			name:        "plain 32KB ROM",
			image:       createROM(0x8000),
			wantVariant: mapper.None,
		},
		{
			name:        "large ROM without bank switches",
			image:       createROM(0x20000),
			wantVariant: mapper.ASCII8,
		},
		{
			name:        "konami scc",
			image:       createROM(0x20000, 0x5000, 0x7000, 0x9000, 0xB000),
			wantVariant: mapper.KonamiSCC,
		},
		{
			name:        "konami",
			image:       createROM(0x20000, 0x6000, 0x8000, 0xA000),
			wantVariant: mapper.Konami,
		},
		{
			name:        "ascii8",
			image:       createROM(0x20000, 0x6000, 0x6800, 0x7000, 0x7800),
			wantVariant: mapper.ASCII8,
		},
		{
			name:        "ascii16",
			image:       createROM(0x20000, 0x6000, 0x77FF, 0x77FF),
			wantVariant: mapper.ASCII16,
		},
		{
			name:        "equal writes prefer more distinct addresses",
			image:       createROM(0x20000, 0x9000, 0x9000, 0x8000, 0xA000),
			wantVariant: mapper.Konami,
		},
		{
			name:        "store opcode inside an operand is not decoded",
			image:       createOperandStores(),
			wantVariant: mapper.KonamiSCC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variant := d.Detect(tt.image)
			assert.Equal(t, tt.wantVariant, variant)
		})
	}
}

// createOperandStores returns an image with two SCC bank switches and three
// LD A,32h instructions that are followed by 00h 68h, which reads as
// LD (6800h),A when decoded from the operand byte.
func createOperandStores() []byte {
	image := createROM(0x20000, 0x5000, 0x9000)
	pos := 0x100
	for range 3 {
		copy(image[pos:], []byte{0x3E, 0x32, 0x00, 0x68})
		pos += 4
	}
	return image
}

func TestInstructionSize(t *testing.T) {
	tests := []struct {
		name  string
		image []byte
		want  int
	}{
		{name: "nop", image: []byte{0x00}, want: 1},
		{name: "ld a,n", image: []byte{0x3E, 0x32}, want: 2},
		{name: "ld (nn),a", image: []byte{0x32, 0x00, 0x50}, want: 3},
		{name: "bit prefix", image: []byte{0xCB, 0x47}, want: 2},
		{name: "ld (ix+d),n", image: []byte{0xDD, 0x36, 0x01, 0x02}, want: 4},
		{name: "indexed bit", image: []byte{0xFD, 0xCB, 0x01, 0x46}, want: 4},
		{name: "ld (nn),bc", image: []byte{0xED, 0x43, 0x00, 0x60}, want: 4},
		{name: "prefix at end of image", image: []byte{0xED}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, instructionSize(tt.image, 0))
		})
	}
}
