package rom

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseHeader(t *testing.T) {
	image := make([]byte, 0x8000)
	copy(image, []byte{'A', 'B', 0x10, 0x40, 0x00, 0x00, 0x20, 0x40, 0x00, 0x80})

	h, err := ParseHeader(image)
	assert.NoError(t, err)
	assert.Equal(t, 0, h.Offset)
	assert.Equal(t, uint16(0x4010), h.Init)
	assert.Equal(t, uint16(0), h.Statement)
	assert.Equal(t, uint16(0x4020), h.Device)
	assert.Equal(t, uint16(0x8000), h.Text)
}

func TestParseHeader_Page1(t *testing.T) {
	image := make([]byte, 0xC000)
	copy(image[0x4000:], []byte{'A', 'B', 0x34, 0x12})

	h, err := ParseHeader(image)
	assert.NoError(t, err)
	assert.Equal(t, 0x4000, h.Offset)
	assert.Equal(t, uint16(0x1234), h.Init)
}

func TestParseHeader_NoSignature(t *testing.T) {
	tests := []struct {
		name  string
		image []byte
	}{
		{name: "empty", image: nil},
		{name: "too short", image: []byte{'A', 'B'}},
		{name: "no signature", image: make([]byte, 0x4000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.image)
			assert.True(t, errors.Is(err, ErrNoSignature))
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, Type16K, TypeOf(0x2000))
	assert.Equal(t, Type16K, TypeOf(0x4000))
	assert.Equal(t, Type32K, TypeOf(0x8000))
	assert.Equal(t, Type48K, TypeOf(0xC000))
	assert.Equal(t, TypeMega, TypeOf(0x10001))
	assert.Equal(t, "MegaROM", TypeMega.String())
}
