// Package rom provides MSX ROM cartridge header parsing.
package rom

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Header field offsets relative to the start of the header.
const (
	initOffset      = 2
	statementOffset = 4
	deviceOffset    = 6
	textOffset      = 8
	headerSize      = 16
)

// ErrNoSignature is returned when the image does not contain an AB header.
var ErrNoSignature = errors.New("no ROM signature found")

// Signature is the identifier at the start of every MSX ROM header.
var Signature = [2]byte{'A', 'B'}

// Type is the size class of a ROM cartridge.
type Type uint8

// ROM types.
const (
	Type16K Type = iota
	Type32K
	Type48K
	TypeMega // larger than the address space, requires a mapper
)

func (t Type) String() string {
	switch t {
	case Type16K:
		return "16KB"
	case Type32K:
		return "32KB"
	case Type48K:
		return "48KB"
	default:
		return "MegaROM"
	}
}

// TypeOf returns the ROM type for the image size.
func TypeOf(size int) Type {
	switch {
	case size <= 0x4000:
		return Type16K
	case size <= 0x8000:
		return Type32K
	case size <= 0xC000:
		return Type48K
	default:
		return TypeMega
	}
}

// Header contains the entry points of a ROM cartridge header.
type Header struct {
	Offset    int    // offset of the header in the image
	Init      uint16 // initialization routine, 0 if not used
	Statement uint16 // BASIC CALL statement handler
	Device    uint16 // device handler
	Text      uint16 // BASIC program text
}

// ParseHeader parses the ROM header. ROMs that start at page 0 have their
// header at the start of page 1, so the header is searched at the start of
// the image and at 16KB.
func ParseHeader(image []byte) (Header, error) {
	for _, offset := range []int{0, 0x4000} {
		if len(image) < offset+headerSize {
			break
		}
		if image[offset] != Signature[0] || image[offset+1] != Signature[1] {
			continue
		}

		h := image[offset:]
		return Header{
			Offset:    offset,
			Init:      binary.LittleEndian.Uint16(h[initOffset:]),
			Statement: binary.LittleEndian.Uint16(h[statementOffset:]),
			Device:    binary.LittleEndian.Uint16(h[deviceOffset:]),
			Text:      binary.LittleEndian.Uint16(h[textOffset:]),
		}, nil
	}
	return Header{}, fmt.Errorf("%w in %d bytes", ErrNoSignature, len(image))
}
