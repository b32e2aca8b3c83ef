// Package memory provides the byte stores that back slots: read-only ROM images
// and read-write RAM pages.
package memory

// PageSize is the size of a RAM page.
const PageSize = 0x4000

// unmappedValue is returned by reads that are not backed by any device,
// the pulled up data bus of the MSX reads as 0xFF.
const unmappedValue = 0xFF

// ROM is a read-only byte source indexed by physical offset.
type ROM interface {
	// Byte returns the byte at the physical offset.
	Byte(offset uint32) byte
	// Size returns the size of the image in bytes.
	Size() int
}

// RAM is a read-write byte store indexed by page offset.
type RAM interface {
	Read(offset uint16) byte
	Write(offset uint16, value byte)
}

// Image is a ROM image held in memory.
type Image []byte

// Byte returns the byte at the physical offset, offsets outside of the
// image read as unmapped.
func (i Image) Byte(offset uint32) byte {
	if uint64(offset) >= uint64(len(i)) {
		return unmappedValue
	}
	return i[offset]
}

// Size returns the size of the image in bytes.
func (i Image) Size() int {
	return len(i)
}

// RAMPage is a 16KB RAM page.
type RAMPage struct {
	data [PageSize]byte
}

// NewRAMPage returns a zero initialized RAM page.
func NewRAMPage() *RAMPage {
	return &RAMPage{}
}

// Read returns the byte at the page offset.
func (p *RAMPage) Read(offset uint16) byte {
	return p.data[offset%PageSize]
}

// Write sets the byte at the page offset.
func (p *RAMPage) Write(offset uint16, value byte) {
	p.data[offset%PageSize] = value
}

// Unmapped reports the value read from an address without backing device.
func Unmapped() byte {
	return unmappedValue
}
