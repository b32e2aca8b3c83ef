package slot

// PageSize is the size of each of the 4 pages of the address space.
const PageSize = 0x4000

const (
	pageShift  = 14
	offsetMask = PageSize - 1
)

// Page is one of the 4 fixed 16KB windows of the 16-bit address space.
type Page uint8

// PageOf returns the page that the address falls in.
func PageOf(address uint16) Page {
	return Page(address >> pageShift)
}

// OffsetOf returns the offset of the address within its page.
func OffsetOf(address uint16) uint16 {
	return address & offsetMask
}

// Base returns the first address of the page.
func (p Page) Base() uint16 {
	return uint16(p&3) << pageShift
}

// Address returns the absolute address of the given offset within the page.
func (p Page) Address(offset uint16) uint16 {
	return p.Base() | offset&offsetMask
}
