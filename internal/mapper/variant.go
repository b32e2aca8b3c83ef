package mapper

import (
	"fmt"
	"strings"
)

// Variant is the type of MegaROM mapper of a cartridge.
type Variant uint8

// Mapper variants, the values match the mapper type ids of the MSX ROM headers.
const (
	None Variant = iota
	Konami
	KonamiSCC
	ASCII8
	ASCII16
	GameMaster2
	FMPAC
)

var variantNames = map[Variant]string{
	None:        "none",
	Konami:      "konami",
	KonamiSCC:   "konamiscc",
	ASCII8:      "ascii8",
	ASCII16:     "ascii16",
	GameMaster2: "gamemaster2",
	FMPAC:       "fmpac",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(v))
}

// ParseVariant returns the variant for the given name, the match is case insensitive
// and ignores dashes and underscores.
func ParseVariant(name string) (Variant, error) {
	name = strings.ToLower(name)
	name = strings.NewReplacer("-", "", "_", "", "+", "", " ", "").Replace(name)

	for v, s := range variantNames {
		if s == name {
			return v, nil
		}
	}
	return None, fmt.Errorf("unsupported mapper '%s'", name)
}

const (
	bank8K  = 0x2000
	bank16K = 0x4000

	// maxBanks is the number of banks that an 8 bit bank register can select.
	maxBanks = 256

	// maxPlainROMSize is the largest ROM that fits the address space without a mapper.
	maxPlainROMSize = 0x10000
)

// window is a region of the address space that shows one bank.
type window struct {
	start uint16
	fixed bool // the window always shows its initial bank
}

// register is a control address range that selects the bank of a window.
type register struct {
	start  uint16
	end    uint16 // exclusive
	window int
}

func (r register) contains(address uint16) bool {
	return address >= r.start && address < r.end
}

// geometry describes the bank layout and control registers of a variant.
type geometry struct {
	bankSize  int
	windows   []window
	registers []register
	initial   []int
}

// The Konami SCC mapper enables the sound chip register block instead of
// changing the bank when the enable value is written to the window 2 register.
const (
	sccWindow       = 2
	sccEnableValue  = 0x3F
	sccStart        = 0x9800
	sccEnd          = 0x9C00 // exclusive
	sccRegisterMask = 0xFF
)

var geometries = map[Variant]geometry{
	Konami: {
		bankSize: bank8K,
		windows: []window{
			{start: 0x4000, fixed: true},
			{start: 0x6000},
			{start: 0x8000},
			{start: 0xA000},
		},
		registers: []register{
			{start: 0x6000, end: 0x8000, window: 1},
			{start: 0x8000, end: 0xA000, window: 2},
			{start: 0xA000, end: 0xC000, window: 3},
		},
		initial: []int{0, 1, 2, 3},
	},
	KonamiSCC: {
		bankSize: bank8K,
		windows: []window{
			{start: 0x4000},
			{start: 0x6000},
			{start: 0x8000},
			{start: 0xA000},
		},
		registers: []register{
			{start: 0x5000, end: 0x5800, window: 0},
			{start: 0x7000, end: 0x7800, window: 1},
			{start: 0x9000, end: 0x9800, window: 2},
			{start: 0xB000, end: 0xB800, window: 3},
		},
		initial: []int{0, 1, 2, 3},
	},
	ASCII8: {
		bankSize: bank8K,
		windows: []window{
			{start: 0x4000},
			{start: 0x6000},
			{start: 0x8000},
			{start: 0xA000},
		},
		registers: []register{
			{start: 0x6000, end: 0x6800, window: 0},
			{start: 0x6800, end: 0x7000, window: 1},
			{start: 0x7000, end: 0x7800, window: 2},
			{start: 0x7800, end: 0x8000, window: 3},
		},
		initial: []int{0, 0, 0, 0},
	},
	ASCII16: {
		bankSize: bank16K,
		windows: []window{
			{start: 0x4000},
			{start: 0x8000},
		},
		registers: []register{
			{start: 0x6000, end: 0x6800, window: 0},
			{start: 0x7000, end: 0x7800, window: 1},
		},
		initial: []int{0, 0},
	},
}

// plainGeometry returns the layout of a ROM without mapper: consecutive fixed 8KB
// windows starting at page 1, ROMs larger than 32KB start at page 0.
func plainGeometry(romSize int) geometry {
	start := 0x4000
	if romSize > 0x8000 {
		start = 0
	}

	count := romSize / bank8K
	g := geometry{
		bankSize: bank8K,
		windows:  make([]window, count),
		initial:  make([]int, count),
	}
	for i := range count {
		g.windows[i] = window{start: uint16(start + i*bank8K), fixed: true}
		g.initial[i] = i
	}
	return g
}

// geometryOf returns the geometry of the variant.
func geometryOf(variant Variant, romSize int) (geometry, bool) {
	if variant == None {
		return plainGeometry(romSize), true
	}
	g, ok := geometries[variant]
	return g, ok
}

// BankSwitchAddress returns the canonical control address that selects the bank
// shown in the given window of the variant.
func BankSwitchAddress(variant Variant, windowIndex int) (uint16, bool) {
	g, ok := geometries[variant]
	if !ok {
		return 0, false
	}
	for _, reg := range g.registers {
		if reg.window == windowIndex {
			return reg.start, true
		}
	}
	return 0, false
}

// WindowCount returns the number of bank windows of the variant.
func WindowCount(variant Variant) int {
	return len(geometries[variant].windows)
}
