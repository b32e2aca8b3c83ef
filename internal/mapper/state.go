package mapper

import "fmt"

// AccessKind describes what backs a translated address.
type AccessKind uint8

// Access kinds.
const (
	Unmapped  AccessKind = iota // no backing storage, reads return 0xFF
	ROMAccess                   // offset into the ROM image
	SCCAccess                   // register index of the SCC sound chip
)

func (k AccessKind) String() string {
	switch k {
	case ROMAccess:
		return "rom"
	case SCCAccess:
		return "scc"
	default:
		return "unmapped"
	}
}

// Access is the result of translating a cartridge address.
type Access struct {
	Kind   AccessKind
	Offset uint32
}

// WriteKind describes how a write to a cartridge slot was handled.
type WriteKind uint8

// Write kinds.
const (
	Forwarded    WriteKind = iota // not a control register, ordinary memory write
	BankSwitched                  // bank register of a window was updated
	SCCEnabled                    // SCC register block was mapped in
	SCCWrite                      // write to an SCC register
)

func (k WriteKind) String() string {
	switch k {
	case BankSwitched:
		return "bank switch"
	case SCCEnabled:
		return "scc enable"
	case SCCWrite:
		return "scc write"
	default:
		return "forwarded"
	}
}

// WriteResult describes the effect of a write.
type WriteResult struct {
	Kind     WriteKind
	Window   int   // window of a bank switch
	Bank     int   // selected bank of a bank switch, reduced to the bank count
	Register uint8 // SCC register of an SCC write
}

// state is the bank register state of one registered cartridge.
type state struct {
	variant   Variant
	geometry  geometry
	romSize   int
	bankCount int

	banks      []int // selected bank per window, always below bankCount
	sccEnabled bool
}

func newState(variant Variant, romSize int) (*state, error) {
	if romSize <= 0 {
		return nil, &ConfigError{Variant: variant, ROMSize: romSize, Reason: "ROM size must be positive"}
	}
	if variant == None && romSize > maxPlainROMSize {
		return nil, &ConfigError{Variant: variant, ROMSize: romSize,
			Reason: fmt.Sprintf("ROM without mapper can not exceed %d bytes", maxPlainROMSize)}
	}

	g, ok := geometryOf(variant, romSize)
	if !ok {
		return nil, &ConfigError{Variant: variant, ROMSize: romSize, Reason: "unsupported mapper variant"}
	}

	if romSize%g.bankSize != 0 {
		return nil, &ConfigError{Variant: variant, ROMSize: romSize,
			Reason: fmt.Sprintf("ROM size is not a multiple of the bank size %d", g.bankSize)}
	}
	bankCount := romSize / g.bankSize
	if bankCount > maxBanks {
		return nil, &ConfigError{Variant: variant, ROMSize: romSize,
			Reason: fmt.Sprintf("%d banks exceed the %d selectable banks", bankCount, maxBanks)}
	}

	s := &state{
		variant:   variant,
		geometry:  g,
		romSize:   romSize,
		bankCount: bankCount,
		banks:     make([]int, len(g.windows)),
	}
	for i, bank := range g.initial {
		s.banks[i] = bank % bankCount
	}
	return s, nil
}

// write handles a write to the cartridge address.
func (s *state) write(address uint16, value byte) WriteResult {
	if s.variant == KonamiSCC && s.sccEnabled && isSCCAddress(address) {
		return WriteResult{Kind: SCCWrite, Register: uint8(address & sccRegisterMask)}
	}

	for _, reg := range s.geometry.registers {
		if !reg.contains(address) {
			continue
		}

		if s.variant == KonamiSCC && reg.window == sccWindow {
			enable := value&sccEnableValue == sccEnableValue
			if enable {
				s.sccEnabled = true
				return WriteResult{Kind: SCCEnabled, Window: reg.window, Bank: s.banks[reg.window]}
			}
			s.sccEnabled = false
		}

		bank := int(value) % s.bankCount
		s.banks[reg.window] = bank
		return WriteResult{Kind: BankSwitched, Window: reg.window, Bank: bank}
	}

	return WriteResult{Kind: Forwarded}
}

// translate returns the backing location of the cartridge address.
func (s *state) translate(address uint16) Access {
	if s.variant == KonamiSCC && s.sccEnabled && isSCCAddress(address) {
		return Access{Kind: SCCAccess, Offset: uint32(address & sccRegisterMask)}
	}

	index, ok := s.windowOf(address)
	if !ok {
		return Access{Kind: Unmapped}
	}

	bankSize := uint32(s.geometry.bankSize)
	bank := uint32(s.banks[index])
	inBank := uint32(address-s.geometry.windows[index].start) % bankSize
	offset := (bank*bankSize + inBank) % uint32(s.romSize)
	return Access{Kind: ROMAccess, Offset: offset}
}

// windowOf returns the index of the window that contains the address.
func (s *state) windowOf(address uint16) (int, bool) {
	for i, w := range s.geometry.windows {
		if address >= w.start && int(address) < int(w.start)+s.geometry.bankSize {
			return i, true
		}
	}
	return 0, false
}

func isSCCAddress(address uint16) bool {
	return address >= sccStart && address < sccEnd
}
