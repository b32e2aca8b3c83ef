// Package detector handles MegaROM mapper detection.
package detector

import (
	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/retrogolib/arch/cpu/z80"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// storeA is the LD (nn),A instruction that games use to switch banks.
var storeA = z80.LdExtended.RegisterOpcodes[z80.RegStoreExtA]

// indexedBitSize is the size of the DD CB d op and FD CB d op instructions.
const indexedBitSize = 4

// maxPlainSize is the largest ROM that does not need a mapper.
const maxPlainSize = 0x10000

// candidates lists the detectable mappers in order of preference for equal scores.
var candidates = []mapper.Variant{mapper.KonamiSCC, mapper.Konami, mapper.ASCII8, mapper.ASCII16}

// votes maps the bank switch addresses that games write to onto the mappers
// that use them.
var votes = map[uint16][]mapper.Variant{
	0x5000: {mapper.KonamiSCC},
	0x9000: {mapper.KonamiSCC},
	0xB000: {mapper.KonamiSCC},
	0x4000: {mapper.Konami},
	0x8000: {mapper.Konami},
	0xA000: {mapper.Konami},
	0x6800: {mapper.ASCII8},
	0x7800: {mapper.ASCII8},
	0x6000: {mapper.Konami, mapper.ASCII8, mapper.ASCII16},
	0x7000: {mapper.KonamiSCC, mapper.ASCII8, mapper.ASCII16},
	0x77FF: {mapper.ASCII16},
}

type score struct {
	writes    int // number of bank switch instructions found
	addresses int // number of different bank switch addresses used
}

// Detector handles mapper detection from ROM contents.
type Detector struct {
	logger *log.Logger
}

// New creates a new mapper detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect guesses the mapper of the ROM image by decoding its Z80 instructions
// and counting the LD (nn),A instructions that target the bank switch addresses of each mapper.
// ROMs that fit the address space without bank switch writes use no mapper,
// larger ROMs without bank switch writes default to ASCII8.
func (d *Detector) Detect(image []byte) mapper.Variant {
	scores := make(map[mapper.Variant]*score, len(candidates))
	seen := make(map[mapper.Variant]set.Set[uint16], len(candidates))
	for _, v := range candidates {
		scores[v] = &score{}
		seen[v] = set.New[uint16]()
	}

	for i := 0; i < len(image); i += instructionSize(image, i) {
		if !isStoreA(image[i]) || i+int(storeA.Size) > len(image) {
			continue
		}

		address := uint16(image[i+1]) | uint16(image[i+2])<<8
		for _, v := range votes[address] {
			s := scores[v]
			s.writes++
			if !seen[v].Contains(address) {
				seen[v].Add(address)
				s.addresses++
			}
		}
	}

	best := mapper.None
	bestScore := score{}
	for _, v := range candidates {
		s := *scores[v]
		if s.writes > bestScore.writes ||
			(s.writes == bestScore.writes && s.addresses > bestScore.addresses) {
			best = v
			bestScore = s
		}
	}

	if bestScore.writes == 0 {
		best = mapper.None
		if len(image) > maxPlainSize {
			best = mapper.ASCII8
		}
	}

	d.logger.Debug("Detected mapper",
		log.Stringer("mapper", best),
		log.Int("bank_switches", bestScore.writes),
		log.Int("addresses", bestScore.addresses),
		log.Int("size", len(image)))
	return best
}

// isStoreA returns whether the unprefixed opcode is LD (nn),A.
func isStoreA(b byte) bool {
	op := z80.Opcodes[b]
	return op.Instruction == z80.LdExtended &&
		op.Addressing == z80.ExtendedAddressing &&
		b == storeA.Opcode
}

// instructionSize returns the size of the instruction at the offset, operand
// bytes are skipped so that they are not decoded as instructions.
func instructionSize(image []byte, offset int) int {
	b := image[offset]
	op := z80.Opcodes[b]

	switch b {
	case z80.PrefixCB, z80.PrefixED, z80.PrefixDD, z80.PrefixFD:
		if offset+1 >= len(image) {
			return 1
		}
		next := image[offset+1]

		switch b {
		case z80.PrefixCB:
			op = z80.CBOpcodes[next]
		case z80.PrefixED:
			op = z80.EDOpcodes[next]
		case z80.PrefixDD:
			if next == z80.PrefixCB {
				return indexedBitSize
			}
			op = z80.DDOpcodes[next]
		case z80.PrefixFD:
			if next == z80.PrefixCB {
				return indexedBitSize
			}
			op = z80.FDOpcodes[next]
		}
	}

	if op.Size == 0 {
		return 1
	}
	return int(op.Size)
}
