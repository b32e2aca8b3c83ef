// Package options contains the program options.
package options

import (
	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/msxmem/internal/slot"
)

// AutoMapper is the mapper name that enables mapper detection.
const AutoMapper = "auto"

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"output report file (default: stdout)"`
	Batch  string `flag:"batch" usage:"batch process files matching pattern (e.g. *.rom)"`
	State  string `flag:"state" usage:"file to write the mapper state snapshot to, in batch mode every input gets its own .state file"`
}

// Flags contains behavior options.
type Flags struct {
	Mapper string `flag:"m" usage:"mapper: auto, none, konami, konamiscc, ascii8, ascii16" default:"auto"`
	Slot   string `flag:"slot" usage:"cartridge slot, primary (1) or primary-secondary (1-2)" default:"1"`
	Writes string `flag:"w" usage:"comma separated addr=value writes applied in order"`
	Reads  string `flag:"r" usage:"comma separated addresses to translate"`
	Verify bool   `flag:"verify" usage:"verify the state file by restoring it, requires -state"`
	Debug  bool   `flag:"debug" usage:"enable debug logging"`
	Quiet  bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the address translator.
type Program struct {
	Parameters
	Flags
}

// Write is a write to an absolute address.
type Write struct {
	Address uint16
	Value   byte
}

// Translation defines the parsed options that control the address translation.
type Translation struct {
	Mapper     mapper.Variant
	AutoDetect bool // detect the mapper from the ROM content
	Slot       slot.ID
	Writes     []Write
	Reads      []uint16 // addresses to translate, all window starts if empty
}

// NewTranslation returns a new options instance with default options.
func NewTranslation() Translation {
	return Translation{
		AutoDetect: true,
		Slot:       slot.Primary(1),
	}
}
