// Package verification verifies that a saved mapper state recreates the translation.
package verification

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/msxmem/internal/config"
	"github.com/retroenv/msxmem/internal/memory"
	"github.com/retroenv/msxmem/internal/options"
	"github.com/retroenv/msxmem/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// maxLoggedMismatches limits the number of logged translation mismatches.
const maxLoggedMismatches = 10

// VerifyState restores the state file into a new address space and verifies
// that all addresses of the report translate to the same location.
func VerifyState(logger *log.Logger, opts options.Program, translation options.Translation,
	image memory.ROM, report *writer.Report) error {

	if opts.State == "" {
		return errors.New("can not verify without state file")
	}

	file, err := os.Open(opts.State)
	if err != nil {
		return fmt.Errorf("opening state file '%s': %w", opts.State, err)
	}
	defer func() {
		_ = file.Close()
	}()

	b := config.CreateBus(logger, translation)
	if err := b.InsertCartridge(report.Slot, image, report.Mapper); err != nil {
		return fmt.Errorf("creating address space: %w", err)
	}
	if err := b.LoadState(file); err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	var diffs uint64
	for _, tr := range report.Translations {
		access := b.TranslateRead(report.Slot, tr.Page, tr.Offset)
		if access == tr.Access {
			continue
		}

		diffs++
		if diffs <= maxLoggedMismatches {
			logger.Error("Translation mismatch",
				log.Hex("address", tr.Address),
				log.Stringer("expected", tr.Access.Kind),
				log.Hex("expected_offset", tr.Access.Offset),
				log.Stringer("got", access.Kind),
				log.Hex("got_offset", access.Offset))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d translation mismatches", diffs)
}
