// Package pipeline orchestrates the address translation workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/msxmem/internal/bus"
	"github.com/retroenv/msxmem/internal/config"
	"github.com/retroenv/msxmem/internal/detector"
	"github.com/retroenv/msxmem/internal/loader"
	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/msxmem/internal/memory"
	"github.com/retroenv/msxmem/internal/options"
	"github.com/retroenv/msxmem/internal/rom"
	"github.com/retroenv/msxmem/internal/slot"
	"github.com/retroenv/msxmem/internal/verification"
	"github.com/retroenv/msxmem/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// dataBytes is the number of bytes that are read for every translated address.
const dataBytes = 16

// defaultReads are the translated addresses if none are requested: the start of
// every 8KB window of the cartridge pages.
var defaultReads = []uint16{0x4000, 0x6000, 0x8000, 0xA000}

// Pipeline orchestrates the complete translation workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new translation pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete translation pipeline.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, translation options.Translation,
	w io.Writer) (*writer.Report, error) {

	image, err := p.loader.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}

	report, err := p.ExecuteWithImage(ctx, image, opts, translation, w)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ExecuteWithImage runs the translation pipeline with a pre-loaded ROM image.
func (p *Pipeline) ExecuteWithImage(ctx context.Context, image memory.Image, opts options.Program,
	translation options.Translation, w io.Writer) (*writer.Report, error) {

	report := &writer.Report{
		File:   opts.Input,
		Size:   image.Size(),
		Mapper: translation.Mapper,
		Slot:   translation.Slot,
	}

	if translation.AutoDetect {
		report.Mapper = p.detector.Detect(image)
		report.Detected = true
	}

	header, err := rom.ParseHeader(image)
	switch {
	case err == nil:
		report.Header = &header
	case errors.Is(err, rom.ErrNoSignature):
		p.logger.Warn("ROM header not found", log.String("file", opts.Input))
	default:
		return nil, fmt.Errorf("parsing ROM header: %w", err)
	}

	p.printInfo(opts, report)

	b := config.CreateBus(p.logger, translation)
	if err := b.InsertCartridge(translation.Slot, image, report.Mapper); err != nil {
		return nil, fmt.Errorf("creating address space: %w", err)
	}
	for _, page := range cartridgePages(report.Mapper, image.Size()) {
		b.SelectSlot(page, translation.Slot)
	}

	if err := p.applyWrites(ctx, b, translation, report); err != nil {
		return nil, err
	}
	if err := p.translateReads(ctx, b, translation, report); err != nil {
		return nil, err
	}
	report.Assignment = b.Assignment()

	if err := writer.New(w).Write(report); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	if opts.State != "" {
		if err := saveState(b, opts.State); err != nil {
			return nil, err
		}
	}

	if opts.Verify {
		if err := verification.VerifyState(p.logger, opts, translation, image, report); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}
	return report, nil
}

// applyWrites applies the requested writes in order to the cartridge slot.
func (p *Pipeline) applyWrites(ctx context.Context, b *bus.Bus, translation options.Translation,
	report *writer.Report) error {

	for _, wr := range translation.Writes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("applying writes: %w", err)
		}

		result := b.WriteSlot(translation.Slot, wr.Address, wr.Value)
		report.Writes = append(report.Writes, writer.Write{
			Address: wr.Address,
			Value:   wr.Value,
			Result:  result,
		})
	}
	return nil
}

// translateReads translates the requested addresses of the cartridge slot.
func (p *Pipeline) translateReads(ctx context.Context, b *bus.Bus, translation options.Translation,
	report *writer.Report) error {

	reads := translation.Reads
	if len(reads) == 0 {
		reads = defaultReads
	}

	for _, address := range reads {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("translating reads: %w", err)
		}

		page := slot.PageOf(address)
		offset := slot.OffsetOf(address)
		access := b.TranslateRead(translation.Slot, page, offset)

		tr := writer.Translation{
			Address: address,
			Page:    page,
			Offset:  offset,
			Access:  access,
		}
		if access.Kind == mapper.ROMAccess {
			tr.Data = make([]byte, 0, dataBytes)
			for i := range uint16(dataBytes) {
				tr.Data = append(tr.Data, b.ReadSlot(translation.Slot, address+i))
			}
		}
		report.Translations = append(report.Translations, tr)
	}
	return nil
}

// printInfo prints information about the ROM being processed.
func (p *Pipeline) printInfo(opts options.Program, report *writer.Report) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing MSX ROM",
		log.String("file", opts.Input),
		log.Stringer("mapper", report.Mapper),
		log.Stringer("slot", report.Slot),
		log.Stringer("type", rom.TypeOf(report.Size)),
	)
	if report.Mapper == mapper.GameMaster2 || report.Mapper == mapper.FMPAC {
		p.logger.Warn("Mapper is not supported", log.Stringer("mapper", report.Mapper))
	}
}

// cartridgePages returns the pages that have to select the cartridge slot to
// make the complete ROM visible.
func cartridgePages(variant mapper.Variant, size int) []slot.Page {
	if variant != mapper.None || size <= 0x8000 {
		return []slot.Page{1, 2}
	}
	pages := make([]slot.Page, 0, slot.NumPages)
	for page := range slot.Page(slot.NumPages) {
		if int(page)*slot.PageSize < size {
			pages = append(pages, page)
		}
	}
	return pages
}

// saveState writes the mapper state snapshot of the address space to the file.
func saveState(b *bus.Bus, fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("creating state file '%s': %w", fileName, err)
	}

	if err := b.SaveState(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("saving state: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing state file: %w", err)
	}
	return nil
}
