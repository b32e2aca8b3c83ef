// Package writer implements the address translation report output.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/msxmem/internal/rom"
	"github.com/retroenv/msxmem/internal/slot"
)

const dataBytesPerLine = 16

// Report contains the result of translating addresses of a cartridge.
type Report struct {
	File       string
	Size       int
	Mapper     mapper.Variant
	Detected   bool // mapper was detected from the ROM content
	Slot       slot.ID
	Header     *rom.Header // nil if the image has no ROM header
	Assignment [slot.NumPages]slot.ID

	Writes       []Write
	Translations []Translation
}

// Write is a write that was applied to the cartridge slot.
type Write struct {
	Address uint16
	Value   byte
	Result  mapper.WriteResult
}

// Translation is the resolved location of an address of the cartridge slot.
type Translation struct {
	Address uint16
	Page    slot.Page
	Offset  uint16
	Access  mapper.Access
	Data    []byte // bytes read starting at the address
}

// Writer writes translation reports.
type Writer struct {
	writer io.Writer
}

// New creates a new report writer.
func New(writer io.Writer) *Writer {
	return &Writer{
		writer: writer,
	}
}

// Write writes the complete report.
func (w Writer) Write(report *Report) error {
	if err := w.WriteHeader(report); err != nil {
		return err
	}
	if err := w.WriteAssignment(report.Assignment); err != nil {
		return err
	}
	if err := w.WriteWrites(report.Writes); err != nil {
		return err
	}
	return w.WriteTranslations(report.Translations)
}

// WriteHeader writes the cartridge information as comments to the output.
func (w Writer) WriteHeader(report *Report) error {
	detected := ""
	if report.Detected {
		detected = " (detected)"
	}

	if _, err := fmt.Fprintf(w.writer, "; File: %s\n", report.File); err != nil {
		return fmt.Errorf("writing file name: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Size: %d bytes (%s)\n", report.Size, rom.TypeOf(report.Size)); err != nil {
		return fmt.Errorf("writing size: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Mapper: %s%s\n", report.Mapper, detected); err != nil {
		return fmt.Errorf("writing mapper: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Slot: %s\n", report.Slot); err != nil {
		return fmt.Errorf("writing slot: %w", err)
	}

	if report.Header != nil {
		h := report.Header
		if _, err := fmt.Fprintf(w.writer, "; Header: INIT $%04X STATEMENT $%04X DEVICE $%04X TEXT $%04X\n",
			h.Init, h.Statement, h.Device, h.Text); err != nil {
			return fmt.Errorf("writing ROM header: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// WriteAssignment writes the slot selected for every page.
func (w Writer) WriteAssignment(assignment [slot.NumPages]slot.ID) error {
	for page, id := range assignment {
		start := slot.Page(page).Base()
		if _, err := fmt.Fprintf(w.writer, "page %d $%04X-$%04X: slot %s\n",
			page, start, start+slot.PageSize-1, id); err != nil {
			return fmt.Errorf("writing page assignment: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// WriteWrites writes the applied writes and their effect.
func (w Writer) WriteWrites(writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	for _, wr := range writes {
		var effect string
		switch wr.Result.Kind {
		case mapper.BankSwitched:
			effect = fmt.Sprintf("window %d -> bank %d", wr.Result.Window, wr.Result.Bank)
		case mapper.SCCWrite:
			effect = fmt.Sprintf("SCC register $%02X", wr.Result.Register)
		default:
			effect = wr.Result.Kind.String()
		}

		if _, err := fmt.Fprintf(w.writer, "write $%04X = $%02X: %s\n", wr.Address, wr.Value, effect); err != nil {
			return fmt.Errorf("writing write entry: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// WriteTranslations writes the location and data of every translated address.
func (w Writer) WriteTranslations(translations []Translation) error {
	for _, tr := range translations {
		var location string
		switch tr.Access.Kind {
		case mapper.ROMAccess:
			location = fmt.Sprintf("ROM $%06X", tr.Access.Offset)
		case mapper.SCCAccess:
			location = fmt.Sprintf("SCC $%02X", tr.Access.Offset)
		default:
			location = "unmapped"
		}

		if _, err := fmt.Fprintf(w.writer, "$%04X page %d offset $%04X: %s\n",
			tr.Address, tr.Page, tr.Offset, location); err != nil {
			return fmt.Errorf("writing translation: %w", err)
		}
		if err := w.BundleDataWrites(tr.Data); err != nil {
			return err
		}
	}
	return nil
}

// BundleDataWrites writes the data bytes with dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString("  .byte ")
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "$%02x, ", data[i+j]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ", ")
		if _, err := fmt.Fprintf(w.writer, "%s\n", line); err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}

		i += toWrite
		remaining -= toWrite
	}
	return nil
}
