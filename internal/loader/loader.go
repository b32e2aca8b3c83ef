// Package loader handles ROM image file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/msxmem/internal/memory"
	"github.com/retroenv/msxmem/internal/options"
)

// maxImageSize is the largest image that an 8 bit bank register with 16KB banks can address.
const maxImageSize = 256 * 0x4000

var errEmptyImage = errors.New("empty ROM image")

// Loader handles loading ROM images from disk.
type Loader struct{}

// New creates a new ROM image loader.
func New() *Loader {
	return &Loader{}
}

// Load loads the ROM image of the input file.
func (l *Loader) Load(opts options.Program) (memory.Image, error) {
	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = file.Close() }()

	image, err := LoadImage(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", opts.Input, err)
	}
	return image, nil
}

// LoadImage reads a raw ROM image from the reader.
func LoadImage(reader io.Reader) (memory.Image, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading ROM image: %w", err)
	}
	if len(data) == 0 {
		return nil, errEmptyImage
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("ROM image exceeds maximum size of %d bytes", maxImageSize)
	}
	return memory.Image(data), nil
}
