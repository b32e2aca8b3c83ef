// Package cli handles command line interface logic
package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/msxmem/internal/mapper"
	"github.com/retroenv/msxmem/internal/options"
	"github.com/retroenv/msxmem/internal/slot"
	"github.com/retroenv/retrogolib/cli"
)

var errVerifyWithoutState = errors.New("verify requires a state file, pass -state")

// ParseFlags parses command line flags and returns program and translation options
func ParseFlags() (options.Program, options.Translation, error) {
	flags := cli.NewFlagSet("msxmem")
	var opts options.Program
	flags.AddSection("Parameters", &opts.Parameters)
	flags.AddSection("Flags", &opts.Flags)

	args, err := flags.Parse(os.Args[1:])
	if err != nil || (len(args) == 0 && opts.Batch == "" && opts.Input == "") {
		return opts, options.Translation{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Translation{}, err
	}

	if opts.Batch == "" && opts.Input == "" {
		opts.Input = args[0]
	}

	if opts.Verify && opts.State == "" {
		return opts, options.Translation{}, errVerifyWithoutState
	}

	translation, err := createTranslationOptions(opts)
	if err != nil {
		return opts, options.Translation{}, err
	}

	return opts, translation, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *cli.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.flags == nil {
		fmt.Printf("usage: msxmem [options] <ROM file>\n\n")
		return
	}
	e.flags.ShowUsage()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// createTranslationOptions converts the string options to typed translation options
func createTranslationOptions(opts options.Program) (options.Translation, error) {
	translation := options.NewTranslation()

	name := strings.ToLower(strings.TrimSpace(opts.Mapper))
	if name != "" && name != options.AutoMapper {
		variant, err := mapper.ParseVariant(name)
		if err != nil {
			return translation, fmt.Errorf("parsing mapper: %w", err)
		}
		translation.Mapper = variant
		translation.AutoDetect = false
	}

	if opts.Slot != "" {
		id, err := slot.Parse(opts.Slot)
		if err != nil {
			return translation, fmt.Errorf("parsing slot: %w", err)
		}
		translation.Slot = id
	}

	writes, err := parseWrites(opts.Writes)
	if err != nil {
		return translation, err
	}
	translation.Writes = writes

	reads, err := parseAddresses(opts.Reads)
	if err != nil {
		return translation, err
	}
	translation.Reads = reads

	return translation, nil
}

func parseWrites(s string) ([]options.Write, error) {
	var writes []options.Write
	for _, item := range splitList(s) {
		address, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid write '%s', expected addr=value", item)
		}

		addr, err := parseNumber(address, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing write address '%s': %w", address, err)
		}
		val, err := parseNumber(value, 8)
		if err != nil {
			return nil, fmt.Errorf("parsing write value '%s': %w", value, err)
		}

		writes = append(writes, options.Write{Address: uint16(addr), Value: byte(val)})
	}
	return writes, nil
}

func parseAddresses(s string) ([]uint16, error) {
	var addresses []uint16
	for _, item := range splitList(s) {
		addr, err := parseNumber(item, 16)
		if err != nil {
			return nil, fmt.Errorf("parsing address '%s': %w", item, err)
		}
		addresses = append(addresses, uint16(addr))
	}
	return addresses, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseNumber parses a number in decimal, 0x or $ prefixed hex notation.
func parseNumber(s string, bitSize int) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	n, err := strconv.ParseUint(s, 0, bitSize)
	if err != nil {
		return 0, fmt.Errorf("parsing number: %w", err)
	}
	return n, nil
}
