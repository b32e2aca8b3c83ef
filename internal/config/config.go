// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/msxmem/internal/bus"
	"github.com/retroenv/msxmem/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateBus creates the address space for the translation options. The primary
// slot of the cartridge is expanded if a secondary slot was requested.
func CreateBus(logger *log.Logger, opts options.Translation) *bus.Bus {
	var busOptions []bus.Option
	if opts.Slot.Expanded {
		busOptions = append(busOptions, bus.WithExpanded(opts.Slot.Primary))
	}
	return bus.New(logger, busOptions...)
}
