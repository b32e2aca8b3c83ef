// Package main implements an MSX slot and MegaROM mapper address translator
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/msxmem/internal/cli"
	"github.com/retroenv/msxmem/internal/config"
	"github.com/retroenv/msxmem/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, translation, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	for _, file := range files {
		opts.Input = file
		if len(files) > 1 {
			opts.Output = fileprocessor.GenerateOutputFilename(file)
			if opts.State != "" {
				opts.State = fileprocessor.GenerateStateFilename(file)
			}
		}

		if err := fileprocessor.ProcessFile(ctx, logger, opts, translation); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				return
			}
			logger.Error("Translating failed", log.String("file", file), log.Err(err))
		}
	}
}
