// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// elnforge is a terminal editor for electronic lab notebook entries.
// It packages a markdown body, attachments, keywords, and structured
// eLabFTW-style metadata fields into a .eln archive: a ZIP with an
// RO-Crate metadata document that ELN servers can import directly.
//
// Configuration is optional. When present it comes from a single JSONC
// file named by the ELNFORGE_CONFIG environment variable or the
// --config flag.
package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/elnforge/elnforge/lib/clock"
	"github.com/elnforge/elnforge/lib/config"
	"github.com/elnforge/elnforge/lib/editorui"
	"github.com/elnforge/elnforge/lib/executor"
	"github.com/elnforge/elnforge/lib/kernel"
	"github.com/elnforge/elnforge/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var logOutput string
	var outputDir string

	flagSet := pflag.NewFlagSet("elnforge", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to JSONC config file (overrides ELNFORGE_CONFIG)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.StringVar(&outputDir, "output-dir", "", "directory the save prompt starts in")
	flagSet.BoolP("help", "h", false, "show help")
	showVersion := flagSet.Bool("version", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if *showVersion {
		fmt.Println("elnforge " + version.String())
		return nil
	}
	if arguments := flagSet.Args(); len(arguments) > 0 {
		return fmt.Errorf("unexpected argument: %s", arguments[0])
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; elnforge is an interactive editor")
	}

	logger, closeLogger, err := newLogger(logOutput)
	if err != nil {
		return err
	}
	defer closeLogger()

	var configuration *config.Config
	if configPath != "" {
		configuration, err = config.LoadFile(configPath)
	} else {
		configuration, err = config.Load()
	}
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = configuration.DefaultOutputDir
	}

	state := kernel.NewState(clock.System())
	state.Genre = configuration.Genre()

	// Result delivery never drops a message: on a full buffer the
	// sending worker blocks until the editor drains, and the editor
	// re-arms its listener after every message, so the buffer only
	// fills while the UI is stalled.
	messages := make(chan kernel.Message, 256)
	pool := executor.New(executor.Options{
		Workers:      configuration.Workers,
		Organization: configuration.RocrateOrganization(),
		MathEnabled:  configuration.MathEnabled,
		Deliver:      func(message kernel.Message) { messages <- message },
	})
	defer pool.Close()

	logger.Info("starting editor",
		"version", version.String(),
		"workers", configuration.Workers,
		"organization", configuration.Organization.Name)

	model := editorui.NewModel(editorui.Options{
		State:            state,
		Dispatch:         pool.Dispatch,
		Messages:         messages,
		DefaultOutputDir: outputDir,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}

// newLogger builds a slog logger. Without --log-output, records are
// discarded: the TUI owns the terminal, so stderr logging would only
// corrupt the display.
func newLogger(logOutput string) (*slog.Logger, func(), error) {
	if logOutput == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	file, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log output %s: %w", logOutput, err)
	}
	logger := slog.New(slog.NewJSONHandler(file, nil))
	return logger, func() { file.Close() }, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `elnforge — terminal editor for electronic lab notebook entries.

Edits a single entry (title, markdown body, attachments, keywords,
date/time, structured metadata fields) and saves it as a .eln archive
with RO-Crate metadata.

Key bindings inside the editor:

  Tab / Shift+Tab   cycle panes
  Ctrl+S            save archive
  Ctrl+P            toggle markdown preview
  Ctrl+F            toggle body format (html/markdown)
  Ctrl+G            toggle genre (experiment/resource)
  Ctrl+C            quit

Usage: elnforge [flags]

Flags:
%s`, flagSet.FlagUsages())
}
