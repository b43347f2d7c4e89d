package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mezzoeditor/mezzo-sub000/internal/config"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/document"
	"github.com/mezzoeditor/mezzo-sub000/internal/log"
)

// app holds what every command needs once flags are parsed.
type app struct {
	stdout, stderr io.Writer

	configPath string
	logLevel   string

	cfg *config.Config
	log *log.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "mezzo",
		Short: "Inspect, search and highlight text with the mezzo engine",
		Long: `mezzo loads files into the mezzo text engine and runs its incremental
services over them: line/column conversion, comment highlighting and
background search. The watch command keeps a document in sync with a file
as it changes on disk.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"config file (.toml or .yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"log level (debug, info, warn, error); overrides the config")

	root.AddCommand(
		newStatsCmd(a),
		newPositionCmd(a),
		newHighlightCmd(a),
		newSearchCmd(a),
		newWatchCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	opts := []config.Option{config.WithFile(a.configPath)}
	if a.logLevel != "" {
		opts = append(opts, config.WithOverride("log.level", a.logLevel))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	a.log = cfg.Logger(a.stderr)
	log.SetDefault(a.log)
	a.log.Debug("config loaded (chunk size %d)", cfg.Text.ChunkSize)
	return nil
}

// open reads path into a document built with the configured text options.
func (a *app) open(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc := document.FromString(string(data), document.WithTextOptions(a.cfg.TextOptions()...))
	a.log.WithField("file", path).Debug("loaded %d code units", doc.Length())
	return doc, nil
}
