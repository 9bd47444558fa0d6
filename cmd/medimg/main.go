// Command medimg is the retinal image registry editor.
// It provides a TUI for registering medical image files with structured
// metadata, keeping the metadata CSV and the dataset folder tree in sync.
//
// Usage:
//
//	./medimg [--base path/to/workspace]
//
// If no --base flag is provided, the current working directory is used.
// MEDIMG_* environment variables override individual paths.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/AlbertJQM/Proyecto-Final/internal/config"
	"github.com/AlbertJQM/Proyecto-Final/internal/editor"
	"github.com/AlbertJQM/Proyecto-Final/internal/registry"
	"github.com/AlbertJQM/Proyecto-Final/pkg/logger"
)

func main() {
	baseDir := flag.String("base", "", "Workspace directory (default: current directory)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *baseDir != "" {
		cfg = config.WithBaseDir(*baseDir)
	}

	log, err := logger.New(cfg.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	mgr := registry.New(cfg, log)

	p := tea.NewProgram(editor.New(mgr), tea.WithAltScreen())

	watcher, err := editor.NewWatcher(mgr.CSVPath(), log, func() {
		p.Send(editor.ExternalChangeMsg{})
	})
	if err != nil {
		log.Warn("metadata watcher unavailable", zap.Error(err))
	} else {
		defer watcher.Stop()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
