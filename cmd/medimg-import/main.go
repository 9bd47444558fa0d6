// Command medimg-import bulk-registers a directory of image files into
// the registry with shared metadata. Useful for loading an existing
// collection of scans in one pass instead of one at a time in the TUI.
//
// Usage:
//
//	medimg-import --dir /mnt/scans --patient P-0042 --diagnosis Glaucoma
//	medimg-import --dir ~/staging --split Test --date 2024-06-01 --dry-run
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlbertJQM/Proyecto-Final/internal/config"
	"github.com/AlbertJQM/Proyecto-Final/internal/record"
	"github.com/AlbertJQM/Proyecto-Final/internal/registry"
	"github.com/AlbertJQM/Proyecto-Final/pkg/imginfo"
	"github.com/AlbertJQM/Proyecto-Final/pkg/logger"
)

type importStats struct {
	imported int
	skipped  int
	errors   int
}

func main() {
	dir := flag.String("dir", "", "Source directory containing images to import (required)")
	patient := flag.String("patient", "", "Patient identifier for all imported images (required)")
	diagnosis := flag.String("diagnosis", "", "Diagnosis for all imported images (required)")
	splitName := flag.String("split", string(record.SplitTrain), "Dataset split: Train, Test or Validation")
	dateStr := flag.String("date", "", "Acquisition date YYYY-MM-DD (default: today)")
	baseDir := flag.String("base", "", "Workspace directory (default: current directory)")
	dryRun := flag.Bool("dry-run", false, "Show what would be imported without making changes")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: medimg-import [options]\n\n")
		fmt.Fprintf(os.Stderr, "Bulk register image files from a directory.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  medimg-import --dir /mnt/scans --patient P-0042 --diagnosis Glaucoma\n")
		fmt.Fprintf(os.Stderr, "  medimg-import --dir ~/staging --split Test --patient P-17 --diagnosis Sano --dry-run\n")
	}
	flag.Parse()

	if *dir == "" || *patient == "" || *diagnosis == "" {
		fmt.Fprintf(os.Stderr, "Error: --dir, --patient and --diagnosis are required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	split := record.Split(*splitName)
	if !split.Valid() {
		fmt.Fprintf(os.Stderr, "Error: invalid split %q (Train, Test or Validation)\n", *splitName)
		os.Exit(1)
	}

	acquired := time.Now()
	if *dateStr != "" {
		t, err := time.Parse(record.DateLayout, *dateStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date %q, use YYYY-MM-DD\n", *dateStr)
			os.Exit(1)
		}
		acquired = t
	}

	srcInfo, err := os.Stat(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", *dir, err)
		os.Exit(1)
	}
	if !srcInfo.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", *dir)
		os.Exit(1)
	}

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

	// Files already registered under this split, by basename
	existingNames := make(map[string]bool)
	for _, r := range mgr.List() {
		if r.Split == split {
			existingNames[strings.ToLower(filepath.Base(r.FilePath))] = true
		}
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading source directory: %v\n", err)
		os.Exit(1)
	}

	var candidates []os.DirEntry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if shouldSkipFile(entry.Name()) {
			continue
		}
		candidates = append(candidates, entry)
	}

	if len(candidates) == 0 {
		fmt.Println("No importable image files found in source directory.")
		return
	}

	fmt.Printf("Import to: %s split\n", split)
	fmt.Printf("Dataset:   %s\n", mgr.DatasetRoot())
	fmt.Printf("Source:    %s\n", *dir)
	fmt.Printf("Patient:   %s\n", *patient)
	fmt.Printf("Diagnosis: %s\n", *diagnosis)
	fmt.Printf("Acquired:  %s\n", acquired.Format(record.DateLayout))
	fmt.Printf("Files:     %d candidates\n", len(candidates))
	if *dryRun {
		fmt.Println("Mode:      DRY RUN")
	}
	fmt.Println()

	stats := importStats{}

	for _, entry := range candidates {
		name := entry.Name()
		srcPath := filepath.Join(*dir, name)

		if existingNames[strings.ToLower(name)] {
			fmt.Printf("  SKIP  %-40s (already registered)\n", name)
			stats.skipped++
			continue
		}

		info, err := entry.Info()
		if err != nil {
			fmt.Printf("  ERR   %-40s %v\n", name, err)
			stats.errors++
			continue
		}

		var dims *record.Dims
		if w, h, err := imginfo.Probe(srcPath); err == nil {
			dims = &record.Dims{W: w, H: h}
		}

		if *dryRun {
			sizeNote := ""
			if dims != nil {
				sizeNote = fmt.Sprintf(" [%dx%d]", dims.W, dims.H)
			}
			fmt.Printf("  ADD   %-40s %10s%s\n", name, formatSize(info.Size()), sizeNote)
			stats.imported++
			continue
		}

		rec, err := mgr.Register(srcPath, registry.Metadata{
			PatientID:       *patient,
			AcquisitionDate: acquired,
			Diagnosis:       *diagnosis,
			Split:           split,
			Dims:            dims,
		})
		if err != nil {
			fmt.Printf("  ERR   %-40s %v\n", name, err)
			stats.errors++
			continue
		}
		existingNames[strings.ToLower(name)] = true

		fmt.Printf("  OK    %-40s %10s %s\n", name, formatSize(info.Size()), rec.ID)
		stats.imported++
	}

	fmt.Printf("\nSummary: %d imported, %d skipped, %d errors\n", stats.imported, stats.skipped, stats.errors)
	if *dryRun {
		fmt.Println("(dry run - no files were modified)")
	}
}

// shouldSkipFile filters dotfiles and anything that is not an image.
func shouldSkipFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return false
	}
	return true
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
