// Package config centralizes every path and file name the registry works
// with, so moving the dataset tree or renaming the metadata file is a
// one-place change.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the resolved filesystem layout for one working root.
type Config struct {
	// BaseDir is the working root everything else hangs off. Defaults to
	// the current working directory so the tool is portable.
	BaseDir string

	// MetadataDir / MetadataFile locate the CSV holding all records.
	MetadataDir  string
	MetadataFile string

	// DatasetRoot is the managed dataset tree that registered images are
	// copied into, one subfolder per split.
	DatasetRoot string

	// LogFile is where the application log goes. A TUI owns stdout, so
	// logging to the terminal is not an option.
	LogFile string
}

// Load builds a Config from defaults and environment overrides.
// MEDIMG_BASE_DIR relocates the whole layout; the remaining keys rename
// individual pieces relative to it.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	viper.SetDefault("MEDIMG_BASE_DIR", cwd)
	viper.SetDefault("MEDIMG_METADATA_DIR", "metadata")
	viper.SetDefault("MEDIMG_METADATA_FILE", "metadata.csv")
	viper.SetDefault("MEDIMG_DATASET_ROOT", filepath.Join("images", "dataset"))
	viper.SetDefault("MEDIMG_LOG_FILE", "medimg.log")

	viper.AutomaticEnv()

	cfg := &Config{
		BaseDir:      viper.GetString("MEDIMG_BASE_DIR"),
		MetadataDir:  viper.GetString("MEDIMG_METADATA_DIR"),
		MetadataFile: viper.GetString("MEDIMG_METADATA_FILE"),
		DatasetRoot:  viper.GetString("MEDIMG_DATASET_ROOT"),
		LogFile:      viper.GetString("MEDIMG_LOG_FILE"),
	}
	return cfg, nil
}

// WithBaseDir returns a Config identical to the defaults but rooted at dir.
// Used by the CLI --base flag and by tests.
func WithBaseDir(dir string) *Config {
	return &Config{
		BaseDir:      dir,
		MetadataDir:  "metadata",
		MetadataFile: "metadata.csv",
		DatasetRoot:  filepath.Join("images", "dataset"),
		LogFile:      "medimg.log",
	}
}

// MetadataDirPath returns the absolute metadata directory.
func (c *Config) MetadataDirPath() string {
	return filepath.Join(c.BaseDir, c.MetadataDir)
}

// MetadataCSVPath returns the absolute path of the metadata CSV.
func (c *Config) MetadataCSVPath() string {
	return filepath.Join(c.BaseDir, c.MetadataDir, c.MetadataFile)
}

// DatasetRootPath returns the absolute root of the managed dataset tree.
func (c *Config) DatasetRootPath() string {
	return filepath.Join(c.BaseDir, c.DatasetRoot)
}

// LogPath returns the absolute path of the application log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.BaseDir, c.MetadataDir, c.LogFile)
}
