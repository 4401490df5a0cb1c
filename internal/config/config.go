// Package config loads pdiff's optional user configuration, a YAML document
// found through the PDIFF_CFG_FILE environment variable or in the user's
// configuration directory as pdiff.yaml:
//
//	context: 5
//	color: always
//	theme:
//	  deleted: "1"
//	  added: "2"
//	  hunk: "3"
//	  meta: "8"
//
// The context and color keys are read by the command line as flag defaults,
// after the PDIFF_CONTEXT and PDIFF_COLOR environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/PedroElizalde01/pdiff/internal/log"
)

// ErrNoConfig is returned by Path when no configuration file exists.
var ErrNoConfig = errors.New("no config file found")

// Theme holds lipgloss color specs (ANSI numbers or hex values) for rows.
type Theme struct {
	Deleted string `yaml:"deleted"`
	Added   string `yaml:"added"`
	Hunk    string `yaml:"hunk"`
	Meta    string `yaml:"meta"`
	Cursor  string `yaml:"cursor"`
}

type Config struct {
	// Source is the path of the loaded file, empty for defaults.
	Source string `yaml:"-"`
	Theme  Theme  `yaml:"theme"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Theme: Theme{
			Deleted: "1",
			Added:   "2",
			Hunk:    "3",
			Meta:    "8",
			Cursor:  "236",
		},
	}
}

// Load reads the configuration file, filling in defaults for anything it
// leaves out. A missing file is not an error.
func Load() (Config, error) {
	path, err := Path()
	if errors.Is(err, ErrNoConfig) {
		return Default(), nil
	}
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Path returns the path of the configuration file. If PDIFF_CFG_FILE is set
// it must name an existing file. Otherwise pdiff.yaml in os.UserConfigDir is
// used when it exists.
func Path() (string, error) {
	if cfgPath := os.Getenv("PDIFF_CFG_FILE"); cfgPath != "" {
		fileInfo, err := os.Stat(cfgPath)
		if err != nil {
			return "", fmt.Errorf("config file not found at PDIFF_CFG_FILE path: %s", cfgPath)
		}
		if fileInfo.IsDir() {
			return "", fmt.Errorf("PDIFF_CFG_FILE points to a directory: %s", cfgPath)
		}
		log.Debugf("using config file from PDIFF_CFG_FILE: %s", cfgPath)
		return cfgPath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		log.Warnf("no user config dir, using defaults: %v", err)
		return "", ErrNoConfig
	}
	file := filepath.Join(dir, "pdiff.yaml")
	if fileInfo, err := os.Stat(file); err == nil && !fileInfo.IsDir() {
		log.Debugf("using config file: %s", file)
		return file, nil
	}
	return "", ErrNoConfig
}
