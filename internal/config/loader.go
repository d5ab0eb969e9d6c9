// Package config provides configuration loading helpers.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	userConfigDirName  = ".config"
	userConfigFileName = "config.json"
	repoConfigFileName = ".gitstamp.json"
)

// Layer is one configuration source. Nil fields leave lower layers in place.
type Layer struct {
	Output         OutputLayer `json:"output"`
	StrictOverflow *bool       `json:"strict_overflow"`
	GitDir         *string     `json:"git_dir"`
}

// OutputLayer holds the output settings of a Layer.
type OutputLayer struct {
	Format   *string `json:"format"`
	Path     *string `json:"path"`
	Package  *string `json:"package"`
	Variable *string `json:"variable"`
}

// Load resolves configuration from user defaults, repo overrides, and CLI overrides.
// A relative git_dir in the repo layer is taken relative to repoRoot.
func Load(repoRoot string, cliOverrides Layer, warn func(string)) (Config, error) {
	userConfigPath, err := userConfigPath()
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	userLayer, err := readLayer(userConfigPath, "user defaults")
	if err != nil {
		return Config{}, err
	}
	userLayer.apply(&cfg)

	if repoRoot != "" {
		repoLayer, err := readLayer(filepath.Join(repoRoot, repoConfigFileName), "repo overrides")
		if err != nil {
			return Config{}, err
		}
		if repoLayer.GitDir != nil {
			gitDir := strings.TrimSpace(*repoLayer.GitDir)
			if gitDir != "" && !filepath.IsAbs(gitDir) {
				gitDir = filepath.Join(repoRoot, gitDir)
			}
			repoLayer.GitDir = &gitDir
		}
		repoLayer.apply(&cfg)
	}

	cliOverrides.apply(&cfg)
	return ApplyDefaults(cfg, warn), nil
}

// userConfigPath resolves the user defaults path for config.json.
func userConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(homeDir, userConfigDirName, "gitstamp", userConfigFileName), nil
}

// readLayer parses one config file. A missing file is an empty layer.
func readLayer(path string, label string) (Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Layer{}, nil
		}
		return Layer{}, fmt.Errorf("load %s config %s: %w", label, path, err)
	}
	defer file.Close()

	var layer Layer
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&layer); err != nil {
		return Layer{}, fmt.Errorf("load %s config %s: %w", label, path, err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Layer{}, fmt.Errorf("load %s config %s: invalid trailing content after JSON object", label, path)
	}
	return layer, nil
}

// apply overlays the set fields of l onto cfg.
func (l Layer) apply(cfg *Config) {
	setString(&cfg.Output.Format, l.Output.Format)
	setString(&cfg.Output.Path, l.Output.Path)
	setString(&cfg.Output.Package, l.Output.Package)
	setString(&cfg.Output.Variable, l.Output.Variable)
	setString(&cfg.GitDir, l.GitDir)
	if l.StrictOverflow != nil {
		cfg.StrictOverflow = *l.StrictOverflow
	}
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
