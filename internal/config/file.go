package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no explicit
// config file is given.
const DefaultFileName = ".pkgdocs.yaml"

// File is the optional YAML configuration file. Every field is optional; set
// fields act as defaults below flags and environment variables.
type File struct {
	OutputPath         string `yaml:"output_path"`
	HostingBasePath    string `yaml:"hosting_base_path"`
	MinimumAccessLevel string `yaml:"minimum_access_level"`
	Swift              string `yaml:"swift"`
	Title              string `yaml:"title"`
	Intro              string `yaml:"intro"`
	MetricsFile        string `yaml:"metrics_file"`
	VerifyLinks        *bool  `yaml:"verify_links"`

	// dir is the directory holding the file; relative paths resolve against it.
	dir string
}

// LoadFile reads and decodes a config file. Environment references
// (${VAR}) in the file are expanded before decoding.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user supplied config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var f File
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	f.dir = filepath.Dir(abs)
	return &f, nil
}

// findFile returns the config file for workdir: explicit when set (must
// exist), else DefaultFileName when present, else nil.
func findFile(explicit, workdir string) (*File, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	candidate := filepath.Join(workdir, DefaultFileName)
	if _, err := os.Stat(candidate); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	return LoadFile(candidate)
}

func (f *File) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.dir, p)
}
