// Package config loads the filevault configuration from a single YAML file,
// named by the --config flag or the FILEVAULT_CONFIG environment variable.
// Fields missing from the file keep their defaults; out-of-range values are
// replaced by the default during Normalize.
package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no path is given.
const EnvVar = "FILEVAULT_CONFIG"

type Config struct {
	Compression CompressionConfig `yaml:"compression"`
	Storage     StorageConfig     `yaml:"storage"`
	Interface   InterfaceConfig   `yaml:"interface"`
	Search      SearchConfig      `yaml:"search"`
}

type CompressionConfig struct {
	// Extension is appended to compressed artifacts. Default: .huf
	Extension string `yaml:"extension"`

	// Workers bounds parallel compression jobs. Default: number of CPUs.
	Workers int `yaml:"workers"`
}

type StorageConfig struct {
	// IndexDir holds the index snapshots. Default: .filevault
	IndexDir string `yaml:"index_dir"`

	// BTreeDegree is the maximum number of children of a B-Tree node.
	BTreeDegree int `yaml:"btree_degree"`

	// DefaultIndex is where new records go: btree, rbtree or both.
	DefaultIndex string `yaml:"default_index"`
}

type InterfaceConfig struct {
	Color   bool `yaml:"color"`
	Verbose bool `yaml:"verbose"`
}

type SearchConfig struct {
	// History is the number of remembered queries; 0 disables history.
	History int `yaml:"history"`
}

func Default() Config {
	return Config{
		Compression: CompressionConfig{
			Extension: ".huf",
			Workers:   runtime.NumCPU(),
		},
		Storage: StorageConfig{
			IndexDir:     ".filevault",
			BTreeDegree:  4,
			DefaultIndex: "both",
		},
		Interface: InterfaceConfig{Color: true},
		Search:    SearchConfig{History: 50},
	}
}

// Normalize replaces invalid values with their defaults.
func (c *Config) Normalize() {
	d := Default()

	if c.Compression.Extension == "" {
		c.Compression.Extension = d.Compression.Extension
	}
	if !strings.HasPrefix(c.Compression.Extension, ".") {
		c.Compression.Extension = "." + c.Compression.Extension
	}
	if c.Compression.Workers < 1 {
		c.Compression.Workers = d.Compression.Workers
	}

	if c.Storage.IndexDir == "" {
		c.Storage.IndexDir = d.Storage.IndexDir
	}
	// degree is stored as uint16 in snapshots
	if c.Storage.BTreeDegree < 2 || c.Storage.BTreeDegree > 1<<16-1 {
		c.Storage.BTreeDegree = d.Storage.BTreeDegree
	}
	switch c.Storage.DefaultIndex = strings.ToLower(c.Storage.DefaultIndex); c.Storage.DefaultIndex {
	case "btree", "rbtree", "both":
	default:
		c.Storage.DefaultIndex = d.Storage.DefaultIndex
	}

	if c.Search.History < 0 {
		c.Search.History = d.Search.History
	}
}

// Load reads the file at path, or at $FILEVAULT_CONFIG when path is empty.
// With neither set it returns the defaults. A named file that cannot be read
// or parsed is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "config: read")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), errors.Wrapf(err, "config: parse %s", path)
	}
	cfg.Normalize()
	return cfg, nil
}
