// Package config loads and saves camouflage analysis settings as YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/setanarut/camouflage"
	"gopkg.in/yaml.v3"
)

// Config mirrors camouflage.Options with named enums so files stay readable.
type Config struct {
	Quantize struct {
		// Levels is the number of tone levels kept per image
		Levels int `yaml:"levels"`

		// Method is one of uniform, kmeans, dominantcolor
		Method string `yaml:"method"`
	} `yaml:"quantize"`

	Crop struct {
		// Predicate is one of overlaps, connected, touching
		Predicate string `yaml:"predicate"`

		// MaskFootprint clears background pixels outside the foreground footprint
		MaskFootprint bool `yaml:"maskFootprint"`
	} `yaml:"crop"`

	Graph struct {
		// K is the number of background neighbours per foreground region
		K int `yaml:"k"`

		// Search is one of exhaustive, kdtree
		Search string `yaml:"search"`

		// NumCores specifies how many goroutines build the graph
		NumCores int `yaml:"numCores"`
	} `yaml:"graph"`

	Output struct {
		// ForegroundWidth rescales the foreground before analysis, 0 keeps it
		ForegroundWidth int `yaml:"foregroundWidth"`

		// Labels is the path of the label image, empty to skip
		Labels string `yaml:"labels"`

		// DOT is the path of the Graphviz export, empty to skip
		DOT string `yaml:"dot"`

		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration matching camouflage.DefaultOptions,
// using all available cores.
func DefaultConfig() *Config {
	opt := camouflage.DefaultOptions()
	cfg := &Config{}

	cfg.Quantize.Levels = opt.Levels
	cfg.Quantize.Method = opt.Quantizer.String()

	cfg.Crop.Predicate = opt.Crop.String()
	cfg.Crop.MaskFootprint = opt.MaskFootprint

	cfg.Graph.K = opt.K
	cfg.Graph.Search = opt.Search.String()
	cfg.Graph.NumCores = runtime.NumCPU()

	return cfg
}

// LoadConfig reads the YAML file at configPath over DefaultConfig. A
// missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories as needed.
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory for %s: %w", configPath, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config %s: %w", configPath, err)
	}
	return nil
}

// Options converts the configuration into analysis options.
func (c *Config) Options() (camouflage.Options, error) {
	opt := camouflage.DefaultOptions()

	method, ok := camouflage.ParseQuantizeMethod(c.Quantize.Method)
	if !ok {
		return opt, fmt.Errorf("unknown quantize method %q", c.Quantize.Method)
	}
	pred, ok := camouflage.ParseCropPredicate(c.Crop.Predicate)
	if !ok {
		return opt, fmt.Errorf("unknown crop predicate %q", c.Crop.Predicate)
	}
	search, ok := camouflage.ParseNeighborSearch(c.Graph.Search)
	if !ok {
		return opt, fmt.Errorf("unknown neighbour search %q", c.Graph.Search)
	}
	if c.Quantize.Levels < 0 {
		return opt, fmt.Errorf("levels must not be negative, got %d", c.Quantize.Levels)
	}
	if c.Graph.K < 0 {
		return opt, fmt.Errorf("k must not be negative, got %d", c.Graph.K)
	}

	opt.Levels = c.Quantize.Levels
	opt.Quantizer = method
	opt.Crop = pred
	opt.MaskFootprint = c.Crop.MaskFootprint
	opt.K = c.Graph.K
	opt.Search = search
	opt.Workers = max(1, c.Graph.NumCores)
	opt.Verbose = c.Output.Verbose
	return opt, nil
}
