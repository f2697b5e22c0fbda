// Package config loads run configurations from YAML and holds the named
// presets used by the command line.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps       = 10000
	DefaultWarmup      = 1000
	DefaultSampleEvery = 10
	DefaultL           = 32
	DefaultT           = 2.269185314213022
	DefaultDisks       = 16
	DefaultBox         = 10.0
)

var ErrInvalid = errors.New("config: invalid configuration")

// Models lists every model name a Config may select.
var Models = []string{"ising", "potts", "percolation", "harddisk", "wanglandau"}

type Config struct {
	Model       string            `yaml:"model"`
	Seed        int64             `yaml:"seed"`
	Steps       int               `yaml:"steps"`
	Warmup      int               `yaml:"warmup"`
	SampleEvery int               `yaml:"sample_every"`
	Spin        SpinConfig        `yaml:"spin"`
	Percolation PercolationConfig `yaml:"percolation"`
	HardDisk    HardDiskConfig    `yaml:"harddisk"`
	WangLandau  WangLandauConfig  `yaml:"wanglandau"`
}

// SpinConfig drives both the ising and potts models. Q is ignored for ising.
type SpinConfig struct {
	Lx       int     `yaml:"lx"`
	Ly       int     `yaml:"ly"`
	Topology string  `yaml:"topology"`
	Q        int     `yaml:"q"`
	J        float64 `yaml:"j"`
	H        float64 `yaml:"h"`
	T        float64 `yaml:"t"`
	Dynamics string  `yaml:"dynamics"`
}

type PercolationConfig struct {
	L int `yaml:"l"`
}

type HardDiskConfig struct {
	N            int     `yaml:"n"`
	Lx           float64 `yaml:"lx"`
	Ly           float64 `yaml:"ly"`
	T            float64 `yaml:"t"`
	Crystal      bool    `yaml:"crystal"`
	CheckOverlap bool    `yaml:"check_overlap"`
}

type WangLandauConfig struct {
	L             int     `yaml:"l"`
	FlatThreshold float64 `yaml:"flat_threshold"`
	FinalLnF      float64 `yaml:"final_lnf"`
	CheckEvery    int     `yaml:"check_every"`
	MaxSweeps     int     `yaml:"max_sweeps"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "ising",
		Seed:        1,
		Steps:       DefaultSteps,
		Warmup:      DefaultWarmup,
		SampleEvery: DefaultSampleEvery,
		Spin: SpinConfig{
			Lx:       DefaultL,
			Ly:       DefaultL,
			Topology: "square",
			Q:        2,
			J:        1,
			T:        DefaultT,
			Dynamics: "metropolis",
		},
		Percolation: PercolationConfig{L: 64},
		HardDisk: HardDiskConfig{
			N:  DefaultDisks,
			Lx: DefaultBox,
			Ly: DefaultBox,
			T:  1,
		},
		WangLandau: WangLandauConfig{
			L:             8,
			FlatThreshold: 0.8,
			FinalLnF:      1e-4,
			CheckEvery:    1000,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run settings and the section of the selected model.
// Physical parameters are checked again, in full, by the engines.
func (c *Config) Validate() error {
	switch {
	case !knownModel(c.Model):
		return fmt.Errorf("%w: unknown model %q", ErrInvalid, c.Model)
	case c.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	case c.Warmup < 0:
		return fmt.Errorf("%w: warmup must not be negative, got %d", ErrInvalid, c.Warmup)
	case c.SampleEvery <= 0:
		return fmt.Errorf("%w: sample_every must be positive, got %d", ErrInvalid, c.SampleEvery)
	}

	switch c.Model {
	case "ising", "potts":
		s := c.Spin
		if s.Lx <= 0 || s.Ly <= 0 {
			return fmt.Errorf("%w: spin lattice %dx%d", ErrInvalid, s.Lx, s.Ly)
		}
		if s.Dynamics != "metropolis" && s.Dynamics != "wolff" {
			return fmt.Errorf("%w: unknown dynamics %q", ErrInvalid, s.Dynamics)
		}
		if c.Model == "potts" && s.Q < 2 {
			return fmt.Errorf("%w: potts needs q >= 2, got %d", ErrInvalid, s.Q)
		}
	case "percolation":
		if c.Percolation.L <= 0 {
			return fmt.Errorf("%w: percolation L=%d", ErrInvalid, c.Percolation.L)
		}
	case "harddisk":
		if c.HardDisk.N < 2 {
			return fmt.Errorf("%w: need at least 2 disks, got %d", ErrInvalid, c.HardDisk.N)
		}
	case "wanglandau":
		if c.WangLandau.L < 2 {
			return fmt.Errorf("%w: wanglandau L=%d", ErrInvalid, c.WangLandau.L)
		}
	}
	return nil
}

func knownModel(name string) bool {
	for _, m := range Models {
		if m == name {
			return true
		}
	}
	return false
}
