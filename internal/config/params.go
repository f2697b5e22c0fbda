package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownParam = errors.New("config: unknown parameter")

// setters maps dotted parameter names to the field they change. Integer
// fields round to the nearest value.
var setters = map[string]func(*Config, float64){
	"seed":         func(c *Config, v float64) { c.Seed = int64(math.Round(v)) },
	"steps":        func(c *Config, v float64) { c.Steps = round(v) },
	"warmup":       func(c *Config, v float64) { c.Warmup = round(v) },
	"sample_every": func(c *Config, v float64) { c.SampleEvery = round(v) },

	"spin.l":  func(c *Config, v float64) { c.Spin.Lx, c.Spin.Ly = round(v), round(v) },
	"spin.lx": func(c *Config, v float64) { c.Spin.Lx = round(v) },
	"spin.ly": func(c *Config, v float64) { c.Spin.Ly = round(v) },
	"spin.q":  func(c *Config, v float64) { c.Spin.Q = round(v) },
	"spin.j":  func(c *Config, v float64) { c.Spin.J = v },
	"spin.h":  func(c *Config, v float64) { c.Spin.H = v },
	"spin.t":  func(c *Config, v float64) { c.Spin.T = v },

	"percolation.l": func(c *Config, v float64) { c.Percolation.L = round(v) },

	"harddisk.n":   func(c *Config, v float64) { c.HardDisk.N = round(v) },
	"harddisk.box": func(c *Config, v float64) { c.HardDisk.Lx, c.HardDisk.Ly = v, v },
	"harddisk.lx":  func(c *Config, v float64) { c.HardDisk.Lx = v },
	"harddisk.ly":  func(c *Config, v float64) { c.HardDisk.Ly = v },
	"harddisk.t":   func(c *Config, v float64) { c.HardDisk.T = v },

	"wanglandau.l":              func(c *Config, v float64) { c.WangLandau.L = round(v) },
	"wanglandau.flat_threshold": func(c *Config, v float64) { c.WangLandau.FlatThreshold = v },
	"wanglandau.final_lnf":      func(c *Config, v float64) { c.WangLandau.FinalLnF = v },
}

func round(v float64) int { return int(math.Round(v)) }

// SetParam assigns a numeric parameter by its dotted name, e.g. "spin.t".
func (c *Config) SetParam(name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	set(c, v)
	return nil
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// ParamNames lists every name SetParam accepts.
func ParamNames() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
