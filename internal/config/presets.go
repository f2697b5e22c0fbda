package config

import "sort"

var Presets = map[string]map[string]*Config{
	"ising": {
		"critical": {
			Model: "ising", Seed: 1, Steps: 20000, Warmup: 2000, SampleEvery: 10,
			Spin: SpinConfig{Lx: 32, Ly: 32, Topology: "square", Q: 2, J: 1, T: DefaultT, Dynamics: "wolff"},
		},
		"hot": {
			Model: "ising", Seed: 1, Steps: 5000, Warmup: 500, SampleEvery: 5,
			Spin: SpinConfig{Lx: 32, Ly: 32, Topology: "square", Q: 2, J: 1, T: 5, Dynamics: "metropolis"},
		},
		"cold": {
			Model: "ising", Seed: 1, Steps: 5000, Warmup: 500, SampleEvery: 5,
			Spin: SpinConfig{Lx: 32, Ly: 32, Topology: "square", Q: 2, J: 1, T: 1.5, Dynamics: "metropolis"},
		},
		"antiferro": {
			Model: "ising", Seed: 1, Steps: 10000, Warmup: 1000, SampleEvery: 10,
			Spin: SpinConfig{Lx: 32, Ly: 32, Topology: "square", Q: 2, J: -1, T: 1.5, Dynamics: "metropolis"},
		},
		"triangular_anti": {
			Model: "ising", Seed: 1, Steps: 10000, Warmup: 1000, SampleEvery: 10,
			Spin: SpinConfig{Lx: 24, Ly: 24, Topology: "triangular", Q: 2, J: -1, T: 0.5, Dynamics: "metropolis"},
		},
		"chain": {
			Model: "ising", Seed: 1, Steps: 10000, Warmup: 1000, SampleEvery: 10,
			Spin: SpinConfig{Lx: 128, Ly: 1, Topology: "chain", Q: 2, J: 1, H: 0.1, T: 1, Dynamics: "metropolis"},
		},
	},
	"potts": {
		"q3": {
			Model: "potts", Seed: 1, Steps: 10000, Warmup: 1000, SampleEvery: 10,
			Spin: SpinConfig{Lx: 32, Ly: 32, Topology: "square", Q: 3, J: 1, T: 0.995, Dynamics: "wolff"},
		},
		"q8": {
			Model: "potts", Seed: 1, Steps: 10000, Warmup: 1000, SampleEvery: 10,
			Spin: SpinConfig{Lx: 32, Ly: 32, Topology: "square", Q: 8, J: 1, T: 0.745, Dynamics: "metropolis"},
		},
	},
	"percolation": {
		"small": {
			Model: "percolation", Seed: 1, Steps: 4096, SampleEvery: 64,
			Percolation: PercolationConfig{L: 16},
		},
		"large": {
			Model: "percolation", Seed: 1, Steps: 262144, SampleEvery: 1024,
			Percolation: PercolationConfig{L: 128},
		},
	},
	"harddisk": {
		"dilute": {
			Model: "harddisk", Seed: 1, Steps: 5000, Warmup: 500, SampleEvery: 10,
			HardDisk: HardDiskConfig{N: 16, Lx: 10, Ly: 10, T: 1},
		},
		"dense": {
			Model: "harddisk", Seed: 1, Steps: 20000, Warmup: 2000, SampleEvery: 20,
			HardDisk: HardDiskConfig{N: 64, Lx: 9.5, Ly: 9.5, T: 1, Crystal: true, CheckOverlap: true},
		},
	},
	"wanglandau": {
		"small": {
			Model: "wanglandau", Seed: 1, Steps: 50, SampleEvery: 1,
			WangLandau: WangLandauConfig{L: 4, FlatThreshold: 0.8, FinalLnF: 1e-5, CheckEvery: 1000},
		},
		"medium": {
			Model: "wanglandau", Seed: 1, Steps: 200, SampleEvery: 1,
			WangLandau: WangLandauConfig{L: 8, FlatThreshold: 0.8, FinalLnF: 1e-4, CheckEvery: 1000},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
