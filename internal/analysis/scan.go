package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/statmech/internal/spin"
)

// ScanPoint holds the equilibrium averages at one temperature. Energies and
// magnetizations are per spin.
type ScanPoint struct {
	T              float64
	Energy         float64
	AbsMag         float64
	SpecificHeat   float64
	Susceptibility float64
	Acceptance     float64
}

// ScanConfig describes an annealing run. Temperatures are visited from
// TStart to TEnd in Points equal steps; either direction works.
type ScanConfig struct {
	TStart, TEnd float64
	Points       int
	Warmup       int
	Sweeps       int
	Wolff        bool
}

// TemperatureScan anneals m through the configured temperatures, keeping the
// spin configuration between points so each one starts near equilibrium.
func TemperatureScan(ctx context.Context, m *spin.Model, cfg ScanConfig) ([]ScanPoint, error) {
	if cfg.Points < 1 || cfg.Sweeps < 1 || cfg.Warmup < 0 {
		return nil, fmt.Errorf("invalid scan: %d points, %d warmup, %d sweeps", cfg.Points, cfg.Warmup, cfg.Sweeps)
	}

	step := 0.0
	if cfg.Points > 1 {
		step = (cfg.TEnd - cfg.TStart) / float64(cfg.Points-1)
	}

	n := float64(m.N())
	results := make([]ScanPoint, 0, cfg.Points)
	for i := 0; i < cfg.Points; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		T := cfg.TStart + float64(i)*step
		if err := m.SetTemperature(T); err != nil {
			return results, err
		}

		for k := 0; k < cfg.Warmup; k++ {
			if err := advance(m, cfg.Wolff); err != nil {
				return results, err
			}
		}
		m.ResetData()
		for k := 0; k < cfg.Sweeps; k++ {
			if err := advance(m, cfg.Wolff); err != nil {
				return results, err
			}
		}

		results = append(results, ScanPoint{
			T:              m.Temperature(),
			Energy:         m.MeanEnergy() / n,
			AbsMag:         m.MeanAbsMagnetization() / n,
			SpecificHeat:   m.SpecificHeat(),
			Susceptibility: m.Susceptibility(),
			Acceptance:     m.AcceptanceRatio(),
		})
	}

	return results, nil
}

func advance(m *spin.Model, wolff bool) error {
	if wolff {
		_, err := m.WolffStep()
		return err
	}
	m.Step()
	return nil
}

// Peak returns the point with the largest specific heat, the usual finite-size
// estimate of the transition temperature.
func Peak(points []ScanPoint) (ScanPoint, bool) {
	if len(points) == 0 {
		return ScanPoint{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.SpecificHeat > best.SpecificHeat {
			best = p
		}
	}
	return best, true
}
