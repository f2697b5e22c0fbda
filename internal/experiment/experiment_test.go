package experiment

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/statmech/internal/config"
	"github.com/san-kum/statmech/internal/lattice"
	"github.com/san-kum/statmech/internal/spin"
)

func smallIsing() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Spin.Lx, cfg.Spin.Ly = 8, 8
	cfg.Spin.T = 1.5
	cfg.Steps = 200
	cfg.Warmup = 50
	cfg.SampleEvery = 10
	return cfg
}

func TestRegistryListsEveryConfigModel(t *testing.T) {
	want := append([]string(nil), config.Models...)
	sort.Strings(want)
	require.Equal(t, want, NewRegistry().ListModels())
}

func TestRunIsing(t *testing.T) {
	exp := New(smallIsing())
	require.NoError(t, exp.Setup())

	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ising", result.Engine)
	assert.Equal(t, 200, result.StepsTaken)
	require.Len(t, result.Samples, 20)
	for _, e := range result.Column("energy") {
		assert.GreaterOrEqual(t, e, -2.0)
		assert.LessOrEqual(t, e, 2.0)
	}
	assert.Equal(t, 200.0, result.Summary["mcs"])
	assert.Greater(t, result.Summary["acceptance"], 0.0)
	assert.Contains(t, result.Metrics, "mean_energy")
	assert.Contains(t, result.Metrics, "tau_energy")
	assert.InDelta(t, result.Summary["mean_energy"], result.Metrics["mean_energy"], 0.5)
}

func TestRunPottsWolff(t *testing.T) {
	cfg := config.GetPreset("potts", "q3")
	cfg.Spin.Lx, cfg.Spin.Ly = 8, 8
	cfg.Steps, cfg.Warmup, cfg.SampleEvery = 100, 10, 5

	exp := New(cfg)
	require.NoError(t, exp.Setup())
	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	for _, m := range result.Column("order") {
		assert.GreaterOrEqual(t, m, 0.0)
		assert.LessOrEqual(t, m, 1.0)
	}
	for _, s := range result.Column("staggered") {
		assert.Zero(t, s)
	}
}

func TestSetupRejectsBadSpinConfigs(t *testing.T) {
	cfg := smallIsing()
	cfg.Spin.Dynamics = "wolff"
	cfg.Spin.J = -1
	err := New(cfg).Setup()
	require.ErrorIs(t, err, spin.ErrWolffAntiferro)

	cfg = smallIsing()
	cfg.Spin.Dynamics = "wolff"
	cfg.Spin.H = 0.5
	require.ErrorIs(t, New(cfg).Setup(), spin.ErrWolffField)

	cfg = smallIsing()
	cfg.Spin.Topology = "hexagonal"
	require.ErrorIs(t, New(cfg).Setup(), lattice.ErrUnknownTopology)

	cfg = smallIsing()
	cfg.Spin.T = -1
	require.ErrorIs(t, New(cfg).Setup(), spin.ErrInvalidConfig)

	cfg = smallIsing()
	cfg.Model = "xy"
	require.ErrorIs(t, New(cfg).Setup(), config.ErrInvalid)
}

func TestRunBeforeSetup(t *testing.T) {
	_, err := New(smallIsing()).Run(context.Background())
	require.Error(t, err)
}

func TestPercolationRealisations(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "percolation"
	cfg.Percolation.L = 4
	cfg.Steps, cfg.Warmup, cfg.SampleEvery = 40, 0, 1

	exp := New(cfg)
	require.NoError(t, exp.Setup())
	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	// 16 sites per realisation: steps 17 and 33 start new ones
	assert.Equal(t, 2.0, result.Summary["realisations"])
	assert.Greater(t, result.Summary["threshold"], 0.0)
	assert.LessOrEqual(t, result.Summary["threshold"], 1.0)

	occ := result.Column("occupation")
	require.Len(t, occ, 40)
	assert.Equal(t, 1.0, occ[15])
	assert.Equal(t, 1.0/16, occ[16])
	assert.Equal(t, 1.0, occ[15+16])
}

func TestHardDiskConservesTemperature(t *testing.T) {
	cfg := config.GetPreset("harddisk", "dilute")
	cfg.Steps, cfg.Warmup, cfg.SampleEvery = 200, 20, 1

	exp := New(cfg)
	require.NoError(t, exp.Setup())
	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Less(t, result.Metrics["drift_temperature"], 1e-9)
	assert.Equal(t, 200.0, result.Summary["collisions"])
	assert.Greater(t, result.Summary["mean_pressure"], 1.0)

	times := result.Column("time")
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i], times[i-1])
	}
}

func TestHardDiskLogsOverlapChecks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	cfg := config.GetPreset("harddisk", "dense")
	cfg.Steps, cfg.Warmup, cfg.SampleEvery = 50, 0, 10

	exp := New(cfg, WithLogger(logger))
	require.NoError(t, exp.Setup())
	_, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "engine ready")
	assert.Contains(t, buf.String(), "run finished")
	assert.NotContains(t, buf.String(), "disks overlap")
}

func TestWangLandauEngine(t *testing.T) {
	cfg := config.GetPreset("wanglandau", "small")
	cfg.WangLandau.CheckEvery = 100
	cfg.Steps = 5

	exp := New(cfg)
	require.NoError(t, exp.Setup())
	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	lnf := result.Column("lnf")
	require.Len(t, lnf, 5)
	for i := 1; i < len(lnf); i++ {
		assert.LessOrEqual(t, lnf[i], lnf[i-1])
	}
	assert.Equal(t, 500.0, result.Summary["sweeps"])
	assert.Greater(t, result.Summary["levels"], 0.0)
}

func TestEnsemble(t *testing.T) {
	cfg := smallIsing()
	cfg.Steps = 50

	results, err := New(cfg).Ensemble(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, 50, r.StepsTaken)
		assert.Contains(t, r.Metrics, "mean_energy")
	}

	_, err = New(cfg).Ensemble(context.Background(), 0)
	require.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exp := New(smallIsing())
	require.NoError(t, exp.Setup())
	_, err := exp.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
