// Package analysis post-processes sampled series and sweeps models across
// temperature.
//
//   - [Summarize]: mean, spread, blocking error and autocorrelation time of a series
//   - [PowerSpectrum]: spectral density of a series, for spotting slow modes
//   - [TemperatureScan]: anneal a spin model through a temperature range
//
// # Error bars
//
// Successive Monte Carlo samples are correlated, so the naive standard error
// underestimates the uncertainty. Compare it with the blocking error:
//
//	s := analysis.Summarize("energy", result.Column("energy"), 10, 50)
//	if s.BlockErr > 2*s.NaiveErr {
//	    // samples are strongly correlated; sample less often
//	}
package analysis
