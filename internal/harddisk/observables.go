package harddisk

import "github.com/san-kum/statmech/internal/stats"

func (e *Engine) N() int                  { return e.n }
func (e *Engine) Time() float64           { return e.time }
func (e *Engine) Collisions() int         { return e.collisions }
func (e *Engine) Box() (float64, float64) { return e.lx, e.ly }

// KineticEnergy is Σ v²/2.
func (e *Engine) KineticEnergy() float64 {
	var ke float64
	for i := 0; i < e.n; i++ {
		ke += e.vx[i]*e.vx[i] + e.vy[i]*e.vy[i]
	}
	return ke / 2
}

// Momentum is the total momentum vector.
func (e *Engine) Momentum() (px, py float64) {
	for i := 0; i < e.n; i++ {
		px += e.vx[i]
		py += e.vy[i]
	}
	return px, py
}

// Temperature is the instantaneous kinetic energy per disk.
func (e *Engine) Temperature() float64 {
	return e.KineticEnergy() / float64(e.n)
}

// MeanTemperature averages the kinetic energy per disk over collisions.
func (e *Engine) MeanTemperature() float64 {
	if e.steps == 0 {
		return 0
	}
	return e.keAcc / float64(e.n*e.steps)
}

// MeanPressure returns PV/NkT = 1 + ½·virial/(t·N·<T>) over the averaging
// window.
func (e *Engine) MeanPressure() float64 {
	elapsed := e.time - e.since
	t := e.MeanTemperature()
	if elapsed <= 0 || t == 0 {
		return 0
	}
	return 1 + 0.5*(e.virialAcc/elapsed)/(float64(e.n)*t)
}

// MeanFreePath is the mean distance travelled between collisions.
func (e *Engine) MeanFreePath() float64 {
	if e.collisions == 0 {
		return 0
	}
	return e.mfpAcc / 2 / float64(e.collisions)
}

// MeanFreeTime is N·t/collisions.
func (e *Engine) MeanFreeTime() float64 {
	if e.collisions == 0 {
		return 0
	}
	return float64(e.n) * (e.time - e.since) / float64(e.collisions)
}

// HeatCapacity estimates C from temperature fluctuations with the
// microcanonical relation σ²_T/<T>² = (1/N)(1 - N/C) for two dimensions. With
// the kinetic energy exactly conserved this returns N.
func (e *Engine) HeatCapacity() float64 {
	if e.steps == 0 {
		return 0
	}
	n := float64(e.n)
	meanKE := e.keAcc / float64(e.steps)
	varKE := e.ke2Acc/float64(e.steps) - meanKE*meanKE
	if meanKE == 0 {
		return 0
	}
	// relative fluctuations of T and KE are the same
	denom := 1 - n*varKE/(meanKE*meanKE)
	if denom <= 0 {
		return 0
	}
	return n / denom
}

// Positions returns copies of the disk centres.
func (e *Engine) Positions() (x, y []float64) {
	return append([]float64(nil), e.x...), append([]float64(nil), e.y...)
}

// Velocities returns copies of the disk velocities.
func (e *Engine) Velocities() (vx, vy []float64) {
	return append([]float64(nil), e.vx...), append([]float64(nil), e.vy...)
}

// VelocityHistogram is the distribution of v_x sampled after every collision.
func (e *Engine) VelocityHistogram() *stats.Histogram { return e.velocityHist }
