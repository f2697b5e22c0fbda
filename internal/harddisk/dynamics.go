package harddisk

import (
	"fmt"
	"math"

	"github.com/san-kum/statmech/internal/lattice"
)

// Step advances the system to the next collision and resolves it.
func (e *Engine) Step() (Event, error) {
	i, dt, ok := e.nextCollision()
	// predictions only look at the nearest images, so an empty list is first
	// rebuilt and then, if still empty, advanced by safe free flights
	for attempt := 0; !ok; attempt++ {
		if attempt > 0 && (attempt > maxDrifts || e.drift() == 0) {
			return Event{}, ErrNoCollision
		}
		e.rebuildLists()
		i, dt, ok = e.nextCollision()
	}
	j := e.partner[i]

	e.move(dt)
	e.time += dt
	e.collisions++
	e.updateFreePath(i, j)
	virial := e.contact(i, j)
	e.virialAcc += virial

	ke := e.KineticEnergy()
	e.keAcc += ke
	e.ke2Acc += ke * ke
	e.steps++

	e.resetList(i, j)
	if e.checkOverlaps {
		e.CheckOverlap()
	}
	for k := 0; k < e.n; k++ {
		e.velocityHist.Fill(e.vx[k])
	}

	return Event{I: i, J: j, Dt: dt, Time: e.time, Virial: virial}, nil
}

// StepN resolves n collisions and returns the last event.
func (e *Engine) StepN(n int) (Event, error) {
	var ev Event
	for k := 0; k < n; k++ {
		var err error
		if ev, err = e.Step(); err != nil {
			return ev, fmt.Errorf("collision %d: %w", k, err)
		}
	}
	return ev, nil
}

// drift moves every disk for as long as no pair can close in by more than half
// a box, which the 3×3 image scan is guaranteed to cover. It returns the
// flight time, 0 when every disk is at rest.
func (e *Engine) drift() float64 {
	var vmax float64
	for k := 0; k < e.n; k++ {
		vmax = math.Max(vmax, math.Hypot(e.vx[k], e.vy[k]))
	}
	if vmax == 0 {
		return 0
	}
	dt := 0.25 * math.Min(e.lx, e.ly) / vmax
	e.move(dt)
	e.time += dt
	return dt
}

// nextCollision returns the disk with the earliest predicted collision.
func (e *Engine) nextCollision() (int, float64, bool) {
	best, tmin := -1, TimeBig
	for k := 0; k < e.n; k++ {
		if e.collisionTime[k] < tmin {
			tmin = e.collisionTime[k]
			best = k
		}
	}
	return best, tmin, best >= 0
}

// checkCollision predicts when i and j touch, scanning the 3×3 periodic images
// of their separation, and records it for i if it is the earliest so far.
func (e *Engine) checkCollision(i, j int) {
	dvx := e.vx[i] - e.vx[j]
	dvy := e.vy[i] - e.vy[j]
	v2 := dvx*dvx + dvy*dvy

	for cx := -1; cx <= 1; cx++ {
		for cy := -1; cy <= 1; cy++ {
			dx := e.x[i] - e.x[j] + float64(cx)*e.lx
			dy := e.y[i] - e.y[j] + float64(cy)*e.ly
			bij := dx*dvx + dy*dvy
			if bij >= 0 {
				continue
			}
			r2 := dx*dx + dy*dy
			discr := bij*bij - v2*(r2-1)
			if discr <= 0 {
				continue
			}
			tij := (-bij - math.Sqrt(discr)) / v2
			if tij < e.collisionTime[i] {
				e.collisionTime[i] = tij
				e.partner[i] = j
			}
		}
	}
}

// uplist recomputes the prediction of i against every j > i.
func (e *Engine) uplist(i int) {
	e.collisionTime[i] = TimeBig
	e.partner[i] = e.n - 1
	for j := i + 1; j < e.n; j++ {
		e.checkCollision(i, j)
	}
}

// downlist lets every i < j pick up a collision with j.
func (e *Engine) downlist(j int) {
	for i := 0; i < j; i++ {
		e.checkCollision(i, j)
	}
}

// resetList refreshes the predictions invalidated by a collision of i and j.
func (e *Engine) resetList(i, j int) {
	for k := 0; k < e.n; k++ {
		p := e.partner[k]
		if k == i || k == j || p == i || p == j {
			e.uplist(k)
		}
	}
	e.downlist(i)
	e.downlist(j)
}

func (e *Engine) rebuildLists() {
	for i := 0; i < e.n; i++ {
		e.uplist(i)
	}
}

func (e *Engine) move(dt float64) {
	for k := 0; k < e.n; k++ {
		if e.collisionTime[k] < TimeBig {
			e.collisionTime[k] -= dt
		}
		e.x[k] = lattice.WrapFloat(e.x[k]+e.vx[k]*dt, e.lx)
		e.y[k] = lattice.WrapFloat(e.y[k]+e.vy[k]*dt, e.ly)
	}
}

// contact exchanges the normal component of the relative velocity of i and j
// and returns the virial of the collision.
func (e *Engine) contact(i, j int) float64 {
	dx := lattice.MinImage(e.x[i]-e.x[j], e.lx)
	dy := lattice.MinImage(e.y[i]-e.y[j], e.ly)
	dvx := e.vx[i] - e.vx[j]
	dvy := e.vy[i] - e.vy[j]

	// r2 is 1 up to rounding at contact
	factor := (dx*dvx + dy*dvy) / (dx*dx + dy*dy)
	delvx := -factor * dx
	delvy := -factor * dy

	e.vx[i] += delvx
	e.vx[j] -= delvx
	e.vy[i] += delvy
	e.vy[j] -= delvy
	return delvx*dx + delvy*dy
}

func (e *Engine) updateFreePath(i, j int) {
	for _, k := range [2]int{i, j} {
		dt := e.time - e.lastCollision[k]
		e.mfpAcc += math.Hypot(e.vx[k]*dt, e.vy[k]*dt)
		e.lastCollision[k] = e.time
	}
}

// Overlap reports two disks closer than one diameter.
type Overlap struct {
	I, J  int
	Depth float64
}

// CheckOverlap lists every pair that overlaps by more than a small tolerance
// and logs each at warn level. Overlaps mean a collision was missed; the
// simulation carries on.
func (e *Engine) CheckOverlap() []Overlap {
	var out []Overlap
	for i := 0; i < e.n-1; i++ {
		for j := i + 1; j < e.n; j++ {
			dx := lattice.MinImage(e.x[i]-e.x[j], e.lx)
			dy := lattice.MinImage(e.y[i]-e.y[j], e.ly)
			r2 := dx*dx + dy*dy
			if r2 >= 1 {
				continue
			}
			if depth := 1 - math.Sqrt(r2); depth > overlapTolerance {
				out = append(out, Overlap{I: i, J: j, Depth: depth})
				e.logger.Warn("disks overlap", "i", i, "j", j, "overlap", depth, "time", e.time)
			}
		}
	}
	return out
}
