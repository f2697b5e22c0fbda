package harddisk_test

import (
	"bytes"
	"errors"
	"math"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/statmech/internal/harddisk"
)

func denseParams() harddisk.Params {
	return harddisk.Params{N: 16, Lx: 4.6, Ly: 4.6, Temperature: 1, Crystal: true, Seed: 7}
}

var _ = Describe("Engine", func() {
	Describe("construction", func() {
		It("rejects too few disks", func() {
			_, err := harddisk.New(harddisk.Params{N: 1, Lx: 10, Ly: 10, Temperature: 1})
			Expect(errors.Is(err, harddisk.ErrInvalidParams)).To(BeTrue())
		})

		It("rejects densities above close packing", func() {
			_, err := harddisk.New(harddisk.Params{N: 100, Lx: 5, Ly: 5, Temperature: 1})
			Expect(errors.Is(err, harddisk.ErrInvalidParams)).To(BeTrue())
		})

		It("rejects a non-positive temperature", func() {
			_, err := harddisk.New(harddisk.Params{N: 4, Lx: 10, Ly: 10})
			Expect(errors.Is(err, harddisk.ErrInvalidParams)).To(BeTrue())
		})

		It("reports a crystal that does not fit", func() {
			_, err := harddisk.New(harddisk.Params{N: 16, Lx: 3.9, Ly: 3.9, Temperature: 1, Crystal: true})
			Expect(errors.Is(err, harddisk.ErrPlacement)).To(BeTrue())
		})

		It("starts without overlaps at the requested temperature and zero momentum", func() {
			for _, crystal := range []bool{false, true} {
				e, err := harddisk.New(harddisk.Params{N: 16, Lx: 8, Ly: 8, Temperature: 2, Crystal: crystal, Seed: 3})
				Expect(err).NotTo(HaveOccurred())
				Expect(e.CheckOverlap()).To(BeEmpty())
				Expect(e.Temperature()).To(BeNumerically("~", 2, 1e-12))
				px, py := e.Momentum()
				Expect(math.Hypot(px, py)).To(BeNumerically("<", 1e-12))
			}
		})

		It("checks state lengths", func() {
			e, err := harddisk.New(harddisk.DefaultParams())
			Expect(err).NotTo(HaveOccurred())
			err = e.SetState([]float64{1}, []float64{1}, []float64{0}, []float64{0})
			Expect(errors.Is(err, harddisk.ErrStateLength)).To(BeTrue())
		})
	})

	Describe("a head-on collision", func() {
		var e *harddisk.Engine

		BeforeEach(func() {
			var err error
			e, err = harddisk.New(harddisk.Params{N: 2, Lx: 10, Ly: 10, Temperature: 1, Seed: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.SetState(
				[]float64{3, 5}, []float64{5, 5},
				[]float64{1, -1}, []float64{0, 0},
			)).To(Succeed())
		})

		It("reverses both velocities exactly", func() {
			ev, err := e.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.I).To(Equal(0))
			Expect(ev.J).To(Equal(1))
			Expect(ev.Dt).To(Equal(0.5))

			vx, vy := e.Velocities()
			Expect(vx).To(Equal([]float64{-1, 1}))
			Expect(vy).To(Equal([]float64{0, 0}))

			x, _ := e.Positions()
			Expect(x).To(Equal([]float64{3.5, 4.5}))
		})

		It("accumulates a positive virial", func() {
			ev, err := e.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Virial).To(BeNumerically(">", 0))
			Expect(e.MeanPressure()).To(BeNumerically(">", 1))
			Expect(e.MeanFreePath()).To(BeNumerically("~", 0.5, 1e-12))
		})
	})

	Describe("conservation laws", func() {
		It("keeps kinetic energy across every contact", func() {
			e, err := harddisk.New(denseParams())
			Expect(err).NotTo(HaveOccurred())
			for k := 0; k < 200; k++ {
				before := e.KineticEnergy()
				_, err := e.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(math.Abs(e.KineticEnergy()-before) / before).To(BeNumerically("<", 1e-10))
			}
		})

		It("keeps total momentum at zero", func() {
			e, err := harddisk.New(denseParams())
			Expect(err).NotTo(HaveOccurred())
			_, err = e.StepN(500)
			Expect(err).NotTo(HaveOccurred())
			px, py := e.Momentum()
			Expect(math.Hypot(px, py)).To(BeNumerically("<", 1e-9))
		})

		It("keeps four dilute disks at their initial energy for 100 events", func() {
			e, err := harddisk.New(harddisk.Params{N: 4, Lx: 10, Ly: 10, Temperature: 1, Seed: 42})
			Expect(err).NotTo(HaveOccurred())
			initial := e.KineticEnergy()
			_, err = e.StepN(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.KineticEnergy()).To(BeNumerically("~", initial, 1e-9))
		})
	})

	Describe("collision prediction", func() {
		It("matches a full rebuild after every event", func() {
			p := denseParams()
			e, err := harddisk.New(p)
			Expect(err).NotTo(HaveOccurred())
			fresh, err := harddisk.New(p)
			Expect(err).NotTo(HaveOccurred())

			for k := 0; k < 100; k++ {
				_, err := e.Step()
				Expect(err).NotTo(HaveOccurred())

				x, y := e.Positions()
				vx, vy := e.Velocities()
				Expect(fresh.SetState(x, y, vx, vy)).To(Succeed())
				Expect(harddisk.NextCollisionTime(e)).To(
					BeNumerically("~", harddisk.NextCollisionTime(fresh), 1e-8))
			}
			Expect(e.CheckOverlap()).To(BeEmpty())
		})

		It("is reproducible for a fixed seed", func() {
			a, err := harddisk.New(denseParams())
			Expect(err).NotTo(HaveOccurred())
			b, err := harddisk.New(denseParams())
			Expect(err).NotTo(HaveOccurred())

			for k := 0; k < 50; k++ {
				ea, err := a.Step()
				Expect(err).NotTo(HaveOccurred())
				eb, err := b.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(ea).To(Equal(eb))
			}
		})
	})

	Describe("averages", func() {
		var e *harddisk.Engine

		BeforeEach(func() {
			var err error
			e, err = harddisk.New(denseParams())
			Expect(err).NotTo(HaveOccurred())
		})

		It("reads zero before any collision", func() {
			Expect(e.MeanPressure()).To(BeZero())
			Expect(e.MeanFreePath()).To(BeZero())
			Expect(e.MeanFreeTime()).To(BeZero())
			Expect(e.HeatCapacity()).To(BeZero())
			Expect(e.MeanTemperature()).To(BeZero())
		})

		It("produces finite thermodynamics after a run", func() {
			_, err := e.StepN(300)
			Expect(err).NotTo(HaveOccurred())

			Expect(e.Collisions()).To(Equal(300))
			Expect(e.MeanTemperature()).To(BeNumerically("~", 1, 1e-9))
			Expect(e.MeanPressure()).To(BeNumerically(">", 1))
			Expect(e.MeanFreePath()).To(BeNumerically(">", 0))
			Expect(e.MeanFreeTime()).To(BeNumerically(">", 0))
			Expect(e.HeatCapacity()).To(BeNumerically("~", 16, 1e-6))
			Expect(e.VelocityHistogram().Entries()).To(Equal(int64(16 * 300)))
		})

		It("clears the clock and counters", func() {
			_, err := e.StepN(20)
			Expect(err).NotTo(HaveOccurred())
			e.ClearData()
			Expect(e.Time()).To(BeZero())
			Expect(e.Collisions()).To(BeZero())
			Expect(e.VelocityHistogram().Entries()).To(BeZero())
		})

		It("keeps the clock when zeroing averages", func() {
			_, err := e.StepN(20)
			Expect(err).NotTo(HaveOccurred())
			t := e.Time()
			e.ZeroAverages()
			Expect(e.Time()).To(Equal(t))
			Expect(e.Collisions()).To(BeZero())
		})
	})

	Describe("overlap diagnostic", func() {
		It("reports and logs overlapping disks", func() {
			var buf bytes.Buffer
			e, err := harddisk.New(
				harddisk.Params{N: 2, Lx: 10, Ly: 10, Temperature: 1},
				harddisk.WithLogger(log.New(&buf)),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.SetState(
				[]float64{5, 5.5}, []float64{5, 5},
				[]float64{0, 0}, []float64{1, -1},
			)).To(Succeed())

			overlaps := e.CheckOverlap()
			Expect(overlaps).To(HaveLen(1))
			Expect(overlaps[0].I).To(Equal(0))
			Expect(overlaps[0].J).To(Equal(1))
			Expect(overlaps[0].Depth).To(BeNumerically("~", 0.5, 1e-12))
			Expect(buf.String()).To(ContainSubstring("disks overlap"))
		})
	})
})
