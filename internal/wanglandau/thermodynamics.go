package wanglandau

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Normalize shifts every ln g so that ln Σ g equals lnTotal.
func Normalize(levels []Level, lnTotal float64) {
	if len(levels) == 0 {
		return
	}
	shift := lnTotal - floats.LogSumExp(lnGs(levels))
	for i := range levels {
		levels[i].LnG += shift
	}
}

// LogZ returns ln Σ g(E) e^{-βE} over the given levels.
func LogZ(levels []Level, beta float64) float64 {
	if len(levels) == 0 {
		return math.Inf(-1)
	}
	terms := make([]float64, len(levels))
	for i, l := range levels {
		terms[i] = l.LnG - beta*float64(l.E)
	}
	return floats.LogSumExp(terms)
}

// MeanEnergy returns <E> at temperature T.
func MeanEnergy(levels []Level, T float64) float64 {
	e, _ := moments(levels, 1/T)
	return e
}

// HeatCapacity returns (<E²>-<E>²)/T², the total heat capacity at T.
func HeatCapacity(levels []Level, T float64) float64 {
	beta := 1 / T
	e, e2 := moments(levels, beta)
	return (e2 - e*e) * beta * beta
}

// FreeEnergy returns F = -T ln Z.
func FreeEnergy(levels []Level, T float64) float64 {
	return -T * LogZ(levels, 1/T)
}

// Probabilities returns P(E) at temperature T for each level.
func Probabilities(levels []Level, T float64) []float64 {
	beta := 1 / T
	lnZ := LogZ(levels, beta)
	out := make([]float64, len(levels))
	for i, l := range levels {
		out[i] = math.Exp(l.LnG - beta*float64(l.E) - lnZ)
	}
	return out
}

func moments(levels []Level, beta float64) (e, e2 float64) {
	for i, p := range Probabilities(levels, 1/beta) {
		E := float64(levels[i].E)
		e += E * p
		e2 += E * E * p
	}
	return e, e2
}

func lnGs(levels []Level) []float64 {
	out := make([]float64, len(levels))
	for i, l := range levels {
		out[i] = l.LnG
	}
	return out
}
