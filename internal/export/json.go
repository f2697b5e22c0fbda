// Package export renders finished runs: JSON dumps, PNG/SVG figures through
// gonum/plot and terminal line charts.
package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/statmech/internal/sim"
)

type Data struct {
	Model   string             `json:"model"`
	Steps   int                `json:"steps"`
	Series  []string           `json:"series"`
	Sampled []int              `json:"sampled_at"`
	Samples [][]float64        `json:"samples"`
	Summary map[string]float64 `json:"summary"`
	Metrics map[string]float64 `json:"metrics"`
}

func newData(result *sim.Result) Data {
	return Data{
		Model:   result.Engine,
		Steps:   result.StepsTaken,
		Series:  result.Series,
		Sampled: result.Steps,
		Samples: result.Samples,
		Summary: result.Summary,
		Metrics: result.Metrics,
	}
}

// JSON writes the run as indented JSON.
func JSON(w io.Writer, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newData(result))
}

func JSONFile(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return JSON(file, result)
}
