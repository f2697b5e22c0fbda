// Package storage keeps finished runs on disk, one directory per run holding
// metadata.json and series.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/statmech/internal/config"
	"github.com/san-kum/statmech/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Steps     int                `json:"steps"`
	Samples   int                `json:"samples"`
	Series    []string           `json:"series"`
	Config    *config.Config     `json:"config,omitempty"`
	Summary   map[string]float64 `json:"summary"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run and returns its ID, <model>_<unix seconds> with a
// numeric suffix when that directory already exists.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(cfg.Model, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     cfg.Model,
		Timestamp: now,
		Seed:      cfg.Seed,
		Steps:     result.StepsTaken,
		Samples:   len(result.Samples),
		Series:    result.Series,
		Config:    cfg,
		Summary:   result.Summary,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	header := append([]string{"step"}, result.Series...)
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, values := range result.Samples {
		row := []string{strconv.Itoa(result.Steps[i])}
		for _, val := range values {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return runID, w.Error()
}

func (s *Store) newRunDir(model string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", model, now.Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries rebuilds the sampled part of a run. Summary and metrics come from
// the metadata.
func (s *Store) LoadSeries(runID string) (*sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: series.csv has no header", runID)
	}

	result := &sim.Result{
		Engine:     meta.Model,
		Series:     records[0][1:],
		Steps:      make([]int, 0, len(records)-1),
		Samples:    make([][]float64, 0, len(records)-1),
		Summary:    meta.Summary,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}

	for i, record := range records[1:] {
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", runID, i+1, err)
		}
		values := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			values[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", runID, i+1, err)
			}
		}
		result.Steps = append(result.Steps, step)
		result.Samples = append(result.Samples, values)
	}

	return result, nil
}
