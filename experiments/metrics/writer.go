package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type DealRecord struct {
	ID int
	DealMetric
}

// Summary aggregates the records of one variant.
type Summary struct {
	Variant        string
	Games          int
	Solved         int
	SolveRate      float64
	MeanExpanded   float64
	MeanNodes      float64
	MeanSolution   float64 // Over solved deals only
	MeanDuration   time.Duration
	BudgetExceeded int
}

// Writer stores the results of an experiment run.
type Writer interface {
	WriteDealRecords(records []DealRecord) error
	WriteSummaries(summaries []Summary) error
	Location() string
	Close() error
}

var (
	dealHeader    = []string{"id", "variant", "seed", "hash", "attempts", "outcome", "budget", "expanded", "nodes", "max_bucket", "solution_length", "start_time", "duration"}
	summaryHeader = []string{"variant", "games", "solved", "solve_rate", "mean_expanded", "mean_nodes", "mean_solution", "mean_duration", "budget_exceeded"}
)

type CSVWriter struct {
	baseDir string
}

// NewCSVWriter creates a subfolder of dir named by the current timestamp.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	timestamp := time.Now().UTC().Format("20060102T150405.000Z")
	baseDir := filepath.Join(dir, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &CSVWriter{
		baseDir: baseDir,
	}, nil
}

func (w *CSVWriter) Location() string { return w.baseDir }

func (w *CSVWriter) Close() error { return nil }

func (w *CSVWriter) WriteDealRecords(records []DealRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.Variant,
			strconv.FormatUint(record.Seed, 10),
			strconv.FormatUint(record.Hash, 16),
			strconv.Itoa(record.Attempts),
			string(record.Outcome),
			strconv.Itoa(record.Budget),
			strconv.Itoa(record.Expanded),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.MaxBucket),
			strconv.Itoa(record.SolutionLength),
			record.StartTime.Format(time.RFC3339Nano),
			record.Duration.String(),
		})
	}
	return w.write("deal_records.csv", dealHeader, rows)
}

func (w *CSVWriter) WriteSummaries(summaries []Summary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Variant,
			strconv.Itoa(s.Games),
			strconv.Itoa(s.Solved),
			strconv.FormatFloat(s.SolveRate, 'f', 4, 64),
			strconv.FormatFloat(s.MeanExpanded, 'f', 1, 64),
			strconv.FormatFloat(s.MeanNodes, 'f', 1, 64),
			strconv.FormatFloat(s.MeanSolution, 'f', 1, 64),
			s.MeanDuration.String(),
			strconv.Itoa(s.BudgetExceeded),
		})
	}
	return w.write("summaries.csv", summaryHeader, rows)
}

func (w *CSVWriter) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
