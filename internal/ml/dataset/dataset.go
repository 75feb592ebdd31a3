// internal/ml/dataset/dataset.go

// Package dataset loads the historical labeled churn table consumed by the
// training orchestrator.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"churnshield/internal/common/errors"
	"churnshield/internal/models"
)

// LabelColumn is the expected binary outcome column.
const LabelColumn = "Churn"

// Table is an in-memory tabular dataset. Row values are raw strings; the
// cleaner performs all type coercion so training and serving share one code
// path.
type Table struct {
	Columns []string
	Rows    []models.RawRecord
}

// LoadCSV reads a comma-separated table with a header row. A missing file is
// the DATASET_NOT_FOUND error that aborts training.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewDatasetNotFoundError(path)
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	t := &Table{Columns: header}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// a malformed row must abort the run: silently truncating the
			// table would train on partial data with no signal
			return nil, fmt.Errorf("failed to read dataset row %d: %w", len(t.Rows)+2, err)
		}
		row := make(models.RawRecord, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}
	return t, nil
}

// SplitLabel separates the label column from the feature rows, mapping
// Yes/No to 1/0. Any other label value aborts training.
func (t *Table) SplitLabel() ([]models.RawRecord, []int, error) {
	hasLabel := false
	for _, c := range t.Columns {
		if c == LabelColumn {
			hasLabel = true
			break
		}
	}
	if !hasLabel {
		return nil, nil, errors.NewLabelUnmappableError(fmt.Sprintf("column %q not found", LabelColumn))
	}

	features := make([]models.RawRecord, len(t.Rows))
	labels := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		raw, _ := row[LabelColumn].(string)
		switch raw {
		case "Yes":
			labels[i] = 1
		case "No":
			labels[i] = 0
		default:
			return nil, nil, errors.NewLabelUnmappableError(
				fmt.Sprintf("row %d has label %q, expected Yes or No", i, raw))
		}

		feat := make(models.RawRecord, len(row))
		for k, v := range row {
			if k != LabelColumn {
				feat[k] = v
			}
		}
		features[i] = feat
	}

	return features, labels, nil
}

// StratifiedSplit partitions row indices into train and test sets with the
// given test fraction, preserving the label ratio in both folds. The seed
// fixes the shuffle for reproducible training runs.
func StratifiedSplit(labels []int, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	var pos, neg []int
	for i, l := range labels {
		if l == 1 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pos), func(i, j int) { pos[i], pos[j] = pos[j], pos[i] })
	rng.Shuffle(len(neg), func(i, j int) { neg[i], neg[j] = neg[j], neg[i] })

	posTest := int(float64(len(pos)) * testFraction)
	negTest := int(float64(len(neg)) * testFraction)

	testIdx = append(testIdx, pos[:posTest]...)
	testIdx = append(testIdx, neg[:negTest]...)
	trainIdx = append(trainIdx, pos[posTest:]...)
	trainIdx = append(trainIdx, neg[negTest:]...)

	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return trainIdx, testIdx
}
