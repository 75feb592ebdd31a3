// internal/ml/encoder/encoder.go

// Package encoder converts canonical records into fixed-width numeric
// vectors. All statistics (means, standard deviations, medians, category
// vocabularies, modes) are frozen at fit time; encoding is a pure function
// of those parameters. The emitted column order is the single source of
// truth for the classifier and the attribution engine, both of which index
// feature vectors positionally.
package encoder

import (
	"fmt"
	"math"
	"sort"

	"churnshield/internal/models"
)

// Default feature sets for the Telco churn table.
var (
	DefaultNumericFeatures = []string{"tenure", "MonthlyCharges", "TotalCharges"}

	DefaultCategoricalFeatures = []string{
		"gender", "SeniorCitizen", "Partner", "Dependents", "PhoneService",
		"MultipleLines", "InternetService", "OnlineSecurity", "OnlineBackup",
		"DeviceProtection", "TechSupport", "StreamingTV", "StreamingMovies",
		"Contract", "PaperlessBilling", "PaymentMethod",
	}
)

// NumericStats holds the frozen per-feature scaling statistics.
type NumericStats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
}

// CategoricalStats holds the frozen vocabulary and imputation mode for one
// categorical feature. Categories are stored sorted so the one-hot column
// order is reproducible.
type CategoricalStats struct {
	Categories []string `json:"categories"`
	Mode       string   `json:"mode"`
}

// Params is the fitted encoder state. Immutable after Fit.
type Params struct {
	NumericFeatures     []string                    `json:"numeric_features"`
	CategoricalFeatures []string                    `json:"categorical_features"`
	Numeric             map[string]NumericStats     `json:"numeric"`
	Categorical         map[string]CategoricalStats `json:"categorical"`
	Columns             []string                    `json:"columns"`
}

// Fit computes scaling statistics and category vocabularies from cleaned
// training records and freezes the output column order.
func Fit(records []*models.CanonicalRecord, numericFeatures, categoricalFeatures []string) (*Params, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("cannot fit encoder on empty table")
	}

	p := &Params{
		NumericFeatures:     append([]string(nil), numericFeatures...),
		CategoricalFeatures: append([]string(nil), categoricalFeatures...),
		Numeric:             make(map[string]NumericStats, len(numericFeatures)),
		Categorical:         make(map[string]CategoricalStats, len(categoricalFeatures)),
	}

	for _, name := range numericFeatures {
		values := make([]float64, 0, len(records))
		for _, rec := range records {
			if v, ok := rec.Numeric[name]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("numeric feature %q has no observed values", name)
		}
		p.Numeric[name] = fitNumeric(values)
	}

	for _, name := range categoricalFeatures {
		counts := make(map[string]int)
		for _, rec := range records {
			if v, ok := rec.Categorical[name]; ok {
				counts[v]++
			}
		}
		if len(counts) == 0 {
			return nil, fmt.Errorf("categorical feature %q has no observed values", name)
		}
		p.Categorical[name] = fitCategorical(counts)
	}

	p.Columns = buildColumns(p)
	return p, nil
}

func fitNumeric(values []float64) NumericStats {
	n := float64(len(values))

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var sqSum float64
	for _, v := range values {
		d := v - mean
		sqSum += d * d
	}
	std := math.Sqrt(sqSum / n)
	if std == 0 {
		// constant feature: scale by 1 so encoding stays finite
		std = 1
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return NumericStats{Mean: mean, Std: std, Median: median}
}

func fitCategorical(counts map[string]int) CategoricalStats {
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	// most frequent value; lexicographically smallest on ties, so the fitted
	// mode does not depend on map iteration order
	mode := categories[0]
	for _, c := range categories {
		if counts[c] > counts[mode] {
			mode = c
		}
	}

	return CategoricalStats{Categories: categories, Mode: mode}
}

func buildColumns(p *Params) []string {
	columns := make([]string, 0, len(p.NumericFeatures))
	columns = append(columns, p.NumericFeatures...)
	for _, name := range p.CategoricalFeatures {
		for _, cat := range p.Categorical[name].Categories {
			columns = append(columns, name+"_"+cat)
		}
	}
	return columns
}

// Schema returns the ordered output column names.
func (p *Params) Schema() []string {
	return p.Columns
}

// Encode produces the fixed-width feature vector for one canonical record.
// Missing numeric values take the fit-time median, missing categorical
// values take the fit-time mode, and a category never seen at fit time maps
// to the all-zero indicator block for its feature.
func (p *Params) Encode(rec *models.CanonicalRecord) ([]float64, error) {
	vec := make([]float64, 0, len(p.Columns))

	for _, name := range p.NumericFeatures {
		stats, ok := p.Numeric[name]
		if !ok {
			return nil, fmt.Errorf("encoder has no statistics for numeric feature %q", name)
		}
		v, present := rec.Numeric[name]
		if !present {
			v = stats.Median
		}
		vec = append(vec, (v-stats.Mean)/stats.Std)
	}

	for _, name := range p.CategoricalFeatures {
		stats, ok := p.Categorical[name]
		if !ok {
			return nil, fmt.Errorf("encoder has no vocabulary for categorical feature %q", name)
		}
		v, present := rec.Categorical[name]
		if !present {
			v = stats.Mode
		}
		block := make([]float64, len(stats.Categories))
		for i, cat := range stats.Categories {
			if cat == v {
				block[i] = 1
				break
			}
		}
		vec = append(vec, block...)
	}

	if len(vec) != len(p.Columns) {
		return nil, fmt.Errorf("encoded vector length %d does not match schema length %d", len(vec), len(p.Columns))
	}
	return vec, nil
}
