package callbacks

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"
)

// Float is a float64 that marshals NaN as JSON null, since encoding/json
// rejects NaN outright.
type Float float64

func (v Float) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(v)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(v))
}

// nanMean returns the mean of the non-NaN values in sample, or NaN when no
// such value exists.
func nanMean(sample []float64) float64 {
	filtered := make([]float64, 0, len(sample))
	for _, v := range sample {
		if !math.IsNaN(v) {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return math.NaN()
	}
	mean, err := stats.Mean(filtered)
	if err != nil {
		return math.NaN()
	}
	return mean
}

// columnMeans returns the NaN-aware mean of each of the first width columns
// across rows.
func columnMeans(rows [][]float64, width int) []float64 {
	means := make([]float64, width)
	column := make([]float64, 0, len(rows))
	for i := range means {
		column = column[:0]
		for _, row := range rows {
			if i < len(row) {
				column = append(column, row[i])
			}
		}
		means[i] = nanMean(column)
	}
	return means
}

func anyNaN(sample []float64) bool {
	for _, v := range sample {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func allRowsNaN(rows [][]float64) bool {
	for _, row := range rows {
		for _, v := range row {
			if !math.IsNaN(v) {
				return false
			}
		}
	}
	return true
}

// summarize returns mean, min, and max of sample, or NaN for all three when
// the sample is empty.
func summarize(sample []float64) (mean, min, max float64) {
	if len(sample) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	mean, _ = stats.Mean(sample)
	min, _ = stats.Min(sample)
	max, _ = stats.Max(sample)
	return mean, min, max
}

// sum returns the sum of sample, zero when empty.
func sum(sample []float64) float64 {
	total, err := stats.Sum(sample)
	if err != nil {
		return 0
	}
	return total
}
