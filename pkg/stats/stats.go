// Package stats summarizes a record set: how records distribute over the
// forecast buckets, impact levels and categories, plus descriptive statistics
// of the numeric fields. Records whose forecast or impact cannot be
// classified are counted separately and left out of the numeric statistics.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// Summary is the aggregate view of a record set.
type Summary struct {
	Total int `json:"total"`

	// Malformed counts records whose forecast or impact is unclassifiable.
	Malformed    int   `json:"malformed"`
	MalformedIDs []int `json:"malformed_ids,omitempty"`

	Buckets    map[bucket.ForecastBucket]int `json:"buckets"`
	Impacts    map[int]int                   `json:"impacts"`
	Categories map[model.Category]int        `json:"categories"`

	ForecastMean   float64 `json:"forecast_mean"`
	ForecastStdDev float64 `json:"forecast_stddev"`
	ForecastMedian float64 `json:"forecast_median"`
	ForecastMin    float64 `json:"forecast_min"`
	ForecastMax    float64 `json:"forecast_max"`
	ImpactMean     float64 `json:"impact_mean"`
}

// BucketCount is one row of the bucket histogram.
type BucketCount struct {
	Bucket bucket.ForecastBucket `json:"bucket"`
	Count  int                   `json:"count"`
}

// CategoryCount is one row of the category histogram.
type CategoryCount struct {
	Category model.Category `json:"category"`
	Count    int            `json:"count"`
}

// Compute summarizes records. A record with several categories is counted
// once per category.
func Compute(records []model.Record) Summary {
	s := Summary{
		Total:      len(records),
		Buckets:    make(map[bucket.ForecastBucket]int, 3),
		Impacts:    make(map[int]int, bucket.MaxImpact),
		Categories: make(map[model.Category]int),
	}

	forecasts := make([]float64, 0, len(records))
	impacts := make([]float64, 0, len(records))
	for _, r := range records {
		for _, c := range r.Categories {
			s.Categories[c]++
		}

		v, ferr := bucket.ForecastValue(r)
		_, ierr := bucket.ImpactOf(r)
		if ferr != nil || ierr != nil {
			s.Malformed++
			s.MalformedIDs = append(s.MalformedIDs, r.ID)
		}
		if ferr == nil {
			b, _ := bucket.ForecastBucketOf(v)
			s.Buckets[b]++
			forecasts = append(forecasts, v)
		}
		if ierr == nil {
			s.Impacts[r.Impact]++
			impacts = append(impacts, float64(r.Impact))
		}
	}

	if len(forecasts) > 0 {
		s.ForecastMean, s.ForecastStdDev = stat.MeanStdDev(forecasts, nil)
		if len(forecasts) == 1 {
			s.ForecastStdDev = 0
		}
		sort.Float64s(forecasts)
		s.ForecastMedian = stat.Quantile(0.5, stat.Empirical, forecasts, nil)
		s.ForecastMin = forecasts[0]
		s.ForecastMax = forecasts[len(forecasts)-1]
	}
	if len(impacts) > 0 {
		s.ImpactMean = stat.Mean(impacts, nil)
	}
	return s
}

// BucketCounts returns the bucket histogram in display order, zero rows included.
func (s Summary) BucketCounts() []BucketCount {
	out := make([]BucketCount, 0, 3)
	for _, b := range bucket.AllBuckets() {
		out = append(out, BucketCount{Bucket: b, Count: s.Buckets[b]})
	}
	return out
}

// ImpactCounts returns the count per impact level, index 0 holding level 1.
func (s Summary) ImpactCounts() []int {
	out := make([]int, 0, bucket.MaxImpact)
	for _, lvl := range bucket.Levels() {
		out = append(out, s.Impacts[lvl])
	}
	return out
}

// CategoryCounts returns the category histogram, most frequent first. Ties
// keep vocabulary order; tokens outside vocab follow alphabetically.
func (s Summary) CategoryCounts(vocab model.Vocabulary) []CategoryCount {
	rank := make(map[model.Category]int, vocab.Len())
	for i, c := range vocab.Categories() {
		rank[c] = i
	}
	out := make([]CategoryCount, 0, len(s.Categories))
	for c, n := range s.Categories {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		ri, iok := rank[out[i].Category]
		rj, jok := rank[out[j].Category]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Share returns n as a fraction of the total, or 0 for an empty summary.
func (s Summary) Share(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) / float64(s.Total)
}
