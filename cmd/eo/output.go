package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/eoview/pkg/export"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/stats"
)

// writeJSON prints the view as an array of export records, which the loader
// can read back.
func writeJSON(w io.Writer, records []model.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export.ExportRecords(records))
}

func writeStatsJSON(w io.Writer, records []model.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats.Compute(records))
}

func writeStats(w io.Writer, records []model.Record, vocab model.Vocabulary) error {
	s := stats.Compute(records)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Orders\t%d\n", s.Total)
	if s.Malformed > 0 {
		fmt.Fprintf(tw, "Malformed\t%d\n", s.Malformed)
	}
	if s.Total-s.Malformed > 0 {
		fmt.Fprintf(tw, "Forecast\tmean %.1f%%  median %.1f%%  stddev %.1f  range %.0f-%.0f%%\n",
			s.ForecastMean, s.ForecastMedian, s.ForecastStdDev, s.ForecastMin, s.ForecastMax)
		fmt.Fprintf(tw, "Impact\tmean %.2f\n", s.ImpactMean)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "BUCKET\tCOUNT\tSHARE")
	for _, bc := range s.BucketCounts() {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", bc.Bucket, bc.Count, 100*s.Share(bc.Count))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "IMPACT\tCOUNT\tSHARE")
	for i, n := range s.ImpactCounts() {
		fmt.Fprintf(tw, "%d\t%d\t%.1f%%\n", i+1, n, 100*s.Share(n))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "CATEGORY\tCOUNT\t")
	for _, cc := range s.CategoryCounts(vocab) {
		fmt.Fprintf(tw, "%s\t%d\t\n", cc.Category, cc.Count)
	}
	return tw.Flush()
}
