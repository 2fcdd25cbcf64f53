package export

import (
	"time"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/model"
)

// ExportRecord is a record together with its derived display tokens. It is
// the row shape of the orders table and of JSON output.
type ExportRecord struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Status         string   `json:"status"`
	SourceLink     string   `json:"sourceLink"`
	Forecast       string   `json:"forecast"`
	ForecastBucket string   `json:"forecastBucket,omitempty"`
	ForecastTone   string   `json:"forecastTone,omitempty"`
	Impact         int      `json:"impact"`
	ImpactClass    string   `json:"impactClass,omitempty"`
	Categories     []string `json:"categories"`

	// Problems lists classification errors; derived tokens are empty then.
	Problems []string `json:"problems,omitempty"`
}

// NewExportRecord derives the display tokens of r. Malformed fields leave
// their token empty and add an entry to Problems.
func NewExportRecord(r model.Record) ExportRecord {
	er := ExportRecord{
		ID:         r.ID,
		Title:      r.Title,
		Summary:    r.Summary,
		Status:     r.Status,
		SourceLink: r.SourceLink,
		Forecast:   string(r.Forecast),
		Impact:     r.Impact,
		Categories: r.CategoryStrings(),
	}
	if b, err := bucket.ForRecord(r); err != nil {
		er.Problems = append(er.Problems, err.Error())
	} else {
		er.ForecastBucket = string(b)
		tone, _ := bucket.ForecastColorClass(b)
		er.ForecastTone = string(tone)
	}
	if in, err := bucket.ImpactOf(r); err != nil {
		er.Problems = append(er.Problems, err.Error())
	} else {
		er.ImpactClass = string(in)
	}
	return er
}

// ExportRecords converts a view for output.
func ExportRecords(records []model.Record) []ExportRecord {
	out := make([]ExportRecord, len(records))
	for i, r := range records {
		out[i] = NewExportRecord(r)
	}
	return out
}

// ExportMeta contains metadata about the export.
type ExportMeta struct {
	Version       string    `json:"version"`
	GeneratedAt   time.Time `json:"generated_at"`
	RecordCount   int       `json:"record_count"`
	Filter        string    `json:"filter"`
	Sort          string    `json:"sort"`
	SchemaVersion int       `json:"schema_version"`
	Title         string    `json:"title,omitempty"`
}

// SQLiteExportConfig configures the SQLite export process.
type SQLiteExportConfig struct {
	// Title is stored in the meta table when set.
	Title string

	// PageSize is the SQLite page size applied before VACUUM.
	PageSize int

	// Optimize runs ANALYZE and VACUUM after the data is written.
	Optimize bool
}

// DefaultSQLiteExportConfig returns sensible defaults for export configuration.
func DefaultSQLiteExportConfig() SQLiteExportConfig {
	return SQLiteExportConfig{
		PageSize: 4096,
		Optimize: true,
	}
}
