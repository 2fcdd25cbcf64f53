package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/eoview/pkg/bucket"
	"github.com/vanderheijden86/eoview/pkg/metrics"
	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/stats"
)

// ErrNoRecords is returned when a chart is requested for an empty view.
var ErrNoRecords = errors.New("no records to chart")

// ChartOptions controls chart export.
type ChartOptions struct {
	Path    string         // Output path; format inferred from extension when Format empty
	Format  string         // "svg" or "png" (case-insensitive)
	Title   string         // Rendered in the header
	Records []model.Record // The view to chart
}

// SaveChart renders the forecast bucket and impact histograms of a view.
func SaveChart(opts ChartOptions) error {
	defer metrics.Timer(metrics.Export)()

	if len(opts.Records) == 0 {
		return ErrNoRecords
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		case ".svg":
			format = "svg"
		default:
			format = "svg"
			if filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildChartLayout(opts.Title, stats.Compute(opts.Records))
	if format == "png" {
		return renderChartPNG(opts.Path, layout)
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := renderChartSVG(f, layout); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- layout ----------------------------------------------------------------

const (
	chartWidth   = 640
	chartHeight  = 360
	headerHeight = 64.0
	plotTop      = 96.0
	plotBottom   = 312.0
	barWidth     = 56.0
	barGap       = 18.0
)

var (
	colorBackdrop = color.RGBA{0xF7, 0xF7, 0xF9, 0xFF}
	colorHeaderBG = color.RGBA{0x1F, 0x29, 0x37, 0xFF}
	colorHeader   = color.RGBA{0xF9, 0xFA, 0xFB, 0xFF}
	colorText     = color.RGBA{0x11, 0x18, 0x27, 0xFF}
	colorSubtle   = color.RGBA{0x6B, 0x72, 0x80, 0xFF}
	colorAxis     = color.RGBA{0xD1, 0xD5, 0xDB, 0xFF}
	colorHigh     = color.RGBA{0xDC, 0x26, 0x26, 0xFF}
	colorMedium   = color.RGBA{0xF5, 0x9E, 0x0B, 0xFF}
	colorLow      = color.RGBA{0x16, 0xA3, 0x4A, 0xFF}
)

// Impact bars shade from light to dark, matching the intensity tokens.
var impactColors = [bucket.MaxImpact]color.RGBA{
	{0xDB, 0xEA, 0xFE, 0xFF},
	{0x93, 0xC5, 0xFD, 0xFF},
	{0x3B, 0x82, 0xF6, 0xFF},
	{0x1D, 0x4E, 0xD8, 0xFF},
	{0x1E, 0x3A, 0x8A, 0xFF},
}

type chartBar struct {
	Label string
	Count int
	Color color.RGBA
	X, Y  float64
	W, H  float64
}

type chartLayout struct {
	Title    string
	Subtitle string
	Bars     []chartBar
	Groups   []chartGroup
}

type chartGroup struct {
	Label string
	X     float64
}

func buildChartLayout(title string, s stats.Summary) chartLayout {
	if title == "" {
		title = "Executive orders by litigation forecast and impact"
	}
	l := chartLayout{
		Title:    title,
		Subtitle: fmt.Sprintf("%d orders · mean forecast %.1f%% · mean impact %.2f", s.Total, s.ForecastMean, s.ImpactMean),
	}
	if s.Malformed > 0 {
		l.Subtitle += fmt.Sprintf(" · %d unclassifiable", s.Malformed)
	}

	var bars []chartBar
	x := 40.0
	l.Groups = append(l.Groups, chartGroup{Label: "Forecast", X: x})
	for _, bc := range s.BucketCounts() {
		bars = append(bars, chartBar{Label: string(bc.Bucket), Count: bc.Count, Color: bucketColor(bc.Bucket), X: x, W: barWidth})
		x += barWidth + barGap
	}
	x += 2 * barGap
	l.Groups = append(l.Groups, chartGroup{Label: "Impact", X: x})
	for i, n := range s.ImpactCounts() {
		bars = append(bars, chartBar{Label: fmt.Sprintf("%d", i+1), Count: n, Color: impactColors[i], X: x, W: barWidth * 0.6})
		x += barWidth*0.6 + barGap
	}

	peak := 0
	for _, b := range bars {
		if b.Count > peak {
			peak = b.Count
		}
	}
	for i := range bars {
		h := 0.0
		if peak > 0 {
			h = float64(bars[i].Count) / float64(peak) * (plotBottom - plotTop)
		}
		bars[i].H = h
		bars[i].Y = plotBottom - h
	}
	l.Bars = bars
	return l
}

func bucketColor(b bucket.ForecastBucket) color.RGBA {
	switch b {
	case bucket.High:
		return colorHigh
	case bucket.Medium:
		return colorMedium
	default:
		return colorLow
	}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// --- rendering -------------------------------------------------------------

func renderChartPNG(path string, l chartLayout) error {
	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(12, 12, chartWidth-24, headerHeight-8, 8)
	dc.Fill()
	dc.SetColor(colorHeader)
	dc.DrawStringAnchored(l.Title, 28, 32, 0, 0.5)
	dc.DrawStringAnchored(l.Subtitle, 28, 52, 0, 0.5)

	dc.SetColor(colorSubtle)
	for _, g := range l.Groups {
		dc.DrawStringAnchored(g.Label, g.X, plotTop-12, 0, 0.5)
	}

	dc.SetColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawLine(24, plotBottom, chartWidth-24, plotBottom)
	dc.Stroke()

	for _, b := range l.Bars {
		w := b.W
		if b.H > 0 {
			dc.SetColor(b.Color)
			dc.DrawRectangle(b.X, b.Y, w, b.H)
			dc.Fill()
		}
		dc.SetColor(colorText)
		dc.DrawStringAnchored(fmt.Sprintf("%d", b.Count), b.X+w/2, b.Y-8, 0.5, 0.5)
		dc.DrawStringAnchored(b.Label, b.X+w/2, plotBottom+16, 0.5, 0.5)
	}

	return dc.SavePNG(path)
}

func renderChartSVG(w io.Writer, l chartLayout) error {
	canvas := svg.New(w)
	canvas.Start(chartWidth, chartHeight)
	canvas.Rect(0, 0, chartWidth, chartHeight, "fill:"+css(colorBackdrop))
	canvas.Roundrect(12, 12, chartWidth-24, int(headerHeight-8), 8, 8, "fill:"+css(colorHeaderBG))
	canvas.Text(28, 36, l.Title, fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorHeader)))
	canvas.Text(28, 56, l.Subtitle, fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorHeader)))

	for _, g := range l.Groups {
		canvas.Text(int(g.X), int(plotTop-12), g.Label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}
	canvas.Line(24, int(plotBottom), chartWidth-24, int(plotBottom), fmt.Sprintf("stroke:%s;stroke-width:1", css(colorAxis)))

	label := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorText))
	for _, b := range l.Bars {
		w := b.W
		if b.H > 0 {
			canvas.Rect(int(b.X), int(b.Y), int(w), int(b.H), "fill:"+css(b.Color))
		}
		cx := int(b.X + w/2)
		canvas.Text(cx, int(b.Y-6), fmt.Sprintf("%d", b.Count), label)
		canvas.Text(cx, int(plotBottom+18), b.Label, label)
	}

	canvas.End()
	return nil
}
