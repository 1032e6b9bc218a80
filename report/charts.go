// Package report renders charts and human-readable summaries of a trained pipeline.
package report

import (
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Default chart size.
const (
	ChartWidth  = 8 * vg.Inch
	ChartHeight = 5 * vg.Inch
)

// ImportanceSource is satisfied by *pipeline.Pipeline.
type ImportanceSource interface {
	FeatureImportance() ([]pipeline.FeatureImportance, error)
}

// EvaluationSource is satisfied by *pipeline.Pipeline.
type EvaluationSource interface {
	Evaluation() (pipeline.Evaluation, error)
}

// ImportancePlot draws a horizontal bar per feature, most important at the top.
func ImportancePlot(items []pipeline.FeatureImportance) (*plot.Plot, error) {
	if len(items) == 0 {
		return nil, errors.NewValueError("report.ImportancePlot", "no features to plot")
	}

	n := len(items)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, fi := range items {
		// 上から重要度順に並べるため逆順にする
		values[n-1-i] = fi.Importance
		names[n-1-i] = fi.Feature
	}

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, errors.Wrap(err, "build bar chart")
	}
	bars.Horizontal = true

	p := plot.New()
	p.Title.Text = "Feature importance"
	p.X.Label.Text = "share of |coefficient| (%)"
	p.Add(bars, plotter.NewGrid())
	p.NominalY(names...)
	return p, nil
}

// ResidualPlot scatters held-out predicted against actual prices, in millions,
// with the y = x reference line.
func ResidualPlot(ev pipeline.Evaluation) (*plot.Plot, error) {
	if len(ev.Actual) == 0 || len(ev.Actual) != len(ev.Predicted) {
		return nil, errors.NewValueError("report.ResidualPlot", "evaluation has no held-out points")
	}

	pts := make(plotter.XYs, len(ev.Actual))
	for i := range ev.Actual {
		pts[i].X = ev.Actual[i] / 1e6
		pts[i].Y = ev.Predicted[i] / 1e6
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "build scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)

	identity := plotter.NewFunction(func(x float64) float64 { return x })
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p := plot.New()
	p.Title.Text = "Held-out predictions (R² " + FormatRatio(ev.R2) + ")"
	p.X.Label.Text = "actual price (millions)"
	p.Y.Label.Text = "predicted price (millions)"
	p.Add(plotter.NewGrid(), scatter, identity)
	p.Legend.Add("predictions", scatter)
	p.Legend.Add("y = x", identity)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// WriteChart encodes p in the given format (png, svg, pdf, ...).
func WriteChart(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(ChartWidth, ChartHeight, strings.ToLower(format))
	if err != nil {
		return errors.Wrapf(err, "unsupported chart format %q", format)
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "write chart")
}

// SaveImportanceChart writes the importance chart of src to path; the format
// follows the file extension.
func SaveImportanceChart(src ImportanceSource, path string) error {
	items, err := src.FeatureImportance()
	if err != nil {
		return err
	}
	p, err := ImportancePlot(items)
	if err != nil {
		return err
	}
	return save(p, path)
}

// SaveResidualChart writes the predicted-vs-actual chart of src to path.
func SaveResidualChart(src EvaluationSource, path string) error {
	ev, err := src.Evaluation()
	if err != nil {
		return err
	}
	p, err := ResidualPlot(ev)
	if err != nil {
		return err
	}
	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if filepath.Ext(path) == "" {
		return errors.NewValidationError("path", "needs a file extension such as .png or .svg", path)
	}
	return errors.Wrapf(p.Save(ChartWidth, ChartHeight, path), "save chart %s", path)
}
