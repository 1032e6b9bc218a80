package report

import (
	"fmt"
	"io"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/YuminosukeSato/houseprice/pipeline"
)

var printer = message.NewPrinter(language.English)

// FormatPrice rounds v to whole units and groups thousands: 9200000 -> "9,200,000".
func FormatPrice(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// FormatRatio prints v with three decimals.
func FormatRatio(v float64) string {
	return printer.Sprintf("%.3f", v)
}

// WritePrediction prints a prediction for people rather than programs.
func WritePrediction(w io.Writer, p *pipeline.Prediction) error {
	lines := []string{
		printer.Sprintf("Estimated price: %s", FormatPrice(p.EstimatedPrice)),
		printer.Sprintf("Range:           %s - %s", FormatPrice(p.LowerBound), FormatPrice(p.UpperBound)),
		printer.Sprintf("Confidence:      %.0f%%", p.Confidence*100),
		"Top features:",
	}
	for i, fi := range p.FeatureImportance {
		lines = append(lines, printer.Sprintf("  %d. %-18s %5.1f%%", i+1, fi.Feature, fi.Importance))
	}
	if p.UsedFallback() {
		lines = append(lines, "Note: an unrecognised category was encoded with the fallback code.")
	}
	return writeLines(w, lines)
}

// WriteMetrics prints a metrics report for people rather than programs.
func WriteMetrics(w io.Writer, m pipeline.MetricsReport) error {
	return writeLines(w, []string{
		printer.Sprintf("R²:           %s", FormatRatio(m.RSquared)),
		printer.Sprintf("RMSE:         %s", FormatPrice(m.RMSE)),
		printer.Sprintf("MAE:          %s", FormatPrice(m.MAE)),
		printer.Sprintf("Last trained: %s", m.LastTrained),
	})
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
