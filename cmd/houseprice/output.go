package main

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/report"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputText = "text"
)

func parseOutput(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case outputJSON, outputYAML, outputText:
		return f, nil
	case "yml":
		return outputYAML, nil
	default:
		return "", errors.NewValidationError("output", "must be json, yaml or text", s)
	}
}

// render writes a prediction or metrics report in the requested format.
func render(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case outputText:
		switch x := v.(type) {
		case *pipeline.Prediction:
			return report.WritePrediction(w, x)
		case pipeline.MetricsReport:
			return report.WriteMetrics(w, x)
		}
		return errors.Newf("no text rendering for %T", v)
	default:
		return errors.Wrap(json.NewEncoder(w).Encode(v), "encode json")
	}
}
