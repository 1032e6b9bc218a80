package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

const referenceRequest = `{"squareFootage":2500,"yearBuilt":2015,"bedrooms":4,"bathrooms":3,"garage":2,
"propertyType":"single-family","neighborhood":"suburbs","hasPool":true,"hasFireplace":true,
"hasHardwoodFloors":true,"recentlyUpdated":false}`

// execute runs the CLI in a clean working directory and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMetricsCommand(t *testing.T) {
	out, err := execute(t, "", "--metrics", "--log-level", "error")
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Len(t, m, 4)
	assert.Equal(t, "2024-12-16", m["lastTrained"])

	r2 := m["rSquared"].(float64)
	assert.Greater(t, r2, 0.8)
	assert.LessOrEqual(t, r2, 1.0)
	assert.Greater(t, m["rmse"].(float64), 0.0)
	assert.Greater(t, m["mae"].(float64), 0.0)
}

func TestPredictCommand(t *testing.T) {
	out, err := execute(t, referenceRequest, "--log-level", "error")
	require.NoError(t, err)

	var pred pipeline.Prediction
	require.NoError(t, json.Unmarshal([]byte(out), &pred))
	assert.InDelta(t, 0.92, pred.Confidence, 1e-12)
	assert.Greater(t, pred.EstimatedPrice, 5e6)
	assert.Less(t, pred.EstimatedPrice, 1.4e7)
	assert.Less(t, pred.LowerBound, pred.EstimatedPrice)
	assert.Greater(t, pred.UpperBound, pred.EstimatedPrice)
	assert.Len(t, pred.FeatureImportance, 5)

	// stdout is exactly one JSON document.
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestPredictCommand_YAML(t *testing.T) {
	out, err := execute(t, referenceRequest, "--samples", "1000", "--log-level", "error", "-o", "yaml")
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &m))
	assert.Contains(t, m, "estimatedPrice")
	assert.Len(t, m["featureImportance"], 5)
}

func TestPredictCommand_Malformed(t *testing.T) {
	body := strings.Replace(referenceRequest, `"garage":2,`, "", 1)
	out, err := execute(t, body, "--samples", "1000", "--log-level", "error")
	require.Error(t, err)
	assert.Empty(t, out)

	var mErr *errors.MalformedInputError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "garage", mErr.Field)
}

func TestRootCommand_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad output", []string{"--metrics", "-o", "xml"}},
		{"bad solver", []string{"--metrics", "--solver", "sgd"}},
		{"bad samples", []string{"--metrics", "--samples", "0"}},
		{"bad log level", []string{"--metrics", "--log-level", "chatty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidParameter, errors.Code(err))
		})
	}
}

func TestDatasetCommand(t *testing.T) {
	out, err := execute(t, "", "dataset", "--samples", "10", "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.True(t, strings.HasSuffix(lines[0], "price"))
}

func TestDatasetCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "houses.csv")
	out, err := execute(t, "", "dataset", "--samples", "25", "--out", path, "--log-level", "error")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 26)
}

func TestPlotCommand(t *testing.T) {
	dir := t.TempDir()
	imp := filepath.Join(dir, "importance.png")
	res := filepath.Join(dir, "residuals.svg")

	_, err := execute(t, "", "plot", "--samples", "500", "--importance", imp, "--residuals", res, "--log-level", "error")
	require.NoError(t, err)

	for _, p := range []string{imp, res} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestPlotCommand_RequiresOutput(t *testing.T) {
	_, err := execute(t, "", "plot", "--log-level", "error")
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	m := pipeline.MetricsReport{RSquared: 0.612, RMSE: 1800000, MAE: 1400000, LastTrained: "2024-12-16"}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputJSON, m))
	assert.JSONEq(t, `{"rSquared":0.612,"rmse":1800000,"mae":1400000,"lastTrained":"2024-12-16"}`, buf.String())

	buf.Reset()
	require.NoError(t, render(&buf, outputYAML, m))
	assert.Contains(t, buf.String(), "2024-12-16")
	assert.Contains(t, buf.String(), "rSquared: 0.612")

	buf.Reset()
	require.NoError(t, render(&buf, outputText, m))
	assert.Contains(t, buf.String(), "1,800,000")

	assert.Error(t, render(&buf, outputText, 42))
}

func TestParseOutput(t *testing.T) {
	for in, want := range map[string]string{"json": "json", "YAML": "yaml", "yml": "yaml", " text ": "text"} {
		got, err := parseOutput(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseOutput("xml")
	assert.Error(t, err)
}
