package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/houseprice/internal/config"
	"github.com/YuminosukeSato/houseprice/linear"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// app carries state shared by all subcommands.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	var (
		showMetrics bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "houseprice",
		Short: "Estimate house prices with a linear model trained on synthetic data",
		Long: `houseprice generates a seeded synthetic housing dataset, trains a linear
regression on it and prices one property read as JSON from stdin.
With --metrics it prints the held-out evaluation instead.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			p, err := a.train()
			if err != nil {
				return err
			}
			if showMetrics {
				return runMetrics(cmd.OutOrStdout(), p, format)
			}
			return runPredict(cmd.InOrStdin(), cmd.OutOrStdout(), p, format)
		},
	}

	flags := cmd.PersistentFlags()
	flags.Uint64("seed", 42, "random seed for data generation and the train/test split")
	flags.Int("samples", 5000, "number of synthetic training records")
	flags.Float64("test-size", 0.2, "held-out fraction")
	flags.String("solver", string(linear.SolverQR), "least-squares solver: qr or normal")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "json", "log format: json or console")
	a.bind("model.seed", cmd, "seed")
	a.bind("model.samples", cmd, "samples")
	a.bind("model.test_size", cmd, "test-size")
	a.bind("model.solver", cmd, "solver")
	a.bind("log.level", cmd, "log-level")
	a.bind("log.format", cmd, "log-format")

	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print model metrics instead of reading a request")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json, yaml or text")

	cmd.AddCommand(newServeCmd(a), newPlotCmd(a), newDatasetCmd(a))
	return cmd
}

// bind ties a persistent flag to a config key so flags override file and env values.
func (a *app) bind(key string, cmd *cobra.Command, flag string) {
	_ = a.v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
}

// setup loads the configuration and installs the logger. Logs go to stderr so
// stdout carries only the response.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := log.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
		return err
	}
	a.logger = log.GetLoggerWithName("cli")
	return nil
}

// train fits the pipeline from the loaded configuration.
func (a *app) train() (*pipeline.Pipeline, error) {
	solver, err := linear.ParseSolver(a.cfg.Model.Solver)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.Train(
		pipeline.WithSeed(a.cfg.Model.Seed),
		pipeline.WithSamples(a.cfg.Model.Samples),
		pipeline.WithTestSize(a.cfg.Model.TestSize),
		pipeline.WithSolver(solver),
		pipeline.WithLogger(log.GetLoggerWithName("pipeline")),
	)
	if err != nil {
		return nil, errors.Wrap(err, "train model")
	}
	return p, nil
}

func runMetrics(w io.Writer, p *pipeline.Pipeline, format string) error {
	m, err := p.Metrics()
	if err != nil {
		return err
	}
	return render(w, format, m)
}

func runPredict(r io.Reader, w io.Writer, p *pipeline.Pipeline, format string) error {
	req, err := pipeline.DecodeRequest(r)
	if err != nil {
		return err
	}
	pred, err := p.Predict(req)
	if err != nil {
		return err
	}
	return render(w, format, pred)
}
