package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/houseprice/datasets"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

func newDatasetCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Write the synthetic training data as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds := datasets.GenerateHousing(a.cfg.Model.Samples, a.cfg.Model.Seed)

			if out == "" || out == "-" {
				return ds.WriteCSV(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return errors.Wrap(err, "create dataset file")
			}
			if err := ds.WriteCSV(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "close dataset file")
			}
			a.logger.Info("Dataset written", "path", out, log.SamplesKey, ds.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "-", "output path, - for stdout")
	return cmd
}
