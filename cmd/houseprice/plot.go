package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/report"
)

func newPlotCmd(a *app) *cobra.Command {
	var importancePath, residualsPath string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render feature importance and residual charts (PNG, SVG or PDF by extension)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if importancePath == "" && residualsPath == "" {
				return errors.NewValidationError("plot", "at least one of --importance or --residuals is required", "")
			}
			p, err := a.train()
			if err != nil {
				return err
			}
			if importancePath != "" {
				if err := report.SaveImportanceChart(p, importancePath); err != nil {
					return err
				}
				a.logger.Info("Chart written", "path", importancePath)
			}
			if residualsPath != "" {
				if err := report.SaveResidualChart(p, residualsPath); err != nil {
					return err
				}
				a.logger.Info("Chart written", "path", residualsPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&importancePath, "importance", "", "feature importance chart path")
	cmd.Flags().StringVar(&residualsPath, "residuals", "", "predicted vs actual chart path")
	return cmd
}
