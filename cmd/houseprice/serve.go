package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/houseprice/internal/server"
	"github.com/YuminosukeSato/houseprice/internal/store"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Train the model and serve the prediction API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := a.train()
			if err != nil {
				return err
			}

			st, err := store.Open(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			a.logger.Info("Prediction store ready", "store.driver", a.cfg.Store.Driver)
			return server.New(p, st, a.cfg.Server, log.GetLoggerWithName("server")).Run(ctx)
		},
	}

	cmd.Flags().Int("port", 8080, "listen port")
	cmd.Flags().String("store-driver", "memory", "prediction store: memory, sqlite or postgres")
	cmd.Flags().String("store-dsn", "", "store connection string or file path")
	_ = a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = a.v.BindPFlag("store.driver", cmd.Flags().Lookup("store-driver"))
	_ = a.v.BindPFlag("store.dsn", cmd.Flags().Lookup("store-dsn"))
	return cmd
}
