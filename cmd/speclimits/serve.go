package main

import (
	"github.com/spf13/cobra"
	"github.com/ukaji3/speclimits-go/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loaded dataset over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ds, err := loadDataset(cmd)
			if err != nil {
				return err
			}
			return server.New(ds, logger).Run(cmd.Context(), cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
