package main

import (
	"github.com/spf13/cobra"

	"github.com/recall-ai/recall-go/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent over a websocket endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.close()

			if addr == "" {
				addr = rt.cfg.ListenAddr
			}

			srv, err := server.New(server.Config{
				Factory: rt.newAgent,
				Logger:  rt.logger,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from LISTEN_ADDR)")
	return cmd
}
