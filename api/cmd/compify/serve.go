package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"compify/api/internal/handle"
	"compify/api/internal/httpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	h := handle.New(a.gw, a.creds, a.db, cfg.RequestTimeout, logger)
	return httpserver.Run(ctx, httpserver.New(":"+cfg.Port, h.Routes()), logger)
}
