package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/routegen-dev/routegen/internal/config"
	"github.com/routegen-dev/routegen/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with hot reload.

The dev server watches the pages directory, regenerates the route
table on change, and refreshes connected browsers.

Features:
  • Regeneration on file change
  • Error overlay in browser
  • Route inspector at /routes
  • Prometheus metrics at /metrics

Examples:
  routegen dev
  routegen dev --port=8080
  routegen dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from routegen.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from routegen.json)")

	return cmd
}

func runDev(port int, host string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	server, err := dev.NewServer(dev.ServerOptions{
		Config:  cfg,
		Verbose: true,
		OnPassComplete: func(result dev.PassResult) {
			if result.Success && result.Written {
				success("Regenerated in %s", result.Duration.Round(time.Millisecond))
			}
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
		server.Stop()
	}()

	info("Watching %s", cfg.RoutesPath())
	info("Inspector at %s/routes", cfg.DevURL())
	fmt.Println()

	return server.Start(ctx)
}
