// ABOUTME: CLI command that runs the HTTP sync API.
// ABOUTME: Starts the discovery responder alongside when enabled.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/discovery"
	"github.com/harperreed/hcbridge/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync API server",
	Long: `Run the HTTP API the phone pushes health records to.

The server requires a shared API key; set it in the config file or the
HCBRIDGE_API_KEY environment variable. Without a key every request is
refused.

When discovery is enabled in the config, a UDP responder answers probes
from the device app with this server's address so no manual setup is
needed on the phone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := cfg.GetAPIKey()
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "warning: no API key configured; all requests will be refused")
		}

		port := servePort
		if port == 0 {
			port = cfg.GetPort()
		}

		logger := log.New(os.Stderr, "", log.LstdFlags)
		srv := server.New(server.Options{
			Store:        db,
			Syncer:       syncApplier,
			Engine:       summaryEngine,
			Nutrition:    nutritionSvc,
			Ingestor:     ingestor,
			Reporter:     reporter,
			APIKey:       apiKey,
			GoalWeightKg: cfg.GoalWeightKg,
			Logger:       logger,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		if cfg.DiscoveryEnabled {
			responder := &discovery.Responder{
				Name:    cfg.GetServerName(),
				Magic:   cfg.GetDiscoveryMagic(),
				UDPPort: cfg.GetDiscoveryPort(),
				APIPort: port,
				Logger:  logger,
			}
			go func() {
				if err := responder.Run(ctx); err != nil {
					logger.Printf("discovery responder stopped: %v", err)
				}
			}()
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe(port) }()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
