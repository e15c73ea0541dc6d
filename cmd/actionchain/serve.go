package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/actionchain/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes chain execution and validation as a JSON API over HTTP, with
Prometheus metrics on /metrics. Chains stored in --dir can be run by id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd, nil)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")

		svc, err := newServices(opts)
		if err != nil {
			return err
		}
		defer svc.close()

		metrics := prometheus.NewRegistry()
		metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		handlerOpts := []httpadapter.Option{
			httpadapter.WithTransactionManager(svc.manager),
			httpadapter.WithMetrics(metrics),
			httpadapter.WithLogger(opts.Logger),
		}
		if svc.chains != nil {
			handlerOpts = append(handlerOpts, httpadapter.WithRepository(svc.chains))
		}
		handler, err := httpadapter.NewHandler(svc.registry, handlerOpts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting actionchain server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signalContext()
		defer stop()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			fmt.Println("\nStart shutdown...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			fmt.Println("actionchain server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "8080", "Port to listen on")
}
