package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ordermesh/ordermesh/config"
)

// newServeCmd runs the operational endpoint. The chat transport binding is
// supplied by the embedding application through the library façade; this
// process exposes metrics and health for it.
func newServeCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose metrics and health endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg)

			store := buildSessionStore(cfg)
			defer store.Close()
			if err := store.Ping(cmd.Context()); err != nil {
				return err
			}

			// Dispatch metrics live in the process embedding the Bot; this
			// endpoint reports its own runtime.
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				if err := store.Ping(r.Context()); err != nil {
					http.Error(w, err.Error(), http.StatusServiceUnavailable)
					return
				}
				w.WriteHeader(http.StatusOK)
			})

			srv := &http.Server{Addr: metricsAddr, Handler: mux}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			logger.Info("serving", "addr", metricsAddr)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-stop:
				logger.Info("shutting down")
				return srv.Close()
			}
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "metrics listen address")
	return cmd
}
