// Command poolserver serves HTTP requests on a fixed pool of workers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	workerpool "github.com/azargarov/connpool"
	"github.com/azargarov/connpool/internal/config"
	"github.com/azargarov/connpool/internal/router"
	"github.com/azargarov/connpool/internal/server"
)

func main() {
	var (
		configFile  = flag.String("config", "", "config file (YAML/JSON)")
		addr        = flag.String("addr", "", "listen address, overrides the config file")
		workers     = flag.Int("workers", 0, "number of workers, overrides the config file")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	)
	flag.Parse()

	if err := run(*configFile, *addr, *workers, *metricsAddr); err != nil {
		fmt.Fprintf(os.Stderr, "poolserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, addr string, workers int, metricsAddr string) error {
	ctx := context.Background()
	logger := lg.FromContext(ctx)

	fc, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if addr != "" {
		fc.Server.Addr = addr
	}
	if workers > 0 {
		fc.Server.Workers = workers
	}
	if metricsAddr != "" {
		fc.Metrics.Addr = metricsAddr
	}
	if err := fc.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg, err := fc.ToServerConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var metrics workerpool.MetricsPolicy = &workerpool.NoopMetrics{}
	if fc.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		pm, err := workerpool.NewPromMetrics(reg, fc.Metrics.Namespace, "pool")
		if err != nil {
			return err
		}
		metrics = pm
		stopMetrics := serveMetrics(ctx, fc.Metrics.Addr, reg)
		defer stopMetrics()
	}

	routes := router.NewLocked(router.Default(fc.Routes.MarkerFile))
	handler := server.NewHandler(routes, cfg.ReadTimeout)
	srv := server.New(cfg, handler.Serve, metrics)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		logger.Info("signal received", lg.String("signal", sig.String()))
		srv.RequestShutdown()
	}()

	return srv.ListenAndServe(ctx)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) (stop func()) {
	logger := lg.FromContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics listening", lg.String("addr", addr))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", lg.Any("error", err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}
}
