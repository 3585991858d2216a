package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geminiproxy/config"
	"geminiproxy/gemini"
	"geminiproxy/handler"
	"geminiproxy/logging"
	"geminiproxy/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

var version = "dev"

func main() {
	args := config.ParseArgs()
	if args.Version {
		fmt.Println(version)
		return
	}

	log := logging.GetLogger()

	cfg, err := config.LoadConfig(args.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if args.Debug {
		level = logrus.DebugLevel
	}
	logging.InitLogger(level)

	warnMissingCredential(cfg, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	client, err := gemini.NewClient(context.Background(), cfg.APIRoot, cfg.APIKey, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	httpHandler := handler.NewHTTPHandler(client, cfg.Model,
		handler.WithMaxBodyBytes(cfg.MaxBodyBytes),
		handler.WithMetrics(m),
	)

	servers := []*http.Server{{
		Addr:              cfg.ListenAddress,
		Handler:           newProxyRouter(httpHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.MetricsAddress != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           newMetricsRouter(reg),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Infof("Starting server on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
		}(srv)
	}
	log.Infof("Proxying prompts to model %s", cfg.Model)

	select {
	case <-ctx.Done():
		log.Infoln("Shutting down")
	case err := <-errCh:
		log.Errorf("Server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Shutdown of %s: %v", srv.Addr, err)
		}
	}
}

// warnMissingCredential logs once at startup. The proxy keeps serving and
// every generation request fails until a key is configured.
func warnMissingCredential(cfg *config.Config, log logrus.FieldLogger) {
	if cfg.MissingCredential() {
		log.Warnf("%s environment variable is not set. Generation requests will fail.", config.APIKeyEnv)
	}
}
