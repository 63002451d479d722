package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Lamia/internal/activitypub/webfinger"
	"Lamia/internal/api/middleware"
	"Lamia/internal/api/routes"
	"Lamia/internal/config"
	"Lamia/internal/metrics"
	"Lamia/internal/version"
	"Lamia/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $LAMIA_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	slog.SetDefault(cfg.NewLogger(os.Stderr))
	log.Printf("Lamia %s starting for %q (debug=%t)", version.Version, cfg.SiteName, cfg.Debug)

	// Outbound discovery
	webfingerConfig := cfg.WebfingerConfig()
	webfingerConfig.Recorder = metrics.New(prometheus.DefaultRegisterer)
	discoverer := webfinger.NewClient(webfingerConfig)

	if cfg.Discovery.AllowPrivateNetworks {
		slog.Warn("discovery may reach private networks", "note", "never enable this in production")
	}

	var reloadDir string
	if cfg.TemplateReload {
		reloadDir = cfg.TemplateDir
		log.Printf("Template reload enabled, reading templates from %s", reloadDir)
	}
	templates, err := web.NewTemplates(reloadDir)
	if err != nil {
		log.Fatal("Failed to load web templates:", err)
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	if cfg.RequestsPerMinute > 0 {
		rateLimiter := middleware.NewRateLimiter(cfg.RequestsPerMinute, 1*time.Minute, cfg.TrustProxyHeaders)
		defer rateLimiter.Stop()
		r.Use(rateLimiter.Middleware)
	}

	routes.RegisterDiscoverRoutes(r, discoverer)
	routes.RegisterWebRoutes(r, web.NewHandlers(templates, discoverer, cfg.SiteName), cfg.StaticDir)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
