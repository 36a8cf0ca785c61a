package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/dataset"
	"github.com/dd0wney/cluso-netviz/pkg/explorer"
	"github.com/dd0wney/cluso-netviz/pkg/health"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
	"github.com/dd0wney/cluso-netviz/pkg/render"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (or set "+config.EnvConfig+")")
	data := flag.String("data", "", "Snapshot location: file, .sz file, s3://bucket/key or - (or set NETVIZ_DATA)")
	logFile := flag.String("log", "", "Write JSON logs to this file (default: discard)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	fps := flag.Int("fps", 30, "Frames per second")
	flag.Parse()

	if *data == "" {
		*data = flag.Arg(0)
	}
	if *data == "" {
		*data = os.Getenv("NETVIZ_DATA")
	}
	if *data == "" {
		fmt.Fprintln(os.Stderr, "usage: netviz-tui [flags] <snapshot>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path := firstNonEmpty(*logFile, cfg.Logging.File); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.NewJSONLogger(logOut, cfg.LogLevel())

	reg := metrics.NewRegistry()
	var reporter *health.Reporter
	if addr := firstNonEmpty(*metricsAddr, cfg.Metrics.Addr); addr != "" {
		reporter = health.NewReporter(readiness...)
		go serveMetrics(addr, reg, reporter, logger)
	}

	ctx := context.Background()
	src, err := dataset.Open(ctx, *data, cfg.S3)
	if err != nil {
		log.Fatalf("Failed to open snapshot: %v", err)
	}
	loader := dataset.NewLoader(logger, reg)
	snapshot, err := loader.Load(ctx, src)
	if err != nil && !errors.Is(err, dataset.ErrEmptySnapshot) {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	canvas := render.NewTerminalCanvas()
	ex, err := explorer.New(cfg, explorer.Options{
		Logger:  logger,
		Metrics: reg,
		Backend: canvas.Name(),
		Factory: func() (render.Canvas, error) { return canvas, nil },
	})
	if err != nil {
		log.Fatalf("Failed to create explorer: %v", err)
	}
	defer ex.Close()
	loader.ReportDiagnostics(ex.Load(snapshot))

	m := newModel(ex, canvas, "netviz · "+src.String(), *fps)
	m.health = reporter
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

// serveMetrics exposes /metrics and the health probes.
func serveMetrics(addr string, reg *metrics.Registry, reporter *health.Reporter, logger logging.Logger) {
	start := time.Now()
	mux := http.NewServeMux()
	mux.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reg.UpdateSystemMetrics(start)
		promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
	}))
	reporter.Register(mux)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("serving metrics", logging.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", logging.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
