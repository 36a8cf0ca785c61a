package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/dataset"
	"github.com/dd0wney/cluso-netviz/pkg/explorer"
	"github.com/dd0wney/cluso-netviz/pkg/logging"
	"github.com/dd0wney/cluso-netviz/pkg/metrics"
	"github.com/dd0wney/cluso-netviz/pkg/render"
)

type options struct {
	configPath string
	data       string
	width      int
	height     int
	timeout    time.Duration
	geo        bool

	png       string
	svg       string
	geojson   string
	positions string

	selectID  string
	isolate   bool
	highlight string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML config file (or set "+config.EnvConfig+")")
	flag.StringVar(&o.data, "data", "", "Snapshot location: file, .sz file, s3://bucket/key or - (or set NETVIZ_DATA)")
	flag.IntVar(&o.width, "width", 0, "Image width in pixels (default 1600, or set NETVIZ_WIDTH)")
	flag.IntVar(&o.height, "height", 0, "Image height in pixels (default 1000, or set NETVIZ_HEIGHT)")
	flag.DurationVar(&o.timeout, "timeout", 2*time.Minute, "Give up on the layout after this long")
	flag.BoolVar(&o.geo, "geo", false, "Place geocoded nodes on a map projection")
	flag.StringVar(&o.png, "png", "", "Write a PNG image (.sz compresses)")
	flag.StringVar(&o.svg, "svg", "", "Write an SVG image (.sz compresses)")
	flag.StringVar(&o.geojson, "geojson", "", "Write geocoded nodes and edges as GeoJSON")
	flag.StringVar(&o.positions, "positions", "", "Write normalized layout positions as JSON")
	flag.StringVar(&o.selectID, "select", "", "Select this node before drawing")
	flag.BoolVar(&o.isolate, "isolate", false, "Isolate the selected node's neighborhood")
	flag.StringVar(&o.highlight, "highlight", "", "Comma-separated node ids to highlight")
	flag.Parse()

	if o.data == "" {
		o.data = firstNonEmpty(flag.Arg(0), os.Getenv("NETVIZ_DATA"))
	}
	o.width = sizeFromEnv(o.width, "NETVIZ_WIDTH", 1600)
	o.height = sizeFromEnv(o.height, "NETVIZ_HEIGHT", 1000)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		fmt.Fprintln(os.Stderr, "netviz-render:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	if o.data == "" {
		return errors.New("no snapshot given; pass -data or a positional argument")
	}
	if o.png == "" && o.svg == "" && o.geojson == "" && o.positions == "" {
		o.png = "graph.png"
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.geo {
		cfg.Geo.Enabled = true
	}
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel())
	reg := metrics.NewRegistry()

	src, err := dataset.Open(ctx, o.data, cfg.S3)
	if err != nil {
		return err
	}
	loader := dataset.NewLoader(logger, reg)
	snapshot, err := loader.Load(ctx, src)
	if err != nil && !errors.Is(err, dataset.ErrEmptySnapshot) {
		return err
	}

	ex, err := explorer.New(cfg, explorer.Options{Logger: logger, Metrics: reg})
	if err != nil {
		return err
	}
	defer ex.Close()

	ex.Resize(float64(o.width), float64(o.height))
	loader.ReportDiagnostics(ex.Load(snapshot))

	settleCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	frames, err := ex.Settle(settleCtx, time.Now(), time.Second/60)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("layout did not settle in time, drawing current positions",
			logging.Duration("timeout", o.timeout))
	case err != nil:
		return err
	}
	ex.FitToView(false)
	logger.Info("layout settled",
		logging.Int("frames", frames),
		logging.Nodes(ex.Model().Len()),
		logging.Edges(ex.Model().EdgeCount()))

	if err := applyView(ex, o); err != nil {
		return err
	}

	if o.png != "" {
		canvas := render.NewRasterCanvas()
		if _, err := ex.DrawTo(canvas); err != nil {
			return err
		}
		if err := writeOutput(o.png, canvas.EncodePNG); err != nil {
			return err
		}
		logger.Info("wrote image", logging.String("path", o.png))
	}
	if o.svg != "" {
		err := writeOutput(o.svg, func(w io.Writer) error {
			_, err := ex.DrawTo(render.NewSVGCanvas(w))
			return err
		})
		if err != nil {
			return err
		}
		logger.Info("wrote image", logging.String("path", o.svg))
	}
	if o.geojson != "" {
		data, err := ex.ExportGeoJSON()
		if err != nil {
			return err
		}
		if err := writeOutput(o.geojson, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return err
		}
		logger.Info("wrote geojson", logging.String("path", o.geojson))
	}
	if o.positions != "" {
		err := writeOutput(o.positions, func(w io.Writer) error {
			return ex.ExportPositions(w, float64(o.width), float64(o.height), cfg.Render.NodeMaxSize)
		})
		if err != nil {
			return err
		}
		logger.Info("wrote positions", logging.String("path", o.positions))
	}
	return nil
}

// applyView sets the selection, isolation and highlight asked for on the
// command line.
func applyView(ex *explorer.Explorer, o options) error {
	if o.selectID != "" {
		if err := ex.Select(o.selectID); err != nil {
			return err
		}
	}
	if o.isolate {
		if o.selectID == "" {
			return errors.New("-isolate needs -select")
		}
		if _, err := ex.ToggleIsolation(o.selectID); err != nil {
			return err
		}
	}
	if o.highlight != "" {
		ids := strings.Split(o.highlight, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		if n := ex.HighlightNodes(ids); n == 0 {
			return fmt.Errorf("none of the highlighted ids are in the graph: %s", o.highlight)
		}
	}
	return nil
}

func writeOutput(path string, write func(io.Writer) error) error {
	f, err := dataset.CreateFile(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func sizeFromEnv(v int, env string, def int) int {
	if v > 0 {
		return v
	}
	if s := os.Getenv(env); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
