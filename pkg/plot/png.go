package plot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/registry"
)

const (
	DefaultDir     = "plots"
	DefaultSamples = 400
)

// PNGSink renders plot requests to PNG files under a directory.
type PNGSink struct {
	registry *registry.Registry
	dir      string
	samples  int
	width    vg.Length
	height   vg.Length
	logger   *slog.Logger

	seq atomic.Int64
}

// Option configures a PNGSink.
type Option func(*PNGSink)

// WithSamples sets how many points each curve is sampled at.
func WithSamples(n int) Option {
	return func(s *PNGSink) {
		if n > 1 {
			s.samples = n
		}
	}
}

// WithSize sets the image size in inches.
func WithSize(width, height float64) Option {
	return func(s *PNGSink) {
		s.width = vg.Length(width) * vg.Inch
		s.height = vg.Length(height) * vg.Inch
	}
}

// WithLogger sets the logger used to report written files.
func WithLogger(l *slog.Logger) Option {
	return func(s *PNGSink) {
		s.logger = l
	}
}

// NewPNGSink creates a sink writing into dir (DefaultDir when empty).
// Equations named in requests are resolved against reg.
func NewPNGSink(reg *registry.Registry, dir string, opts ...Option) *PNGSink {
	if dir == "" {
		dir = DefaultDir
	}
	s := &PNGSink{
		registry: reg,
		dir:      dir,
		samples:  DefaultSamples,
		width:    6 * vg.Inch,
		height:   4 * vg.Inch,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the output directory.
func (s *PNGSink) Dir() string {
	return s.dir
}

// Plot draws req and returns the path of the written file.
func (s *PNGSink) Plot(ctx context.Context, req domain.PlotRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := s.build(req)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create plot directory: %w", err)
	}
	name := fmt.Sprintf("%03d-%s.png", s.seq.Add(1), slug(req.Title))
	path := filepath.Join(s.dir, name)
	if err := p.Save(s.width, s.height, path); err != nil {
		return "", fmt.Errorf("failed to save plot %q: %w", req.Title, err)
	}
	s.logger.Debug("plot written", "path", path, "kind", req.Kind)
	return path, nil
}

func (s *PNGSink) build(req domain.PlotRequest) (*plot.Plot, error) {
	if req.XMax <= req.XMin {
		return nil, fmt.Errorf("invalid plot range [%g, %g]", req.XMin, req.XMax)
	}

	p := plot.New()
	p.Title.Text = req.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = req.XMin, req.XMax
	p.Add(plotter.NewGrid())

	for i, id := range req.Equations {
		eq, err := s.registry.Lookup(id)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(Sample(eq.Fn, req.XMin, req.XMax, s.samples))
		if err != nil {
			return nil, fmt.Errorf("failed to sample %s: %w", id, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(eq.Expr, line)
	}

	if len(req.Markers) > 0 {
		pts := make(plotter.XYs, len(req.Markers))
		for i, m := range req.Markers {
			pts[i] = plotter.XY{X: m.X, Y: m.Y}
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("invalid markers: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Color = plotutil.Color(len(req.Equations))
		p.Add(sc)
		if req.Kind == domain.PlotIntersection {
			p.Legend.Add("Intersection", sc)
		}
	}
	p.Legend.Top = true
	return p, nil
}

// Sample evaluates f at n evenly spaced points of [lo, hi].
// Points where f is not finite are dropped so a singular curve still draws.
func Sample(f domain.Func, lo, hi float64, n int) plotter.XYs {
	if n < 2 {
		n = 2
	}
	xs := floats.Span(make([]float64, n), lo, hi)
	out := make(plotter.XYs, 0, n)
	for _, x := range xs {
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		out = append(out, plotter.XY{X: x, Y: y})
	}
	return out
}

func slug(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	dash := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "plot"
	}
	return out
}
