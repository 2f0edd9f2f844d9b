package storage

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/sim"
)

// SVGOptions controls the size and colour of an SVG plot.
type SVGOptions struct {
	Width  int
	Height int
	Stroke string
	// Phase plots vy against y instead of y against t.
	Phase bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 400, Stroke: "#00ff00"}
}

// ExportSVG draws the trajectory as a single polyline.
func ExportSVG(w io.Writer, tr *sim.Trajectory, opts SVGOptions) error {
	if len(tr.States) < 2 {
		return fmt.Errorf("need at least 2 states to plot, got %d", len(tr.States))
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid plot size %dx%d", opts.Width, opts.Height)
	}

	xy := func(s dynamo.State) (float64, float64) { return s.T, s.Y }
	if opts.Phase {
		xy = func(s dynamo.State) (float64, float64) { return s.Y, s.Vy }
	}

	minX, minY := xy(tr.States[0])
	maxX, maxY := minX, minY
	for _, s := range tr.States {
		x, y := xy(s)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	width, height := float64(opts.Width), float64(opts.Height)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		opts.Width, opts.Height, opts.Width, opts.Height, opts.Stroke)

	for i, s := range tr.States {
		x, y := xy(s)
		px := (x - minX) / rangeX * width
		py := height - (y-minY)/rangeY*height
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", px, py)
	}
	sb.WriteString("\"/>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func ExportSVGFile(path string, tr *sim.Trajectory, opts SVGOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ExportSVG(f, tr, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
