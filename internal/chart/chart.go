// Package chart renders activity breakdowns as inline PNG pie charts.
package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"trastes/internal/observability"
	"trastes/internal/stats"
)

// DefaultPalette is used when no palette is configured.
const DefaultPalette = "#4e79a7,#f28e2b,#e15759,#76b7b2,#59a14f,#edc948"

// Image is a rendered chart ready for an <img src>.
type Image struct {
	Title   string
	DataURI string
}

type Renderer struct {
	palette []drawing.Color
	width   int
	height  int
}

// NewRenderer parses a comma-separated list of hex colours. Blank input
// selects DefaultPalette.
func NewRenderer(palette string) (*Renderer, error) {
	if strings.TrimSpace(palette) == "" {
		palette = DefaultPalette
	}
	var colors []drawing.Color
	for _, p := range strings.Split(palette, ",") {
		hex := strings.TrimPrefix(strings.TrimSpace(p), "#")
		if hex == "" {
			continue
		}
		if len(hex) != 6 && len(hex) != 3 {
			return nil, fmt.Errorf("invalid palette colour %q", p)
		}
		colors = append(colors, drawing.ColorFromHex(hex))
	}
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette %q has no colours", palette)
	}
	return &Renderer{palette: colors, width: 480, height: 480}, nil
}

// Title is the heading shown above the chart of activity.
func Title(activity string) string {
	return fmt.Sprintf("Percentage '%s'", activity)
}

// Pie renders b with one slice per person labeled "<person> <pct>".
func (r *Renderer) Pie(b stats.Breakdown) (Image, error) {
	if len(b.Shares) == 0 {
		return Image{}, fmt.Errorf("no data for activity %q", b.Activity)
	}
	start := time.Now()
	defer observability.ChartRendered(start)

	values := make([]gochart.Value, len(b.Shares))
	for i, s := range b.Shares {
		color := r.palette[i%len(r.palette)]
		values[i] = gochart.Value{
			Value: float64(s.Count),
			Label: s.Label + " " + s.PercentLabel(),
			Style: gochart.Style{
				FillColor:   color,
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontColor:   drawing.ColorWhite,
				FontSize:    12,
			},
		}
	}

	pie := gochart.PieChart{
		Title:      Title(b.Activity),
		Width:      r.width,
		Height:     r.height,
		Values:     values,
		TitleStyle: gochart.Style{FontColor: drawing.ColorFromHex("222222"), FontSize: 14},
		Background: gochart.Style{FillColor: drawing.ColorWhite},
		Canvas:     gochart.Style{FillColor: drawing.ColorWhite},
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.PNG, &buf); err != nil {
		return Image{}, fmt.Errorf("render pie for %q: %w", b.Activity, err)
	}
	return Image{
		Title:   pie.Title,
		DataURI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// PieAll renders the breakdowns concurrently and returns the images in
// the same order.
func (r *Renderer) PieAll(ctx context.Context, breakdowns []stats.Breakdown) ([]Image, error) {
	images := make([]Image, len(breakdowns))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, b := range breakdowns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := r.Pie(b)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
