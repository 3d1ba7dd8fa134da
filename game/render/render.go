// Package render draws grid snapshots as PNG images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
)

// Palette maps every cell state to its fill colour
var Palette = map[engine.CellState]color.RGBA{
	engine.Free:    {255, 255, 255, 255},
	engine.Open:    {0, 255, 0, 255},
	engine.Closed:  {255, 0, 0, 255},
	engine.Barrier: {0, 0, 0, 255},
	engine.Start:   {255, 165, 0, 255},
	engine.End:     {64, 224, 208, 255},
	engine.Path:    {128, 0, 128, 255},
}

// GridLine is the colour of the lines between tiles
var GridLine = color.RGBA{128, 128, 128, 255}

// Options tunes a snapshot
type Options struct {
	// Route, when set, is stroked through the tile centres on top of the cells
	Route []engine.Position
	// HideGridLines skips the tile separators
	HideGridLines bool
}

// Layout draws layout rows on a width x width surface split into rows x rows tiles
func Layout(layout []string, width int, opts Options) (*gg.Context, error) {
	rows := len(layout)
	if rows == 0 {
		return nil, fmt.Errorf("render: empty layout")
	}
	if width < rows {
		return nil, fmt.Errorf("render: width %d smaller than %d rows", width, rows)
	}
	tile := float64(width / rows)

	dc := gg.NewContext(width, width)
	dc.SetColor(Palette[engine.Free])
	dc.Clear()

	for r, line := range layout {
		if len(line) != rows {
			return nil, fmt.Errorf("render: row %d has %d cells, want %d", r, len(line), rows)
		}
		for c := 0; c < len(line); c++ {
			state, ok := engine.StateFromGlyph(line[c])
			if !ok {
				return nil, fmt.Errorf("render: unknown glyph %q at (%d,%d)", line[c], r, c)
			}
			if state == engine.Free {
				continue
			}
			dc.SetColor(Palette[state])
			dc.DrawRectangle(float64(c)*tile, float64(r)*tile, tile, tile)
			dc.Fill()
		}
	}

	if !opts.HideGridLines {
		dc.SetColor(GridLine)
		dc.SetLineWidth(1)
		extent := tile * float64(rows)
		for i := 0; i <= rows; i++ {
			p := float64(i) * tile
			dc.DrawLine(0, p, extent, p)
			dc.DrawLine(p, 0, p, extent)
		}
		dc.Stroke()
	}

	if len(opts.Route) > 1 {
		dc.SetColor(Palette[engine.Path])
		dc.SetLineWidth(tile / 4)
		first := opts.Route[0]
		dc.MoveTo(float64(first.Col)*tile+tile/2, float64(first.Row)*tile+tile/2)
		for _, p := range opts.Route[1:] {
			dc.LineTo(float64(p.Col)*tile+tile/2, float64(p.Row)*tile+tile/2)
		}
		dc.Stroke()
	}

	return dc, nil
}

func snapshot(state *engine.GridState, withRoute bool) (*gg.Context, error) {
	if state == nil {
		return nil, fmt.Errorf("render: nil state")
	}
	var opts Options
	if withRoute && state.LastResult != nil && state.LastResult.Found {
		opts.Route = state.LastResult.Path
	}
	return Layout(state.Layout, state.Width, opts)
}

// State draws a grid state, optionally overlaying the last route found
func State(state *engine.GridState, withRoute bool) (image.Image, error) {
	dc, err := snapshot(state, withRoute)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG encodes a grid state as PNG
func WritePNG(w io.Writer, state *engine.GridState, withRoute bool) error {
	dc, err := snapshot(state, withRoute)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}
