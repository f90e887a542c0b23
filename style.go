/*
Copyright © 2024 the sstmap authors.
This file is part of sstmap.

sstmap is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

sstmap is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with sstmap.  If not, see <http://www.gnu.org/licenses/>.
*/

package sstmap

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// PlotParams holds the fixed plotting dimensions shared by all
// figures. Widths are in points and figure widths are in inches.
type PlotParams struct {
	GridlineWidth float64 `toml:"gridline_width"`
	BorderWidth   float64 `toml:"border_width"`
	TickWidth     float64 `toml:"tick_width"`
	TickLength    float64 `toml:"tick_length"`
	TwoColWidth   float64 `toml:"twocol_width"`
	OneColWidth   float64 `toml:"onecol_width"`
	MaxWidth      float64 `toml:"max_width"`
}

// Params is the static plotting parameter table.
var Params = PlotParams{
	GridlineWidth: 0.7,
	BorderWidth:   0.3,
	TickWidth:     0.0,
	TickLength:    2,
	TwoColWidth:   5.5,
	OneColWidth:   3.2,
	MaxWidth:      6.4,
}

// Map returns the parameter table keyed by parameter name.
func (p PlotParams) Map() map[string]float64 {
	return map[string]float64{
		"gridline_width": p.GridlineWidth,
		"border_width":   p.BorderWidth,
		"tick_width":     p.TickWidth,
		"tick_length":    p.TickLength,
		"twocol_width":   p.TwoColWidth,
		"onecol_width":   p.OneColWidth,
		"max_width":      p.MaxWidth,
	}
}

// Style holds the rendering parameters used by figures. Font sizes,
// line widths, pads and marker sizes are in points. A Style is passed
// explicitly to everything that draws; there is no package-level
// current style.
type Style struct {
	DPI                 int      `toml:"dpi"`
	HatchLineWidth      float64  `toml:"hatch_linewidth"`
	AxesLabelSize       float64  `toml:"axes_labelsize"`
	AxesTitleSize       float64  `toml:"axes_titlesize"`
	XTickLabelSize      float64  `toml:"xtick_labelsize"`
	YTickLabelSize      float64  `toml:"ytick_labelsize"`
	FontSize            float64  `toml:"font_size"`
	LineWidth           float64  `toml:"lines_linewidth"`
	LegendFontSize      float64  `toml:"legend_fontsize"`
	LegendTitleFontSize float64  `toml:"legend_title_fontsize"`
	PatchLineWidth      float64  `toml:"patch_linewidth"`
	ContourLineWidth    float64  `toml:"contour_linewidth"`
	AxesLabelPad        float64  `toml:"axes_labelpad"`
	XTickMajorPad       float64  `toml:"xtick_major_pad"`
	YTickMajorPad       float64  `toml:"ytick_major_pad"`
	MarkerSize          float64  `toml:"lines_markersize"`
	Palette             []string `toml:"palette"`
	AxesFaceColor       string   `toml:"axes_facecolor"`
}

// ColorblindPalette is the ten-color palette used for categorical
// series.
var ColorblindPalette = []string{
	"#0173B2", "#DE8F05", "#029E73", "#D55E00", "#CC78BC",
	"#CA9161", "#FBAFE4", "#949494", "#ECE133", "#56B4E9",
}

// BaseStyle returns the unscaled style.
func BaseStyle() Style {
	return Style{
		DPI:                 300,
		HatchLineWidth:      0.15,
		AxesLabelSize:       9,
		AxesTitleSize:       11,
		XTickLabelSize:      9,
		YTickLabelSize:      9,
		FontSize:            9,
		LineWidth:           1,
		LegendFontSize:      8,
		LegendTitleFontSize: 8,
		PatchLineWidth:      1,
		ContourLineWidth:    0.5,
		AxesLabelPad:        4,
		XTickMajorPad:       0,
		YTickMajorPad:       0,
		MarkerSize:          3,
		Palette:             append([]string(nil), ColorblindPalette...),
		AxesFaceColor:       "#EAEAF2",
	}
}

// SetPlotStyle returns the base style with every font size, line
// width, pad and marker size multiplied by scale. Calling it again
// with the same scale returns the same style.
func SetPlotStyle(scale float64) Style {
	return BaseStyle().Scale(scale)
}

// Scale returns a copy of s with sizes multiplied by f. The DPI and
// colors are not changed.
func (s Style) Scale(f float64) Style {
	s.HatchLineWidth *= f
	s.AxesLabelSize *= f
	s.AxesTitleSize *= f
	s.XTickLabelSize *= f
	s.YTickLabelSize *= f
	s.FontSize *= f
	s.LineWidth *= f
	s.LegendFontSize *= f
	s.LegendTitleFontSize *= f
	s.PatchLineWidth *= f
	s.ContourLineWidth *= f
	s.AxesLabelPad *= f
	s.XTickMajorPad *= f
	s.YTickMajorPad *= f
	s.MarkerSize *= f
	s.Palette = append([]string(nil), s.Palette...)
	return s
}

// LoadStyle reads style overrides in TOML format from r, applies them
// on top of BaseStyle, and scales the result.
func LoadStyle(r io.Reader, scale float64) (Style, error) {
	s := BaseStyle()
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return Style{}, fmt.Errorf("sstmap: reading style: %w", err)
	}
	if err := s.check(); err != nil {
		return Style{}, err
	}
	return s.Scale(scale), nil
}

func (s Style) check() error {
	if s.DPI <= 0 {
		return fmt.Errorf("sstmap: style dpi must be positive but is %d: %w", s.DPI, ErrInvalidOptions)
	}
	for _, c := range append([]string{s.AxesFaceColor}, s.Palette...) {
		if _, err := ParseHexColor(c); err != nil {
			return err
		}
	}
	return nil
}

// WriteTOML writes s to w in the format read by LoadStyle.
func (s Style) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}

// Color returns palette color i, cycling through the palette.
func (s Style) Color(i int) color.Color {
	if len(s.Palette) == 0 {
		return color.Black
	}
	c, err := ParseHexColor(s.Palette[i%len(s.Palette)])
	if err != nil {
		return color.Black
	}
	return c
}

// FaceColor returns the map background color.
func (s Style) FaceColor() color.Color {
	c, err := ParseHexColor(s.AxesFaceColor)
	if err != nil {
		return color.White
	}
	return c
}

// ApplyTo sets the font sizes, line widths and pads of p.
func (s Style) ApplyTo(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(s.AxesTitleSize)
	p.Legend.TextStyle.Font.Size = vg.Points(s.LegendFontSize)
	p.BackgroundColor = s.FaceColor()
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Label.TextStyle.Font.Size = vg.Points(s.AxesLabelSize)
		ax.Label.Padding = vg.Points(s.AxesLabelPad)
		ax.LineStyle.Width = vg.Points(Params.BorderWidth)
		ax.Tick.LineStyle.Width = vg.Points(Params.TickWidth)
		ax.Tick.Length = vg.Points(Params.TickLength)
	}
	p.X.Tick.Label.Font.Size = vg.Points(s.XTickLabelSize)
	p.Y.Tick.Label.Font.Size = vg.Points(s.YTickLabelSize)
}

// ParseHexColor parses colors in the "#RRGGBB" or "#RRGGBBAA" format.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("sstmap: invalid color %q: %w", s, ErrInvalidOptions)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("sstmap: invalid color %q: %w", s, ErrInvalidOptions)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
