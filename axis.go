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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// MapAxis is an equirectangular (Plate Carrée) map drawn on a figure.
// Layers are drawn in the order they are added and anything that
// spills over the edge of the map frame is masked.
type MapAxis struct {
	Extent Extent

	Title, XLabel, YLabel string

	fig       *Figure
	layers    []layer
	gridliner *Gridliner
	heat      *heatLayer
}

// frame holds what a layer needs to draw itself.
type frame struct {
	ext   Extent
	dc    draw.Canvas // map region of the figure
	carto *carto.Canvas
	plt   *plot.Plot // lon/lat coordinate frame for gonum plotters
}

type layer interface {
	draw(fr *frame) error
}

// SetExtent sets the region shown by the map.
func (ax *MapAxis) SetExtent(ext Extent) error {
	if err := ext.check(); err != nil {
		return err
	}
	ax.Extent = ext
	return nil
}

// Style returns the style of the figure the axis belongs to.
func (ax *MapAxis) Style() Style { return ax.fig.Style }

// Land shades polygons with the fill color.
func (ax *MapAxis) Land(polys []geom.Polygon, fill color.Color) {
	ax.layers = append(ax.layers, &polygonLayer{polys: polys, fill: fill})
}

// Coastlines outlines polygons with line style ls.
func (ax *MapAxis) Coastlines(polys []geom.Polygon, ls draw.LineStyle) {
	ax.layers = append(ax.layers, &polygonLayer{polys: polys, line: ls})
}

// Line draws ml with line style ls.
func (ax *MapAxis) Line(ml geom.MultiLineString, ls draw.LineStyle) {
	ax.layers = append(ax.layers, &lineLayer{g: ml, line: ls})
}

// HeatMap draws field f colored on a diverging blue-red scale between
// min and max. Values outside of [min, max] get the end colors and NaN
// values are left transparent.
func (ax *MapAxis) HeatMap(f *Field2D, min, max float64) error {
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return fmt.Errorf("sstmap: invalid color scale [%g, %g]: %w", min, max, ErrInvalidOptions)
	}
	w, err := f.Window(ax.Extent)
	if err != nil {
		return err
	}
	h := &heatLayer{grid: w, min: min, max: max}
	ax.heat = h
	ax.layers = append(ax.layers, h)
	return nil
}

// ColorScale returns the bounds of the most recently added heat map.
// ok is false if the axis has no heat map.
func (ax *MapAxis) ColorScale() (min, max float64, ok bool) {
	if ax.heat == nil {
		return 0, 0, false
	}
	return ax.heat.min, ax.heat.max, true
}

// Contour draws contour lines of f at the given levels.
func (ax *MapAxis) Contour(f *Field2D, levels []float64, ls draw.LineStyle) error {
	w, err := f.Window(ax.Extent)
	if err != nil {
		return err
	}
	// The plotter sorts its levels in place.
	levels = append([]float64(nil), levels...)
	ax.layers = append(ax.layers, &contourLayer{grid: w, levels: levels, line: ls})
	return nil
}

// Gridlines adds longitude and latitude lines at the given tick
// positions. If xticks or yticks is nil, positions are chosen
// automatically. The returned Gridliner can be changed until the
// figure is drawn.
func (ax *MapAxis) Gridlines(xticks, yticks []float64, ls draw.LineStyle) *Gridliner {
	s := ax.fig.Style
	g := &Gridliner{
		XTicks:       xticks,
		YTicks:       yticks,
		LineStyle:    ls,
		TopLabels:    true,
		RightLabels:  true,
		BottomLabels: true,
		LeftLabels:   true,
		XLabelSize:   vg.Points(s.XTickLabelSize),
		YLabelSize:   vg.Points(s.YTickLabelSize),
		XFormatter:   LongitudeFormatter,
		YFormatter:   LatitudeFormatter,
		LabelPad:     vg.Points(math.Max(s.XTickMajorPad, 0) + 2),
	}
	ax.gridliner = g
	ax.layers = append(ax.layers, g)
	return g
}

// Gridliner returns the most recently added gridliner, or nil.
func (ax *MapAxis) Gridliner() *Gridliner { return ax.gridliner }

type polygonLayer struct {
	polys []geom.Polygon
	fill  color.Color
	line  draw.LineStyle
}

func (l *polygonLayer) draw(fr *frame) error {
	fill := color.NRGBA{}
	if l.fill != nil {
		fill = color.NRGBAModel.Convert(l.fill).(color.NRGBA)
	}
	line := l.line
	if line.Color == nil {
		line = draw.LineStyle{Color: color.Transparent}
	}
	for _, dx := range fr.ext.lonShifts() {
		for _, p := range l.polys {
			if err := fr.carto.DrawVector(shiftPolygon(p, dx), fill, line, draw.GlyphStyle{}); err != nil {
				return err
			}
		}
	}
	return nil
}

type lineLayer struct {
	g    geom.MultiLineString
	line draw.LineStyle
}

func (l *lineLayer) draw(fr *frame) error {
	for _, dx := range fr.ext.lonShifts() {
		if err := fr.carto.DrawVector(shiftLines(l.g, dx), color.NRGBA{}, l.line, draw.GlyphStyle{}); err != nil {
			return err
		}
	}
	return nil
}

func shiftPolygon(p geom.Polygon, dx float64) geom.Polygon {
	if dx == 0 {
		return p
	}
	o := make(geom.Polygon, len(p))
	for i, r := range p {
		o[i] = make([]geom.Point, len(r))
		for j, pt := range r {
			o[i][j] = geom.Point{X: pt.X + dx, Y: pt.Y}
		}
	}
	return o
}

func shiftLines(ml geom.MultiLineString, dx float64) geom.MultiLineString {
	if dx == 0 {
		return ml
	}
	o := make(geom.MultiLineString, len(ml))
	for i, l := range ml {
		o[i] = make(geom.LineString, len(l))
		for j, pt := range l {
			o[i][j] = geom.Point{X: pt.X + dx, Y: pt.Y}
		}
	}
	return o
}

// DivergingPalette returns the blue-white-red palette used for
// anomalies, with n colors.
func DivergingPalette(n int) palette.Palette {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(0)
	cm.SetMax(1)
	return cm.Palette(n)
}

type heatLayer struct {
	grid     *Field2D
	min, max float64
}

func (l *heatLayer) draw(fr *frame) error {
	pal := DivergingPalette(255)
	cols := pal.Colors()
	h := plotter.NewHeatMap(l.grid, pal)
	h.Min, h.Max = l.min, l.max
	if !(h.Max > h.Min) {
		h.Max = h.Min + 1e-9*math.Max(1, math.Abs(h.Min))
	}
	h.Underflow = cols[0]
	h.Overflow = cols[len(cols)-1]
	h.NaN = color.Transparent
	h.Plot(fr.dc, fr.plt)
	return nil
}

// solidPalette is a palette with a single color.
type solidPalette struct{ c color.Color }

func (p solidPalette) Colors() []color.Color { return []color.Color{p.c} }

type contourLayer struct {
	grid   *Field2D
	levels []float64
	line   draw.LineStyle
}

func (l *contourLayer) draw(fr *frame) error {
	if c, r := l.grid.Dims(); c < 2 || r < 2 || len(l.levels) == 0 {
		return nil
	}
	col := l.line.Color
	if col == nil {
		col = color.Black
	}
	ct := plotter.NewContour(l.grid, l.levels, solidPalette{c: col})
	ct.LineStyles = []draw.LineStyle{l.line}
	ct.Min, ct.Max = math.Inf(-1), math.Inf(1)
	ct.Underflow, ct.Overflow = col, col
	ct.Plot(fr.dc, fr.plt)
	return nil
}

// draw draws the axis into dc, which is the part of the figure the
// axis may use, including room for the title and labels.
func (ax *MapAxis) draw(dc draw.Canvas) error {
	if err := ax.Extent.check(); err != nil {
		return err
	}
	s := ax.fig.Style
	ext := ax.Extent

	p := plot.New()
	s.ApplyTo(p)
	titleSty := p.Title.TextStyle
	labelSty := p.X.Label.TextStyle
	gl := ax.gridliner

	// Margins around the map frame.
	pad := vg.Points(s.AxesLabelPad)
	var top, bottom, left, right vg.Length
	if ax.Title != "" {
		top += titleSty.Height(ax.Title) + pad
	}
	if ax.XLabel != "" {
		bottom += labelSty.Height(ax.XLabel) + pad
	}
	if ax.YLabel != "" {
		left += labelSty.Height(ax.YLabel) + pad
	}
	if gl != nil {
		mt, mb, ml, mr := gl.margins(ext)
		top += mt
		bottom += mb
		left += ml
		right += mr
	}
	edge := vg.Points(s.FontSize) / 2
	inner := vg.Rectangle{
		Min: vg.Point{X: dc.Min.X + left + edge, Y: dc.Min.Y + bottom + edge},
		Max: vg.Point{X: dc.Max.X - right - edge, Y: dc.Max.Y - top - edge},
	}
	if inner.Max.X <= inner.Min.X || inner.Max.Y <= inner.Min.Y {
		return fmt.Errorf("sstmap: figure is too small for its labels: %w", ErrInvalidOptions)
	}

	// Equal-aspect map frame centered in the space left over.
	aspect := (ext.E - ext.W) / (ext.N - ext.S)
	w := inner.Max.X - inner.Min.X
	h := w / vg.Length(aspect)
	if hmax := inner.Max.Y - inner.Min.Y; h > hmax {
		h = hmax
		w = h * vg.Length(aspect)
	}
	cx := (inner.Min.X + inner.Max.X) / 2
	cy := (inner.Min.Y + inner.Max.Y) / 2
	mapRect := vg.Rectangle{
		Min: vg.Point{X: cx - w/2, Y: cy - h/2},
		Max: vg.Point{X: cx + w/2, Y: cy + h/2},
	}
	mapDC := draw.Canvas{Canvas: dc.Canvas, Rectangle: mapRect}

	p.X.Min, p.X.Max = ext.W, ext.E
	p.Y.Min, p.Y.Max = ext.S, ext.N
	fr := &frame{
		ext:   ext,
		dc:    mapDC,
		carto: carto.NewCanvas(ext.N, ext.S, ext.E, ext.W, mapDC),
		plt:   p,
	}

	mapDC.FillPolygon(s.FaceColor(), rectPath(mapRect))
	for i, l := range ax.layers {
		if err := l.draw(fr); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}

	// Mask everything outside of the map frame.
	bg := ax.fig.Background
	if bg == nil {
		bg = color.White
	}
	for _, r := range []vg.Rectangle{
		{Min: dc.Min, Max: vg.Point{X: dc.Max.X, Y: mapRect.Min.Y}},
		{Min: vg.Point{X: dc.Min.X, Y: mapRect.Max.Y}, Max: dc.Max},
		{Min: vg.Point{X: dc.Min.X, Y: mapRect.Min.Y}, Max: vg.Point{X: mapRect.Min.X, Y: mapRect.Max.Y}},
		{Min: vg.Point{X: mapRect.Max.X, Y: mapRect.Min.Y}, Max: vg.Point{X: dc.Max.X, Y: mapRect.Max.Y}},
	} {
		dc.FillPolygon(bg, rectPath(r))
	}

	border := draw.LineStyle{Color: color.Black, Width: vg.Points(Params.BorderWidth)}
	outline := rectPath(mapRect)
	dc.StrokeLines(border, append(outline, outline[0]))

	if gl != nil {
		gl.drawLabels(fr)
	}
	if ax.Title != "" {
		titleSty.XAlign, titleSty.YAlign = text.XCenter, text.YBottom
		dc.FillText(titleSty, vg.Point{X: cx, Y: mapRect.Max.Y + gl.topMargin(ext) + pad/2}, ax.Title)
	}
	if ax.XLabel != "" {
		labelSty.XAlign, labelSty.YAlign = text.XCenter, text.YTop
		dc.FillText(labelSty, vg.Point{X: cx, Y: mapRect.Min.Y - gl.bottomMargin(ext) - pad/2}, ax.XLabel)
	}
	if ax.YLabel != "" {
		sty := labelSty
		sty.Rotation = math.Pi / 2
		sty.XAlign, sty.YAlign = text.XCenter, text.YBottom
		dc.FillText(sty, vg.Point{X: mapRect.Min.X - gl.leftMargin(ext) - pad/2, Y: cy}, ax.YLabel)
	}
	return nil
}

func rectPath(r vg.Rectangle) []vg.Point {
	return []vg.Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
}
