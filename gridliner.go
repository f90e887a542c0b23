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
	"image/color"
	"math"
	"strconv"

	"github.com/ctessum/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Gridliner draws longitude and latitude lines on a map, with labels
// outside of the map frame. Its fields may be changed until the figure
// is drawn.
type Gridliner struct {
	// XTicks and YTicks are the longitudes and latitudes of the lines.
	// When nil, positions are chosen automatically.
	XTicks, YTicks []float64

	LineStyle draw.LineStyle

	TopLabels, RightLabels, BottomLabels, LeftLabels bool

	XLabelSize, YLabelSize vg.Length

	XFormatter, YFormatter func(float64) string

	// LabelPad is the distance between the map frame and the labels.
	LabelPad vg.Length
}

type tick struct {
	pos   float64
	label string
}

func autoTicks(min, max float64) []float64 {
	var o []float64
	for _, t := range (plot.DefaultTicks{}).Ticks(min, max) {
		if t.Label != "" {
			o = append(o, t.Value)
		}
	}
	return o
}

func (g *Gridliner) xticks(ext Extent) []tick {
	vals := g.XTicks
	if vals == nil {
		vals = autoTicks(ext.W, ext.E)
	}
	f := g.XFormatter
	if f == nil {
		f = LongitudeFormatter
	}
	var o []tick
	for _, v := range vals {
		x := ext.wrapLon(v)
		if x >= ext.W && x <= ext.E {
			o = append(o, tick{pos: x, label: f(v)})
		}
	}
	return o
}

func (g *Gridliner) yticks(ext Extent) []tick {
	vals := g.YTicks
	if vals == nil {
		vals = autoTicks(ext.S, ext.N)
	}
	f := g.YFormatter
	if f == nil {
		f = LatitudeFormatter
	}
	var o []tick
	for _, v := range vals {
		if v >= ext.S && v <= ext.N {
			o = append(o, tick{pos: v, label: f(v)})
		}
	}
	return o
}

// labelStyle returns the text style used for tick labels.
func labelStyle(size vg.Length) text.Style {
	sty := plot.New().X.Tick.Label
	sty.Font.Size = size
	return sty
}

// draw draws the grid lines.
func (g *Gridliner) draw(fr *frame) error {
	ls := g.LineStyle
	if ls.Color == nil {
		ls.Color = color.Black
	}
	for _, t := range g.xticks(fr.ext) {
		p1 := fr.carto.Coordinates(geom.Point{X: t.pos, Y: fr.ext.S})
		p2 := fr.carto.Coordinates(geom.Point{X: t.pos, Y: fr.ext.N})
		fr.dc.StrokeLine2(ls, p1.X, p1.Y, p2.X, p2.Y)
	}
	for _, t := range g.yticks(fr.ext) {
		p1 := fr.carto.Coordinates(geom.Point{X: fr.ext.W, Y: t.pos})
		p2 := fr.carto.Coordinates(geom.Point{X: fr.ext.E, Y: t.pos})
		fr.dc.StrokeLine2(ls, p1.X, p1.Y, p2.X, p2.Y)
	}
	return nil
}

// margins returns the space needed outside of the map frame for
// the labels.
func (g *Gridliner) margins(ext Extent) (top, bottom, left, right vg.Length) {
	if g == nil {
		return 0, 0, 0, 0
	}
	xsty, ysty := labelStyle(g.XLabelSize), labelStyle(g.YLabelSize)
	var xh, xw, yw vg.Length
	for _, t := range g.xticks(ext) {
		xh = vg.Length(math.Max(float64(xh), float64(xsty.Height(t.label))))
		xw = vg.Length(math.Max(float64(xw), float64(xsty.Width(t.label))))
	}
	for _, t := range g.yticks(ext) {
		yw = vg.Length(math.Max(float64(yw), float64(ysty.Width(t.label))))
	}
	if xh > 0 {
		if g.TopLabels {
			top = xh + g.LabelPad
		}
		if g.BottomLabels {
			bottom = xh + g.LabelPad
		}
		if g.TopLabels || g.BottomLabels {
			right = xw / 2
		}
	}
	if yw > 0 {
		if g.LeftLabels {
			left = yw + g.LabelPad
		}
		if g.RightLabels {
			right = vg.Length(math.Max(float64(right), float64(yw+g.LabelPad)))
		}
	}
	return top, bottom, left, right
}

func (g *Gridliner) topMargin(ext Extent) vg.Length {
	t, _, _, _ := g.margins(ext)
	return t
}

func (g *Gridliner) bottomMargin(ext Extent) vg.Length {
	_, b, _, _ := g.margins(ext)
	return b
}

func (g *Gridliner) leftMargin(ext Extent) vg.Length {
	_, _, l, _ := g.margins(ext)
	return l
}

// drawLabels draws the tick labels around the map frame.
func (g *Gridliner) drawLabels(fr *frame) {
	r := fr.dc.Rectangle
	xsty, ysty := labelStyle(g.XLabelSize), labelStyle(g.YLabelSize)
	for _, t := range g.xticks(fr.ext) {
		x := fr.carto.Coordinates(geom.Point{X: t.pos, Y: fr.ext.S}).X
		if g.BottomLabels {
			xsty.XAlign, xsty.YAlign = text.XCenter, text.YTop
			fr.dc.FillText(xsty, vg.Point{X: x, Y: r.Min.Y - g.LabelPad}, t.label)
		}
		if g.TopLabels {
			xsty.XAlign, xsty.YAlign = text.XCenter, text.YBottom
			fr.dc.FillText(xsty, vg.Point{X: x, Y: r.Max.Y + g.LabelPad}, t.label)
		}
	}
	for _, t := range g.yticks(fr.ext) {
		y := fr.carto.Coordinates(geom.Point{X: fr.ext.W, Y: t.pos}).Y
		if g.LeftLabels {
			ysty.XAlign, ysty.YAlign = text.XRight, text.YCenter
			fr.dc.FillText(ysty, vg.Point{X: r.Min.X - g.LabelPad, Y: y}, t.label)
		}
		if g.RightLabels {
			ysty.XAlign, ysty.YAlign = text.XLeft, text.YCenter
			fr.dc.FillText(ysty, vg.Point{X: r.Max.X + g.LabelPad, Y: y}, t.label)
		}
	}
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64) + "°"
}

// LongitudeFormatter formats a longitude like "75°W". Longitudes
// outside of [-180, 180] are wrapped first, so 285 is "75°W".
func LongitudeFormatter(lon float64) string {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	lon -= 180
	switch {
	case lon == -180 || lon == 180:
		return formatDegrees(180)
	case lon < 0:
		return formatDegrees(-lon) + "W"
	case lon > 0:
		return formatDegrees(lon) + "E"
	}
	return formatDegrees(0)
}

// LatitudeFormatter formats a latitude like "45°N".
func LatitudeFormatter(lat float64) string {
	switch {
	case lat < 0:
		return formatDegrees(-lat) + "S"
	case lat > 0:
		return formatDegrees(lat) + "N"
	}
	return formatDegrees(0)
}
