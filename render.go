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
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotOptions specifies one daily anomaly figure.
type PlotOptions struct {
	// Day is the zero-based day of the year, 0 through 365.
	Day int

	// Year is used for the title, the reference path and the
	// automatic color scale.
	Year int

	// DPI is the figure resolution in dots per inch.
	DPI int

	// ManualColorScale selects [ColorMin, ColorMax] as the color
	// scale instead of the bounds of the year's data.
	ManualColorScale   bool
	ColorMin, ColorMax float64
}

// Validate checks the options for consistency.
func (o PlotOptions) Validate() error {
	if o.DPI <= 0 {
		return fmt.Errorf("sstmap: dpi must be positive but is %d: %w", o.DPI, ErrInvalidOptions)
	}
	if o.ManualColorScale && o.ColorMin > o.ColorMax {
		return fmt.Errorf("sstmap: color scale minimum %g is greater than maximum %g: %w",
			o.ColorMin, o.ColorMax, ErrInvalidOptions)
	}
	return nil
}

// BoundsFinder finds the color-scale bounds for a year of anomaly data.
type BoundsFinder interface {
	Bounds(year int) (min, max float64, err error)
}

// FieldBounds is a BoundsFinder that returns the smallest and largest
// finite values in a field, whatever the year.
type FieldBounds struct {
	Field *AnomalyField
}

// Bounds returns the range of the field's finite values.
func (b FieldBounds) Bounds(year int) (min, max float64, err error) {
	if b.Field == nil || b.Field.Data == nil {
		return 0, 0, fmt.Errorf("sstmap: no anomaly data for %d: %w", year, ErrDataUnavailable)
	}
	f := &Field2D{Data: b.Field.Data}
	vals := f.Finite()
	if len(vals) == 0 {
		return 0, 0, fmt.Errorf("sstmap: anomaly data for %d has no finite values: %w", year, ErrDataUnavailable)
	}
	return floats.Min(vals), floats.Max(vals), nil
}

// PathLookup returns the monthly reference current path.
type PathLookup interface {
	Path(year int, month time.Month) (geom.MultiLineString, error)
}

// DefaultIsobaths are the depths, in meters, of the bathymetry contours
// drawn on anomaly figures.
var DefaultIsobaths = []float64{-4000, -1000, -100}

var (
	lightGray = color.NRGBA{R: 211, G: 211, B: 211, A: 255}
	gray      = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
)

// Renderer draws daily anomaly figures.
type Renderer struct {
	Anomaly    *AnomalyField
	Bathymetry *BathymetryField

	// Bounds finds the color scale when it is not set manually.
	// If nil, the bounds of Anomaly are used.
	Bounds BoundsFinder

	// Paths supplies the reference current path. If nil, no path is
	// drawn.
	Paths PathLookup

	// Land holds the land polygons, which are shaded and outlined.
	// If nil, the figure has no coastlines and a warning is logged.
	Land []geom.Polygon

	// Style is the figure style. If its DPI is zero, BaseStyle
	// is used.
	Style Style

	// Extent is the map region. The zero value means NWAtlantic.
	Extent Extent

	// Isobaths are the bathymetry contour depths. If nil,
	// DefaultIsobaths is used.
	Isobaths []float64

	// Log receives progress messages. If nil, the standard logger
	// is used.
	Log logrus.FieldLogger
}

func (r *Renderer) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// ColorScale returns the color-scale bounds for o.
func (r *Renderer) ColorScale(o PlotOptions) (min, max float64, err error) {
	if o.ManualColorScale {
		return o.ColorMin, o.ColorMax, nil
	}
	b := r.Bounds
	if b == nil {
		b = FieldBounds{Field: r.Anomaly}
	}
	min, max, err = b.Bounds(o.Year)
	if err != nil {
		return 0, 0, fmt.Errorf("sstmap: finding color scale for %d: %w", o.Year, err)
	}
	return min, max, nil
}

// Render draws the anomaly figure for one day. No files are written.
func (r *Renderer) Render(o PlotOptions) (*Figure, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if r.Anomaly == nil {
		return nil, fmt.Errorf("sstmap: no anomaly data: %w", ErrDataUnavailable)
	}
	day, err := r.Anomaly.Day(o.Day)
	if err != nil {
		return nil, err
	}
	min, max, err := r.ColorScale(o)
	if err != nil {
		return nil, err
	}
	ext := r.Extent
	if ext == (Extent{}) {
		ext = NWAtlantic
	}
	month := r.Anomaly.Month(o.Year, o.Day)
	log := r.log().WithFields(logrus.Fields{
		"day":   o.Day,
		"year":  o.Year,
		"month": month,
	})
	log.Debugf("rendering with color scale [%g, %g]", min, max)

	s := r.Style
	if s.DPI == 0 {
		s = BaseStyle()
	}
	w := vg.Length(Params.MaxWidth) * vg.Inch
	fig := NewFigure(w, w*0.75, o.DPI, s)
	ax := fig.AddMap(ext)

	if err := ax.HeatMap(day, min, max); err != nil {
		return nil, err
	}
	ax.Title = fmt.Sprintf("%s %d", month, o.Year)
	ax.XLabel = "Longitude"
	ax.YLabel = "Latitude"

	if r.Bathymetry != nil {
		levels := r.Isobaths
		if levels == nil {
			levels = DefaultIsobaths
		}
		ls := draw.LineStyle{Color: gray, Width: vg.Points(s.LineWidth)}
		if err := ax.Contour(&r.Bathymetry.Field2D, levels, ls); err != nil {
			return nil, err
		}
	}
	if r.Land != nil {
		ax.Land(r.Land, lightGray)
		ax.Coastlines(r.Land, draw.LineStyle{Color: gray, Width: vg.Points(s.LineWidth)})
	} else {
		log.Warn("no land polygons; the figure will have no coastlines")
	}
	if r.Paths != nil {
		path, err := r.Paths.Path(o.Year, month)
		if err != nil {
			return nil, err
		}
		ax.Line(path, draw.LineStyle{Color: color.Black, Width: vg.Points(s.LineWidth)})
	}

	gl := ax.Gridlines(nil, nil, draw.LineStyle{
		Color: color.NRGBA{A: 64},
		Width: vg.Points(Params.GridlineWidth),
	})
	gl.TopLabels = false
	gl.RightLabels = false
	return fig, nil
}
