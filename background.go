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

	"github.com/ctessum/geom"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// TopographyLoader loads the static topography dataset.
type TopographyLoader interface {
	LoadTopography() (*BathymetryField, error)
}

// TopographyFile loads topography from a NetCDF file with X, Y and
// bath variables.
type TopographyFile string

// LoadTopography reads the file.
func (f TopographyFile) LoadTopography() (*BathymetryField, error) {
	return OpenTopography(string(f))
}

// TopographyClip is the region of the topography that is contoured.
var TopographyClip = Extent{W: 230, E: 300, S: 15, N: 52}

// TopographyLevels are the contour levels drawn from the topography.
var TopographyLevels = []float64{-10000, 1000}

// BackgroundOptions specifies a map background.
type BackgroundOptions struct {
	Extent Extent

	// XTicks and YTicks are the gridline longitudes and latitudes.
	XTicks, YTicks []float64

	// Alpha is the gridline opacity, between 0 and 1.
	Alpha float64

	// PlotTopo adds topography contours.
	PlotTopo bool
}

// Background prepares map axes for plotting spatial data: coastlines,
// dashed gridlines labeled on the bottom and left, and optionally the
// 1000 m topography contour.
type Background struct {
	Style Style

	// Land holds the coastline polygons.
	Land []geom.Polygon

	// Topography is used when PlotTopo is set.
	Topography TopographyLoader
}

// Setup draws the background onto ax and returns it along with its
// gridliner, which the caller may adjust further.
func (b *Background) Setup(ax *MapAxis, o BackgroundOptions) (*MapAxis, *Gridliner, error) {
	if o.Alpha < 0 || o.Alpha > 1 {
		return nil, nil, fmt.Errorf("sstmap: gridline alpha %g is not between 0 and 1: %w", o.Alpha, ErrInvalidOptions)
	}
	if err := o.Extent.check(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", err, ErrInvalidOptions)
	}
	s := b.Style
	if s.DPI == 0 {
		s = BaseStyle()
	}

	// The topography is loaded before ax is changed so that a failure
	// leaves ax as it was.
	var topo *Field2D
	if o.PlotTopo {
		if b.Topography == nil {
			return nil, nil, fmt.Errorf("sstmap: no topography source: %w", ErrDataUnavailable)
		}
		full, err := b.Topography.LoadTopography()
		if err != nil {
			return nil, nil, fmt.Errorf("sstmap: loading topography: %w", err)
		}
		if topo, err = full.Field2D.Clip(TopographyClip); err != nil {
			return nil, nil, fmt.Errorf("sstmap: clipping topography: %w", err)
		}
		if _, err := topo.Window(o.Extent); err != nil {
			return nil, nil, fmt.Errorf("sstmap: topography does not cover the map: %w", err)
		}
	}

	if err := ax.SetExtent(o.Extent); err != nil {
		return nil, nil, err
	}
	if b.Land != nil {
		ax.Coastlines(b.Land, draw.LineStyle{Color: color.Black, Width: vg.Points(s.ContourLineWidth)})
	}

	w := vg.Points(Params.GridlineWidth)
	gl := ax.Gridlines(o.XTicks, o.YTicks, draw.LineStyle{
		Color:  color.NRGBA{A: uint8(o.Alpha*255 + 0.5)},
		Width:  w,
		Dashes: []vg.Length{3.7 * w, 1.6 * w},
	})
	gl.TopLabels = false
	gl.RightLabels = false
	gl.XLabelSize = vg.Points(s.XTickLabelSize)
	gl.YLabelSize = vg.Points(s.YTickLabelSize)

	if topo != nil {
		ls := draw.LineStyle{Color: color.Black, Width: vg.Points(s.ContourLineWidth / 2)}
		if err := ax.Contour(topo, TopographyLevels, ls); err != nil {
			return nil, nil, err
		}
	}
	return ax, gl, nil
}
