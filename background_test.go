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
	"errors"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot/vg"
)

func demoOptions() BackgroundOptions {
	return BackgroundOptions{
		Extent:   Extent{W: 235, E: 290, S: 15, N: 52},
		XTicks:   []float64{-120, -105, -90, -75},
		YTicks:   []float64{20, 30, 40, 50},
		Alpha:    0.1,
		PlotTopo: true,
	}
}

// writeTopography writes a 0 to 360 topography file.
func writeTopography(t *testing.T) TopographyFile {
	b := SyntheticTopography()
	f := createFile(t, "topo.nc")
	if err := CreateBathymetryFile(f, TopographyVars, b); err != nil {
		t.Fatal(err)
	}
	return TopographyFile(f.Name())
}

func TestBackgroundSetup(t *testing.T) {
	s := SetPlotStyle(1)
	b := &Background{Style: s, Land: SyntheticLand(), Topography: writeTopography(t)}
	fig := NewFigure(3*vg.Inch, 2*vg.Inch, 100, s)
	ax, gl, err := b.Setup(fig.AddMap(NWAtlantic), demoOptions())
	if err != nil {
		t.Fatal(err)
	}
	if ax.Extent != demoOptions().Extent {
		t.Errorf("extent = %+v", ax.Extent)
	}
	if gl.TopLabels || gl.RightLabels || !gl.BottomLabels || !gl.LeftLabels {
		t.Errorf("labels = %+v", gl)
	}
	if gl.XLabelSize != vg.Points(s.XTickLabelSize) || gl.YLabelSize != vg.Points(s.YTickLabelSize) {
		t.Errorf("label sizes = %v, %v", gl.XLabelSize, gl.YLabelSize)
	}
	if gl.LineStyle.Width != vg.Points(Params.GridlineWidth) || len(gl.LineStyle.Dashes) == 0 {
		t.Errorf("line style = %+v", gl.LineStyle)
	}
	if _, _, _, a := gl.LineStyle.Color.RGBA(); a != 0x1a1a {
		t.Errorf("gridline alpha = %#x; want %#x", a, 0x1a1a)
	}
	// Coastlines, gridlines and the topography contour.
	if len(ax.layers) != 3 {
		t.Errorf("%d layers; want 3", len(ax.layers))
	}
	// The caller can still change the gridliner.
	gl.XTicks = []float64{-100}
	img, err := fig.Image()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 200 {
		t.Errorf("size = %v", img.Bounds())
	}
}

func TestBackgroundNoTopography(t *testing.T) {
	o := demoOptions()
	b := &Background{Style: SetPlotStyle(1), Topography: TopographyFile(filepath.Join(t.TempDir(), "topo.nc"))}
	fig := NewFigure(3*vg.Inch, 2*vg.Inch, 100, b.Style)
	failed := fig.AddMap(NWAtlantic)
	failed.Title = "unchanged"
	if _, _, err := b.Setup(failed, o); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("err = %v; want ErrDataUnavailable", err)
	}
	if len(failed.layers) != 0 || failed.Extent != NWAtlantic || failed.Title != "unchanged" {
		t.Errorf("failed setup changed the axis: %d layers, extent %+v", len(failed.layers), failed.Extent)
	}

	o.PlotTopo = false
	ax, gl, err := b.Setup(fig.AddMap(o.Extent), o)
	if err != nil {
		t.Fatal(err)
	}
	if ax == nil || gl == nil {
		t.Fatal("nil axis or gridliner")
	}
	if len(ax.layers) != 1 {
		t.Errorf("%d layers; want 1", len(ax.layers))
	}
}

func TestBackgroundInvalid(t *testing.T) {
	b := &Background{Style: SetPlotStyle(1)}
	fig := NewFigure(3*vg.Inch, 2*vg.Inch, 100, b.Style)
	o := demoOptions()
	o.PlotTopo = false
	o.Alpha = 2
	if _, _, err := b.Setup(fig.AddMap(o.Extent), o); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("alpha: err = %v; want ErrInvalidOptions", err)
	}
	o.Alpha = 0.5
	o.Extent = Extent{W: 290, E: 235, S: 15, N: 52}
	if _, _, err := b.Setup(fig.AddMap(NWAtlantic), o); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("extent: err = %v; want ErrInvalidOptions", err)
	}
}
