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
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

func testRenderer(days int) *Renderer {
	g := coarseGrid()
	return &Renderer{
		Anomaly:    SyntheticAnomaly(2016, days, g),
		Bathymetry: SyntheticBathymetry(g),
		Paths:      SyntheticPaths(2016),
		Land:       SyntheticLand(),
		Style:      SetPlotStyle(1),
		Log:        logrus.New(),
	}
}

func TestRenderAllDays(t *testing.T) {
	r := testRenderer(366)
	for day := 0; day <= MaxDay; day++ {
		fig, err := r.Render(PlotOptions{Day: day, Year: 2016, DPI: 100})
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		if len(fig.Axes()) != 1 {
			t.Fatalf("day %d: %d axes", day, len(fig.Axes()))
		}
	}
	for _, day := range []int{-1, 366} {
		_, err := r.Render(PlotOptions{Day: day, Year: 2016, DPI: 100})
		if !errors.Is(err, ErrDayOutOfRange) {
			t.Errorf("day %d: err = %v; want ErrDayOutOfRange", day, err)
		}
	}
}

func TestRenderTitle(t *testing.T) {
	r := testRenderer(366)
	for _, test := range []struct {
		day  int
		want string
	}{
		{day: 0, want: "January 2016"},
		{day: 200, want: "July 2016"},
		{day: 365, want: "December 2016"},
	} {
		fig, err := r.Render(PlotOptions{Day: test.day, Year: 2016, DPI: 100})
		if err != nil {
			t.Fatal(err)
		}
		ax := fig.Axes()[0]
		if ax.Title != test.want {
			t.Errorf("day %d: title %q; want %q", test.day, ax.Title, test.want)
		}
		if ax.XLabel != "Longitude" || ax.YLabel != "Latitude" {
			t.Errorf("labels = %q, %q", ax.XLabel, ax.YLabel)
		}
		if ax.Extent != NWAtlantic {
			t.Errorf("extent = %+v", ax.Extent)
		}
		gl := ax.Gridliner()
		if gl == nil || gl.TopLabels || gl.RightLabels || !gl.BottomLabels || !gl.LeftLabels {
			t.Errorf("gridliner labels = %+v", gl)
		}
	}
}

func TestRenderColorScale(t *testing.T) {
	r := testRenderer(10)

	fig, err := r.Render(PlotOptions{Day: 3, Year: 2016, DPI: 100, ManualColorScale: true, ColorMin: -2, ColorMax: 2})
	if err != nil {
		t.Fatal(err)
	}
	min, max, ok := fig.Axes()[0].ColorScale()
	if !ok || min != -2 || max != 2 {
		t.Errorf("manual scale = [%g, %g] (%v); want [-2, 2]", min, max, ok)
	}

	fig, err = r.Render(PlotOptions{Day: 3, Year: 2016, DPI: 100})
	if err != nil {
		t.Fatal(err)
	}
	var vals []float64
	for _, v := range r.Anomaly.Data.Elements {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	min, max, _ = fig.Axes()[0].ColorScale()
	if min != floats.Min(vals) || max != floats.Max(vals) {
		t.Errorf("auto scale = [%g, %g]; want [%g, %g]", min, max, floats.Min(vals), floats.Max(vals))
	}

	fig, err = r.Render(PlotOptions{Day: 3, Year: 2016, DPI: 100, ManualColorScale: true, ColorMin: 1, ColorMax: 1})
	if err != nil {
		t.Fatal(err)
	}
	if min, max, _ = fig.Axes()[0].ColorScale(); min != 1 || max != 1 {
		t.Errorf("degenerate scale = [%g, %g]; want [1, 1]", min, max)
	}
	if _, err := fig.Image(); err != nil {
		t.Errorf("drawing degenerate scale: %v", err)
	}
}

type fixedBounds struct{ min, max float64 }

func (b fixedBounds) Bounds(int) (float64, float64, error) { return b.min, b.max, nil }

func TestRenderBoundsFinder(t *testing.T) {
	r := testRenderer(2)
	r.Bounds = fixedBounds{min: -5, max: 7}
	fig, err := r.Render(PlotOptions{Day: 1, Year: 2016, DPI: 100})
	if err != nil {
		t.Fatal(err)
	}
	if min, max, _ := fig.Axes()[0].ColorScale(); min != -5 || max != 7 {
		t.Errorf("scale = [%g, %g]; want [-5, 7]", min, max)
	}
}

func TestRenderInvalidOptions(t *testing.T) {
	r := testRenderer(2)
	for _, o := range []PlotOptions{
		{Day: 0, Year: 2016, DPI: 0},
		{Day: 0, Year: 2016, DPI: 100, ManualColorScale: true, ColorMin: 3, ColorMax: -3},
	} {
		if _, err := r.Render(o); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("%+v: err = %v; want ErrInvalidOptions", o, err)
		}
	}
}

func TestRenderNoPath(t *testing.T) {
	r := testRenderer(2)
	r.Paths = PathTable{}
	if _, err := r.Render(PlotOptions{Day: 0, Year: 2016, DPI: 100}); !errors.Is(err, ErrNoPath) {
		t.Errorf("err = %v; want ErrNoPath", err)
	}
}

func TestRenderImage(t *testing.T) {
	r := testRenderer(1)
	fig, err := r.Render(PlotOptions{Day: 0, Year: 2016, DPI: 50})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := fig.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("image size = %dx%d; want 320x240", b.Dx(), b.Dy())
	}
	c := color.NRGBAModel.Convert(img.At(b.Dx()/2, b.Dy()/2)).(color.NRGBA)
	if c == (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Error("center of the map is blank")
	}
}
