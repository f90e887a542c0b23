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
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

// coarseGrid is a two-degree grid that keeps tests fast.
func coarseGrid() Grid {
	return Grid{
		Lon: regularAxis(-80, 2, 17),
		Lat: regularAxis(32, 2, 12),
	}
}

func TestAnomalyFieldDay(t *testing.T) {
	a := SyntheticAnomaly(2016, 366, coarseGrid())
	if a.NumDays() != 366 {
		t.Fatalf("NumDays = %d; want 366", a.NumDays())
	}
	for _, day := range []int{0, 1, 200, 365} {
		d, err := a.Day(day)
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		c, r := d.Dims()
		if c != 17 || r != 12 {
			t.Errorf("day %d: dims = (%d, %d); want (17, 12)", day, c, r)
		}
		for j := 0; j < r; j++ {
			for i := 0; i < c; i++ {
				want := a.Data.Get(day, j, i)
				have := d.Z(i, j)
				if !(have == want || math.IsNaN(have) && math.IsNaN(want)) {
					t.Fatalf("day %d (%d, %d): have %g, want %g", day, i, j, have, want)
				}
			}
		}
	}
	for _, day := range []int{-1, 366, 400} {
		if _, err := a.Day(day); !errors.Is(err, ErrDayOutOfRange) {
			t.Errorf("day %d: err = %v; want ErrDayOutOfRange", day, err)
		}
	}
}

func TestAnomalyFieldDayBeyondData(t *testing.T) {
	a := SyntheticAnomaly(2015, 365, coarseGrid())
	if _, err := a.Day(364); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Day(365); !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("err = %v; want ErrDayOutOfRange", err)
	}
}

func TestAnomalyFieldDayNotThreeDimensional(t *testing.T) {
	g := coarseGrid()
	a := &AnomalyField{Grid: g, Data: sparse.ZerosDense(len(g.Lat), len(g.Lon))}
	if _, err := a.Day(0); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("err = %v; want ErrDataUnavailable", err)
	}
}

func TestMonth(t *testing.T) {
	a := SyntheticAnomaly(2016, 366, coarseGrid())
	noTime := &AnomalyField{Grid: a.Grid, Data: a.Data}
	tests := []struct {
		day  int
		want time.Month
	}{
		{day: 0, want: time.January},
		{day: 30, want: time.January},
		{day: 31, want: time.February},
		{day: 59, want: time.February}, // Feb 29 2016
		{day: 60, want: time.March},
		{day: 200, want: time.July},
		{day: 365, want: time.December},
	}
	for _, test := range tests {
		if m := a.Month(2016, test.day); m != test.want {
			t.Errorf("time axis, day %d: %s; want %s", test.day, m, test.want)
		}
		if m := noTime.Month(2016, test.day); m != test.want {
			t.Errorf("no time axis, day %d: %s; want %s", test.day, m, test.want)
		}
	}
	if m := MonthOf(2015, 59); m != time.March {
		t.Errorf("non-leap year day 59: %s; want March", m)
	}
}

func TestWindow(t *testing.T) {
	b := SyntheticBathymetry(coarseGrid())
	w, err := b.Window(Extent{W: -70, E: -60, S: 40, N: 44})
	if err != nil {
		t.Fatal(err)
	}
	// One extra cell on each side.
	if w.Lon[0] != -72 || w.Lon[len(w.Lon)-1] != -58 {
		t.Errorf("lon range = [%g, %g]; want [-72, -58]", w.Lon[0], w.Lon[len(w.Lon)-1])
	}
	if w.Lat[0] != 38 || w.Lat[len(w.Lat)-1] != 46 {
		t.Errorf("lat range = [%g, %g]; want [38, 46]", w.Lat[0], w.Lat[len(w.Lat)-1])
	}
	if have, want := w.Z(1, 1), b.Data.Get(4, 5); have != want {
		t.Errorf("value at (-70, 40) = %g; want %g", have, want)
	}

	c, err := b.Clip(Extent{W: -70, E: -60, S: 40, N: 44})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Lon) != 6 || len(c.Lat) != 3 {
		t.Errorf("clip dims = (%d, %d); want (6, 3)", len(c.Lon), len(c.Lat))
	}

	if _, err := b.Window(Extent{W: 10, E: 20, S: -10, N: 0}); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("err = %v; want ErrDataUnavailable", err)
	}
}

func TestWindowWrapsLongitude(t *testing.T) {
	// A 0 to 360 grid shown with a -180 to 180 extent.
	g := Grid{Lon: regularAxis(0, 10, 36), Lat: regularAxis(-10, 10, 3)}
	b := SyntheticBathymetry(g)
	w, err := b.Clip(Extent{W: -30, E: 30, S: -10, N: 10})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-30, -20, -10, 0, 10, 20, 30}
	if len(w.Lon) != len(want) {
		t.Fatalf("lon = %v; want %v", w.Lon, want)
	}
	for i, v := range want {
		if w.Lon[i] != v {
			t.Errorf("lon[%d] = %g; want %g", i, w.Lon[i], v)
		}
	}
	// -30 is 330 in the source grid.
	if have, want := w.Z(0, 0), b.Data.Get(0, 33); have != want {
		t.Errorf("value at -30 = %g; want %g", have, want)
	}
}

func TestNewExtent(t *testing.T) {
	e, err := NewExtent([]float64{235, 290, 15, 52})
	if err != nil {
		t.Fatal(err)
	}
	if e != (Extent{W: 235, E: 290, S: 15, N: 52}) {
		t.Errorf("extent = %+v", e)
	}
	if s := e.lonShifts(); len(s) != 2 || s[1] != 360 {
		t.Errorf("shifts = %v; want [0 360]", s)
	}
	for _, bad := range [][]float64{{1, 2, 3}, {10, 0, 0, 10}, {0, 10, 10, 0}} {
		if _, err := NewExtent(bad); err == nil {
			t.Errorf("%v: expected an error", bad)
		}
	}
}
