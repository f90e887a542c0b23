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
	"math"
	"sort"
	"time"

	"github.com/ctessum/sparse"
)

// Grid holds the coordinates of a regular longitude/latitude grid.
// Both coordinate vectors are increasing.
type Grid struct {
	Lon, Lat []float64
}

func (g Grid) check() error {
	if len(g.Lon) == 0 || len(g.Lat) == 0 {
		return fmt.Errorf("sstmap: empty grid (%d lon, %d lat): %w", len(g.Lon), len(g.Lat), ErrDataUnavailable)
	}
	for _, v := range [][]float64{g.Lon, g.Lat} {
		for i := 1; i < len(v); i++ {
			if !(v[i] > v[i-1]) {
				return fmt.Errorf("sstmap: grid coordinates are not increasing at index %d: %w", i, ErrDataUnavailable)
			}
		}
	}
	return nil
}

// spacing returns the mean distance between neighboring coordinates.
func spacing(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	return (v[len(v)-1] - v[0]) / float64(len(v)-1)
}

// Field2D is a [lat, lon] array of gridded values. It satisfies
// gonum.org/v1/plot/plotter.GridXYZ, so it can be handed directly to
// heat map and contour plotters.
type Field2D struct {
	Grid
	Data *sparse.DenseArray
}

// NewField2D wraps data shaped [len(g.Lat), len(g.Lon)] with its grid.
func NewField2D(g Grid, data *sparse.DenseArray) (*Field2D, error) {
	if err := g.check(); err != nil {
		return nil, err
	}
	if len(data.Shape) != 2 || data.Shape[0] != len(g.Lat) || data.Shape[1] != len(g.Lon) {
		return nil, fmt.Errorf("sstmap: data shape %v does not match grid [%d %d]: %w",
			data.Shape, len(g.Lat), len(g.Lon), ErrDataUnavailable)
	}
	return &Field2D{Grid: g, Data: data}, nil
}

// Dims returns the number of columns (longitudes) and rows (latitudes).
func (f *Field2D) Dims() (c, r int) { return len(f.Lon), len(f.Lat) }

// X returns the longitude of column c.
func (f *Field2D) X(c int) float64 { return f.Lon[c] }

// Y returns the latitude of row r.
func (f *Field2D) Y(r int) float64 { return f.Lat[r] }

// Z returns the value at column c and row r.
func (f *Field2D) Z(c, r int) float64 { return f.Data.Elements[r*len(f.Lon)+c] }

// Finite returns all of the values in the field that are not NaN or
// infinite.
func (f *Field2D) Finite() []float64 {
	o := make([]float64, 0, len(f.Data.Elements))
	for _, v := range f.Data.Elements {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			o = append(o, v)
		}
	}
	return o
}

// Window returns the part of the field that falls within ext, padded
// by one grid cell on each side so that the field covers the edges of
// the extent. Longitudes are moved into the longitude frame of ext, so a
// 0 to 360 grid can be windowed with a -180 to 180 extent and vice versa.
func (f *Field2D) Window(ext Extent) (*Field2D, error) { return f.window(ext, true) }

// Clip returns the part of the field that falls within ext, without
// padding.
func (f *Field2D) Clip(ext Extent) (*Field2D, error) { return f.window(ext, false) }

func (f *Field2D) window(ext Extent, pad bool) (*Field2D, error) {
	var dx, dy float64
	if pad {
		dx, dy = spacing(f.Lon), spacing(f.Lat)
	}
	type col struct {
		i   int
		lon float64
	}
	var cols []col
	for i, lon := range f.Lon {
		w := ext.wrapLon(lon)
		if w >= ext.W-dx && w <= ext.E+dx {
			cols = append(cols, col{i: i, lon: w})
		}
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].lon < cols[j].lon })
	var rows []int
	for j, lat := range f.Lat {
		if lat >= ext.S-dy && lat <= ext.N+dy {
			rows = append(rows, j)
		}
	}
	if len(cols) == 0 || len(rows) == 0 {
		return nil, fmt.Errorf("sstmap: no grid cells within %+v: %w", ext, ErrDataUnavailable)
	}
	o := &Field2D{
		Grid: Grid{Lon: make([]float64, len(cols)), Lat: make([]float64, len(rows))},
		Data: sparse.ZerosDense(len(rows), len(cols)),
	}
	for ii, c := range cols {
		o.Lon[ii] = c.lon
	}
	nx := len(f.Lon)
	for jj, j := range rows {
		o.Lat[jj] = f.Lat[j]
		for ii, c := range cols {
			o.Data.Elements[jj*len(cols)+ii] = f.Data.Elements[j*nx+c.i]
		}
	}
	return o, nil
}

// AnomalyField holds daily sea-surface-temperature anomalies in
// degrees Celsius, shaped [time, lat, lon]. Fill values are NaN.
type AnomalyField struct {
	Grid

	// Time holds the date of each day slot. It may be nil when the
	// dataset has no time axis.
	Time []time.Time

	Data *sparse.DenseArray
}

// NumDays returns the number of day slots in the field.
func (f *AnomalyField) NumDays() int {
	if f.Data == nil || len(f.Data.Shape) == 0 {
		return 0
	}
	return f.Data.Shape[0]
}

// Day returns the two-dimensional slice of the field for day slot
// i, where 0 is January 1.
func (f *AnomalyField) Day(i int) (*Field2D, error) {
	if i < 0 || i > MaxDay || i >= f.NumDays() {
		return nil, fmt.Errorf("sstmap: day %d with %d days of data: %w", i, f.NumDays(), ErrDayOutOfRange)
	}
	if len(f.Data.Shape) != 3 {
		return nil, fmt.Errorf("sstmap: anomaly data has shape %v, not [time, lat, lon]: %w", f.Data.Shape, ErrDataUnavailable)
	}
	ny, nx := f.Data.Shape[1], f.Data.Shape[2]
	if len(f.Data.Elements) < f.NumDays()*nx*ny {
		return nil, fmt.Errorf("sstmap: anomaly data is shorter than its shape %v: %w", f.Data.Shape, ErrDataUnavailable)
	}
	d := sparse.ZerosDense(ny, nx)
	copy(d.Elements, f.Data.Elements[i*nx*ny:(i+1)*nx*ny])
	return &Field2D{Grid: f.Grid, Data: d}, nil
}

// Month returns the calendar month of day slot i. The time axis is
// used when present; otherwise the month is computed from the year
// and the day-of-year index.
func (f *AnomalyField) Month(year, i int) time.Month {
	if i >= 0 && i < len(f.Time) {
		return f.Time[i].Month()
	}
	return MonthOf(year, i)
}

// MonthOf returns the month that contains zero-based day-of-year
// index day in the given year.
func MonthOf(year, day int) time.Month {
	return time.Date(year, time.January, 1+day, 0, 0, 0, 0, time.UTC).Month()
}

// BathymetryField holds sea-floor elevation in meters, negative below
// sea level, shaped [lat, lon].
type BathymetryField struct {
	Field2D
}

// Clip returns the part of the bathymetry that falls within ext.
func (b *BathymetryField) Clip(ext Extent) (*BathymetryField, error) {
	c, err := b.Field2D.Clip(ext)
	if err != nil {
		return nil, err
	}
	return &BathymetryField{Field2D: *c}, nil
}
