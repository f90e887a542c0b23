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
	"math"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// regularAxis returns n coordinates starting at start, dx apart.
func regularAxis(start, dx float64, n int) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = start + float64(i)*dx
	}
	return o
}

// SyntheticGrid is a half-degree grid covering the northwest Atlantic
// with some room to spare.
func SyntheticGrid() Grid {
	return Grid{
		Lon: regularAxis(-82, 0.5, 77),
		Lat: regularAxis(30, 0.5, 53),
	}
}

// SyntheticAnomaly returns a field of smooth, seasonally varying
// anomalies for each day of year, with a time axis. Cells that
// SyntheticLand covers are NaN, like the land mask of satellite data.
func SyntheticAnomaly(year, days int, g Grid) *AnomalyField {
	nx, ny := len(g.Lon), len(g.Lat)
	a := &AnomalyField{
		Grid: g,
		Time: make([]time.Time, days),
		Data: sparse.ZerosDense(days, ny, nx),
	}
	land := SyntheticLand()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for t := 0; t < days; t++ {
		a.Time[t] = start.AddDate(0, 0, t)
		phase := 2 * math.Pi * float64(t) / 365
		for j, lat := range g.Lat {
			for i, lon := range g.Lon {
				v := 3 * math.Sin(phase+lon/10) * math.Cos(lat/8)
				if onLand(land, lon, lat) {
					v = math.NaN()
				}
				a.Data.Set(v, t, j, i)
			}
		}
	}
	return a
}

// SyntheticBathymetry returns a sloping sea floor that deepens from
// the coast toward the open ocean, crossing the 100, 1000 and 4000 m
// isobaths.
func SyntheticBathymetry(g Grid) *BathymetryField {
	d := sparse.ZerosDense(len(g.Lat), len(g.Lon))
	for j, lat := range g.Lat {
		for i, lon := range g.Lon {
			d.Set(200-5000*(lon+82)/38-20*(lat-30), j, i)
		}
	}
	return &BathymetryField{Field2D: Field2D{Grid: g, Data: d}}
}

// SyntheticTopography returns a 0 to 360 degree elevation field
// covering the eastern Pacific and North America, with mountains in
// the west that cross 1000 m at 250°E.
func SyntheticTopography() *BathymetryField {
	g := Grid{Lon: regularAxis(200, 2, 60), Lat: regularAxis(0, 2, 35)}
	d := sparse.ZerosDense(len(g.Lat), len(g.Lon))
	for j := range g.Lat {
		for i, lon := range g.Lon {
			d.Set(3000-100*(lon-230), j, i)
		}
	}
	return &BathymetryField{Field2D: Field2D{Grid: g, Data: d}}
}

// SyntheticLand returns a coarse outline of the land bordering the
// northwest Atlantic.
func SyntheticLand() []geom.Polygon {
	return []geom.Polygon{
		{{
			{X: -85, Y: 30}, {X: -77, Y: 34}, {X: -74, Y: 40},
			{X: -70, Y: 42}, {X: -66, Y: 44}, {X: -60, Y: 46},
			{X: -53, Y: 47}, {X: -55, Y: 52}, {X: -60, Y: 56},
			{X: -85, Y: 56}, {X: -85, Y: 30},
		}},
	}
}

// SyntheticPaths returns a meandering reference path for each month
// of year.
func SyntheticPaths(year int) PathTable {
	t := make(PathTable)
	for m := time.January; m <= time.December; m++ {
		var l geom.LineString
		for lon := -75.0; lon <= -50; lon++ {
			lat := 35 + (lon+75)*0.3 + math.Sin(lon/3+float64(m))
			l = append(l, geom.Point{X: lon, Y: lat})
		}
		t[PathKey{Year: year, Month: m}] = geom.MultiLineString{l}
	}
	return t
}

func onLand(polys []geom.Polygon, lon, lat float64) bool {
	pt := geom.Point{X: lon, Y: lat}
	for _, p := range polys {
		if pt.Within(p) == geom.Inside {
			return true
		}
	}
	return false
}
