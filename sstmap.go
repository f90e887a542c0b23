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

// Package sstmap draws daily sea-surface-temperature anomaly maps,
// assembles them into looping animations, and provides the map background
// and plot style helpers shared by other ocean plotting workflows.
package sstmap

import (
	"errors"
	"fmt"

	"github.com/ctessum/geom"
)

// Version gives the version number.
const Version = "1.0.0"

// MaxDay is the largest valid day-of-year index. Day slots run from 0
// through MaxDay so that leap years are covered.
const MaxDay = 365

var (
	// ErrDayOutOfRange is returned when a day index is outside of
	// [0, MaxDay] or beyond the end of the data.
	ErrDayOutOfRange = errors.New("day index out of range")

	// ErrInvalidOptions is returned for inconsistent plot options.
	ErrInvalidOptions = errors.New("invalid plot options")

	// ErrDataUnavailable is returned when a dataset is missing or malformed.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrFrameName is returned when an image file name does not
	// parse as an integer frame number.
	ErrFrameName = errors.New("frame name is not an integer")

	// ErrNoPath is returned when no reference path exists for a month.
	ErrNoPath = errors.New("no reference path")
)

// Extent is a geographic bounding box in degrees.
type Extent struct {
	W, E, S, N float64
}

// NWAtlantic is the northwest Atlantic region shown by the
// anomaly renderer.
var NWAtlantic = Extent{W: -77, E: -48, S: 35, N: 53}

// NewExtent creates an extent from a [W, E, S, N] slice, which
// is the order used in configuration files.
func NewExtent(wesn []float64) (Extent, error) {
	if len(wesn) != 4 {
		return Extent{}, fmt.Errorf("sstmap: extent needs 4 values (W, E, S, N) but has %d", len(wesn))
	}
	e := Extent{W: wesn[0], E: wesn[1], S: wesn[2], N: wesn[3]}
	if err := e.check(); err != nil {
		return Extent{}, err
	}
	return e, nil
}

func (e Extent) check() error {
	if !(e.E > e.W) || !(e.N > e.S) {
		return fmt.Errorf("sstmap: invalid extent %+v", e)
	}
	return nil
}

// Bounds returns the extent as geometry bounds.
func (e Extent) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: e.W, Y: e.S},
		Max: geom.Point{X: e.E, Y: e.N},
	}
}

// Contains returns whether the point (lon, lat) is within the extent.
func (e Extent) Contains(lon, lat float64) bool {
	return lon >= e.W && lon <= e.E && lat >= e.S && lat <= e.N
}

// lonShifts returns the offsets, in degrees, that geometry in the
// [-180, 180] frame needs to be shifted by to show up in the extent.
func (e Extent) lonShifts() []float64 {
	s := []float64{0}
	if e.E > 180 {
		s = append(s, 360)
	}
	if e.W < -180 {
		s = append(s, -360)
	}
	return s
}

// wrapLon moves lon into the longitude frame of the extent, if it can.
func (e Extent) wrapLon(lon float64) float64 {
	switch {
	case lon < e.W && lon+360 <= e.E:
		return lon + 360
	case lon > e.E && lon-360 >= e.W:
		return lon - 360
	}
	return lon
}
