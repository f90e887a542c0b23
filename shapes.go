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
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
)

// LonLatProj is the spatial reference of map coordinates.
const LonLatProj = "+proj=longlat +units=degrees"

// PathKey identifies a monthly reference path.
type PathKey struct {
	Year  int
	Month time.Month
}

// PathTable is a PathLookup held in memory.
type PathTable map[PathKey]geom.MultiLineString

// Path returns the path for the given year and month.
func (t PathTable) Path(year int, month time.Month) (geom.MultiLineString, error) {
	p, ok := t[PathKey{Year: year, Month: month}]
	if !ok {
		return nil, fmt.Errorf("sstmap: %s %d: %w", month, year, ErrNoPath)
	}
	return p, nil
}

// Keys returns the keys of the table in chronological order.
func (t PathTable) Keys() []PathKey {
	o := make([]PathKey, 0, len(t))
	for k := range t {
		o = append(o, k)
	}
	sort.Slice(o, func(i, j int) bool {
		if o[i].Year != o[j].Year {
			return o[i].Year < o[j].Year
		}
		return o[i].Month < o[j].Month
	})
	return o
}

// PathRecord is a shapefile record holding a reference path.
type PathRecord struct {
	geom.Geom
	Year  int `shp:"YEAR"`
	Month int `shp:"MONTH"`
}

// lonLatTransform returns a function that converts geometry from
// the spatial reference in the .prj file next to the shapefile to
// longitude and latitude. The identity is returned when there is no
// .prj file.
func lonLatTransform(d *shp.Decoder, fname string) (func(geom.Geom) (geom.Geom, error), error) {
	sr, err := d.SR()
	if os.IsNotExist(err) {
		return func(g geom.Geom) (geom.Geom, error) { return g, nil }, nil
	} else if err != nil {
		return nil, fmt.Errorf("sstmap: reading projection of %s: %w", fname, err)
	}
	dst, err := proj.Parse(LonLatProj)
	if err != nil {
		return nil, err
	}
	trans, err := sr.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("sstmap: reprojecting %s: %w", fname, err)
	}
	return func(g geom.Geom) (geom.Geom, error) { return g.Transform(trans) }, nil
}

func openShapefile(fname string) (*shp.Decoder, string, error) {
	fname = strings.TrimSuffix(os.ExpandEnv(fname), ".shp")
	d, err := shp.NewDecoder(fname + ".shp")
	if err != nil {
		return nil, fname, fmt.Errorf("sstmap: opening shapefile %s: %w: %w", fname, err, ErrDataUnavailable)
	}
	return d, fname, nil
}

// ReadPathShapefile reads monthly reference paths from a polyline
// shapefile with YEAR and MONTH attributes. Records for the same
// month are joined.
func ReadPathShapefile(fname string) (PathTable, error) {
	d, fname, err := openShapefile(fname)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	transform, err := lonLatTransform(d, fname)
	if err != nil {
		return nil, err
	}
	t := make(PathTable)
	for {
		var rec PathRecord
		if ok := d.DecodeRow(&rec); !ok {
			break
		}
		if rec.Month < 1 || rec.Month > 12 {
			return nil, fmt.Errorf("sstmap: shapefile %s: invalid month %d", fname, rec.Month)
		}
		g, err := transform(rec.Geom)
		if err != nil {
			return nil, fmt.Errorf("sstmap: reprojecting %s: %w", fname, err)
		}
		k := PathKey{Year: rec.Year, Month: time.Month(rec.Month)}
		switch l := g.(type) {
		case geom.MultiLineString:
			t[k] = append(t[k], l...)
		case geom.LineString:
			t[k] = append(t[k], l)
		default:
			return nil, fmt.Errorf("sstmap: shapefile %s: path geometry is %T, not a line", fname, g)
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("sstmap: reading shapefile %s: %w: %w", fname, err, ErrDataUnavailable)
	}
	return t, nil
}

// ReadLandShapefile reads land polygons, such as Natural Earth land
// or coastline data, from a polygon shapefile.
func ReadLandShapefile(fname string) ([]geom.Polygon, error) {
	d, fname, err := openShapefile(fname)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	transform, err := lonLatTransform(d, fname)
	if err != nil {
		return nil, err
	}
	var o []geom.Polygon
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		g, err = transform(g)
		if err != nil {
			return nil, fmt.Errorf("sstmap: reprojecting %s: %w", fname, err)
		}
		switch p := g.(type) {
		case geom.Polygon:
			o = append(o, p)
		case geom.MultiPolygon:
			o = append(o, p...)
		default:
			return nil, fmt.Errorf("sstmap: shapefile %s: land geometry is %T, not a polygon", fname, g)
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("sstmap: reading shapefile %s: %w: %w", fname, err, ErrDataUnavailable)
	}
	return o, nil
}

type pathArchetype struct {
	geom.MultiLineString
	Year  int `shp:"YEAR"`
	Month int `shp:"MONTH"`
}

type landArchetype struct {
	geom.Polygon
	Name string `shp:"NAME"`
}

// WritePathShapefile writes the paths in t to a polyline shapefile
// that can be read by ReadPathShapefile.
func WritePathShapefile(fname string, t PathTable) error {
	fname = strings.TrimSuffix(os.ExpandEnv(fname), ".shp") + ".shp"
	e, err := shp.NewEncoder(fname, pathArchetype{})
	if err != nil {
		return fmt.Errorf("sstmap: creating shapefile %s: %w", fname, err)
	}
	for _, k := range t.Keys() {
		rec := pathArchetype{MultiLineString: t[k], Year: k.Year, Month: int(k.Month)}
		if err := e.Encode(rec); err != nil {
			e.Close()
			return fmt.Errorf("sstmap: writing shapefile %s: %w", fname, err)
		}
	}
	e.Close()
	return nil
}

// WriteLandShapefile writes land polygons to a polygon shapefile
// that can be read by ReadLandShapefile.
func WriteLandShapefile(fname string, polys []geom.Polygon) error {
	fname = strings.TrimSuffix(os.ExpandEnv(fname), ".shp") + ".shp"
	e, err := shp.NewEncoder(fname, landArchetype{})
	if err != nil {
		return fmt.Errorf("sstmap: creating shapefile %s: %w", fname, err)
	}
	for i, p := range polys {
		if err := e.Encode(landArchetype{Polygon: p, Name: fmt.Sprintf("land%d", i)}); err != nil {
			e.Close()
			return fmt.Errorf("sstmap: writing shapefile %s: %w", fname, err)
		}
	}
	e.Close()
	return nil
}
