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
	"path/filepath"
	"testing"
	"time"
)

func TestReadPathShapefile(t *testing.T) {
	want := SyntheticPaths(2016)
	fname := filepath.Join(t.TempDir(), "gulfstream.shp")
	if err := WritePathShapefile(fname, want); err != nil {
		t.Fatal(err)
	}

	have, err := ReadPathShapefile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if len(have) != 12 {
		t.Fatalf("%d paths; want 12", len(have))
	}
	for _, m := range []time.Month{time.January, time.July, time.December} {
		p, err := have.Path(2016, m)
		if err != nil {
			t.Fatal(err)
		}
		w := want[PathKey{Year: 2016, Month: m}]
		if len(p) != 1 || len(p[0]) != len(w[0]) {
			t.Fatalf("%s: %d lines", m, len(p))
		}
		for i, pt := range w[0] {
			if math.Abs(p[0][i].X-pt.X) > 1e-9 || math.Abs(p[0][i].Y-pt.Y) > 1e-9 {
				t.Errorf("%s point %d: have %v, want %v", m, i, p[0][i], pt)
			}
		}
	}
	if _, err := have.Path(2017, time.January); !errors.Is(err, ErrNoPath) {
		t.Errorf("err = %v; want ErrNoPath", err)
	}
}

func TestReadLandShapefile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "land.shp")
	if err := WriteLandShapefile(fname, SyntheticLand()); err != nil {
		t.Fatal(err)
	}

	polys, err := ReadLandShapefile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 1 {
		t.Fatalf("%d polygons; want 1", len(polys))
	}
	b := polys[0].Bounds()
	if b.Min.X != -85 || b.Max.X != -53 || b.Min.Y != 30 || b.Max.Y != 56 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestReadShapefileMissing(t *testing.T) {
	if _, err := ReadLandShapefile(filepath.Join(t.TempDir(), "nope.shp")); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("err = %v; want ErrDataUnavailable", err)
	}
	if _, err := ReadPathShapefile(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("err = %v; want ErrDataUnavailable", err)
	}
}
