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

package sstmaputil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/favouriteplots/sstmap"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"
)

// Render draws the anomaly figure specified by o and saves it to
// outputFile.
func Render(r *sstmap.Renderer, o sstmap.PlotOptions, outputFile string) error {
	fig, err := r.Render(o)
	if err != nil {
		return err
	}
	if err := fig.Save(outputFile); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"day":  o.Day,
		"year": o.Year,
		"path": outputFile,
	}).Info("saved figure")
	return nil
}

// DrawBackground draws a map background on a width by height inch
// figure and saves it to outputFile.
func DrawBackground(b *sstmap.Background, o sstmap.BackgroundOptions, width, height float64, dpi int, outputFile string) error {
	fig := sstmap.NewFigure(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, dpi, b.Style)
	if _, _, err := b.Setup(fig.AddMap(o.Extent), o); err != nil {
		return err
	}
	if err := fig.Save(outputFile); err != nil {
		return err
	}
	logrus.WithField("path", outputFile).Info("saved background")
	return nil
}

// PrintStyle writes the plot parameters, as comments, followed by the
// style settings to w.
func PrintStyle(w io.Writer, s sstmap.Style) error {
	params := sstmap.Params.Map()
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "# Plot parameters (fixed):")
	for _, k := range names {
		fmt.Fprintf(w, "#   %s = %g\n", k, params[k])
	}
	fmt.Fprintln(w)
	return s.WriteTOML(w)
}

// Synth writes synthetic anomaly, bathymetry, topography, land and
// reference path datasets for year to dir.
func Synth(dir string, year, days int) error {
	if days < 1 || days > sstmap.MaxDay+1 {
		return fmt.Errorf("sstmap: Synth.Days must be between 1 and %d but is %d", sstmap.MaxDay+1, days)
	}
	dir = os.ExpandEnv(dir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("sstmap: creating synthetic data directory: %w", err)
	}
	g := sstmap.SyntheticGrid()

	ncfs := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"sst.day.anom.nc", func(f *os.File) error {
			return sstmap.CreateAnomalyFile(f, sstmap.OISSTVars, sstmap.SyntheticAnomaly(year, days, g))
		}},
		{"bathymetry.nc", func(f *os.File) error {
			return sstmap.CreateBathymetryFile(f, sstmap.BathymetryVars, sstmap.SyntheticBathymetry(g))
		}},
		{"topo.nc", func(f *os.File) error {
			return sstmap.CreateBathymetryFile(f, sstmap.TopographyVars, sstmap.SyntheticTopography())
		}},
	}
	for _, n := range ncfs {
		fname := filepath.Join(dir, n.name)
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("sstmap: creating %s: %w", fname, err)
		}
		if err := n.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logrus.WithField("path", fname).Info("wrote synthetic data")
	}
	if err := sstmap.WriteLandShapefile(filepath.Join(dir, "land.shp"), sstmap.SyntheticLand()); err != nil {
		return err
	}
	if err := sstmap.WritePathShapefile(filepath.Join(dir, "paths.shp"), sstmap.SyntheticPaths(year)); err != nil {
		return err
	}
	logrus.WithField("dir", dir).Info("wrote synthetic shapefiles")
	return nil
}
