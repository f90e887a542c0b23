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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/favouriteplots/sstmap"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="sst_anom.png")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("sstmap: the OutputFile directory doesn't exist: %w", err)
	}
	return f, nil
}

// toFloat64SliceE converts a configuration value to a float slice. The
// value may be a list from a configuration file or a JSON array from a
// command-line argument or environment variable.
func toFloat64SliceE(s interface{}) ([]float64, error) {
	switch v := s.(type) {
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case string:
		var o []float64
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type %T for float list", s)
	}
}

// getFloat64Slice returns a float slice from a viper configuration.
func getFloat64Slice(varName string, cfg *viper.Viper) ([]float64, error) {
	o, err := toFloat64SliceE(cfg.Get(varName))
	if err != nil {
		return nil, fmt.Errorf("sstmap: invalid %s configuration variable: %w", varName, err)
	}
	return o, nil
}

// loadStyle returns the style given by the StyleFile and StyleScale
// configuration variables.
func loadStyle(cfg *viper.Viper) (sstmap.Style, error) {
	scale := cfg.GetFloat64("StyleScale")
	if scale <= 0 {
		return sstmap.Style{}, fmt.Errorf("sstmap: StyleScale must be positive but is %g", scale)
	}
	fname := os.ExpandEnv(cfg.GetString("StyleFile"))
	if fname == "" {
		return sstmap.SetPlotStyle(scale), nil
	}
	f, err := os.Open(fname)
	if err != nil {
		return sstmap.Style{}, fmt.Errorf("sstmap: opening StyleFile: %w", err)
	}
	defer f.Close()
	return sstmap.LoadStyle(f, scale)
}

// loadLand reads the land polygons, if LandShapefile is set.
func loadLand(cfg *viper.Viper) ([]geom.Polygon, error) {
	fname := cfg.GetString("LandShapefile")
	if fname == "" {
		return nil, nil
	}
	return sstmap.ReadLandShapefile(fname)
}

// NewRenderer creates an anomaly figure renderer from a viper
// configuration.
func NewRenderer(cfg *viper.Viper) (*sstmap.Renderer, error) {
	if cfg.GetString("LandShapefile") == "" {
		return nil, fmt.Errorf("sstmaputil: the LandShapefile configuration variable is required to draw coastlines: %w", sstmap.ErrInvalidOptions)
	}
	style, err := loadStyle(cfg)
	if err != nil {
		return nil, err
	}
	vars := sstmap.OISSTVars
	vars.Data = cfg.GetString("AnomalyVariable")
	anom, err := sstmap.OpenAnomalyField(cfg.GetString("AnomalyFile"), vars)
	if err != nil {
		return nil, err
	}
	bath, err := sstmap.OpenBathymetry(cfg.GetString("BathymetryFile"), sstmap.BathymetryVars)
	if err != nil {
		return nil, err
	}
	land, err := loadLand(cfg)
	if err != nil {
		return nil, err
	}
	r := &sstmap.Renderer{
		Anomaly:    anom,
		Bathymetry: bath,
		Land:       land,
		Style:      style,
		Log:        logrus.StandardLogger(),
	}
	if fname := cfg.GetString("PathShapefile"); fname != "" {
		paths, err := sstmap.ReadPathShapefile(fname)
		if err != nil {
			return nil, err
		}
		r.Paths = paths
	}
	logrus.WithFields(logrus.Fields{
		"days":      anom.NumDays(),
		"longitude": len(anom.Lon),
		"latitude":  len(anom.Lat),
		"polygons":  len(land),
	}).Debug("loaded input data")
	return r, nil
}

// BackgroundConfig unmarshals a viper configuration for a map background.
func BackgroundConfig(cfg *viper.Viper) (sstmap.BackgroundOptions, error) {
	var o sstmap.BackgroundOptions
	wesn, err := getFloat64Slice("Background.Extent", cfg)
	if err != nil {
		return o, err
	}
	if o.Extent, err = sstmap.NewExtent(wesn); err != nil {
		return o, err
	}
	if o.XTicks, err = getFloat64Slice("Background.XTicks", cfg); err != nil {
		return o, err
	}
	if o.YTicks, err = getFloat64Slice("Background.YTicks", cfg); err != nil {
		return o, err
	}
	o.Alpha = cfg.GetFloat64("Background.Alpha")
	o.PlotTopo = cfg.GetBool("Background.PlotTopo")
	return o, nil
}
