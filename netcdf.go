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
	"os"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// GridVars holds the names of the variables in a gridded NetCDF
// dataset. Time may be empty for datasets without a time axis.
type GridVars struct {
	Lon, Lat, Time, Data string
}

var (
	// OISSTVars are the variable names used by NOAA OISST daily
	// anomaly files.
	OISSTVars = GridVars{Lon: "lon", Lat: "lat", Time: "time", Data: "anom"}

	// BathymetryVars are the variable names used by GEBCO-style
	// bathymetry files.
	BathymetryVars = GridVars{Lon: "lon", Lat: "lat", Data: "z"}

	// TopographyVars are the variable names used by the static
	// topography dataset drawn by the map background.
	TopographyVars = GridVars{Lon: "X", Lat: "Y", Data: "bath"}
)

// sizer is implemented by storage that knows its size, which is
// needed to count the records of record variables.
type sizer interface {
	Stat() (os.FileInfo, error)
}

type ncfFile struct {
	*cdf.File
	nrec int
}

func openNCF(rw cdf.ReaderWriterAt) (*ncfFile, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("sstmap: opening netcdf: %w: %w", err, ErrDataUnavailable)
	}
	o := &ncfFile{File: f}
	if s, ok := rw.(sizer); ok {
		fi, err := s.Stat()
		if err != nil {
			return nil, fmt.Errorf("sstmap: opening netcdf: %w: %w", err, ErrDataUnavailable)
		}
		o.nrec = int(f.Header.NumRecs(fi.Size()))
	}
	return o, nil
}

// read reads variable v in full, converting it to float64. The
// scale_factor and add_offset attributes are applied and values equal
// to _FillValue or missing_value are set to NaN.
func (f *ncfFile) read(v string) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("sstmap: netcdf variable %s not in file: %w", v, ErrDataUnavailable)
	}
	shape := append([]int{}, dims...)
	if f.Header.IsRecordVariable(v) {
		shape[0] = f.nrec
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n == 0 {
		return nil, fmt.Errorf("sstmap: netcdf variable %s is empty: %w", v, ErrDataUnavailable)
	}
	start, end := make([]int, len(shape)), append([]int{}, shape...)
	r := f.Reader(v, start, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("sstmap: reading netcdf variable %s: %w: %w", v, err, ErrDataUnavailable)
	}
	data := sparse.ZerosDense(shape...)
	switch b := buf.(type) {
	case []float32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []float64:
		copy(data.Elements, b)
	case []int16:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []int32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []uint8:
		for i, val := range b {
			data.Elements[i] = float64(int8(val))
		}
	default:
		return nil, fmt.Errorf("sstmap: netcdf variable %s has unsupported type %T: %w", v, buf, ErrDataUnavailable)
	}

	var fills []float64
	if fv, ok := attrFloat(f.Header.GetAttribute(v, "_FillValue")); ok {
		fills = append(fills, fv)
	} else if fv, ok := scalarFloat(f.Header.FillValue(v)); ok {
		fills = append(fills, fv)
	}
	if mv, ok := attrFloat(f.Header.GetAttribute(v, "missing_value")); ok {
		fills = append(fills, mv)
	}
	scale, ok := attrFloat(f.Header.GetAttribute(v, "scale_factor"))
	if !ok {
		scale = 1
	}
	offset, _ := attrFloat(f.Header.GetAttribute(v, "add_offset"))
	for i, val := range data.Elements {
		for _, fv := range fills {
			if val == fv {
				val = math.NaN()
				break
			}
		}
		data.Elements[i] = val*scale + offset
	}
	return data, nil
}

func (f *ncfFile) grid(v GridVars) (Grid, error) {
	lon, err := f.read(v.Lon)
	if err != nil {
		return Grid{}, err
	}
	lat, err := f.read(v.Lat)
	if err != nil {
		return Grid{}, err
	}
	g := Grid{Lon: lon.Elements, Lat: lat.Elements}
	return g, g.check()
}

// attrFloat returns the first value of a numeric NetCDF attribute.
func attrFloat(a interface{}) (float64, bool) {
	switch v := a.(type) {
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []uint8:
		if len(v) > 0 {
			return float64(int8(v[0])), true
		}
	}
	return 0, false
}

func scalarFloat(a interface{}) (float64, bool) {
	switch v := a.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int8:
		return float64(v), true
	}
	return 0, false
}

// timeUnitLayouts are the reference time formats accepted in CF
// "<unit> since <reference>" strings.
var timeUnitLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-1-2 15:4:5",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2",
}

// ParseTimeUnits parses a CF time units attribute such as
// "days since 1800-01-01 00:00:00", returning the length of one unit
// and the reference time.
func ParseTimeUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("sstmap: invalid time units %q", units)
	}
	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "days", "day", "d":
		step = 24 * time.Hour
	case "hours", "hour", "hr", "h":
		step = time.Hour
	case "minutes", "minute", "min":
		step = time.Minute
	case "seconds", "second", "sec", "s":
		step = time.Second
	default:
		return 0, time.Time{}, fmt.Errorf("sstmap: invalid time unit %q", parts[0])
	}
	ref := strings.TrimSuffix(strings.TrimSpace(parts[1]), " UTC")
	for _, layout := range timeUnitLayouts {
		if t, err := time.Parse(layout, ref); err == nil {
			return step, t, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("sstmap: invalid reference time %q", parts[1])
}

func (f *ncfFile) times(v string) ([]time.Time, error) {
	if v == "" || f.Header.Lengths(v) == nil {
		return nil, nil
	}
	units, _ := f.Header.GetAttribute(v, "units").(string)
	step, ref, err := ParseTimeUnits(units)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, ErrDataUnavailable)
	}
	d, err := f.read(v)
	if err != nil {
		return nil, err
	}
	o := make([]time.Time, len(d.Elements))
	for i, val := range d.Elements {
		if o[i], err = offsetTime(ref, val, step); err != nil {
			return nil, fmt.Errorf("sstmap: netcdf variable %s: %w: %w", v, err, ErrDataUnavailable)
		}
	}
	return o, nil
}

// maxOffsetSeconds bounds time offsets so that they fit in Unix seconds.
const maxOffsetSeconds = 1e15

// offsetTime returns ref plus val units of step. Whole units are added
// as seconds so that offsets longer than time.Duration can hold, such
// as days since year 1, stay exact.
func offsetTime(ref time.Time, val float64, step time.Duration) (time.Time, error) {
	whole, frac := math.Modf(val)
	secs := whole * step.Seconds()
	if math.IsNaN(val) || math.Abs(secs) > maxOffsetSeconds {
		return time.Time{}, fmt.Errorf("time offset %g is out of range", val)
	}
	t := ref.Add(time.Duration(frac * float64(step)))
	return time.Unix(t.Unix()+int64(secs), int64(t.Nanosecond())).In(ref.Location()), nil
}

// ReadAnomalyField reads a daily anomaly field from NetCDF storage rw.
// The data variable must be dimensioned [time, lat, lon] or
// [time, zlev, lat, lon] with a single zlev.
func ReadAnomalyField(rw cdf.ReaderWriterAt, v GridVars) (*AnomalyField, error) {
	f, err := openNCF(rw)
	if err != nil {
		return nil, err
	}
	g, err := f.grid(v)
	if err != nil {
		return nil, err
	}
	data, err := f.read(v.Data)
	if err != nil {
		return nil, err
	}
	switch {
	case len(data.Shape) == 4 && data.Shape[1] == 1:
		d3 := sparse.ZerosDense(data.Shape[0], data.Shape[2], data.Shape[3])
		d3.Elements = data.Elements
		data = d3
	case len(data.Shape) != 3:
		return nil, fmt.Errorf("sstmap: anomaly variable %s has shape %v; want [time, lat, lon]: %w",
			v.Data, data.Shape, ErrDataUnavailable)
	}
	if data.Shape[1] != len(g.Lat) || data.Shape[2] != len(g.Lon) {
		return nil, fmt.Errorf("sstmap: anomaly variable %s has shape %v but grid is [%d %d]: %w",
			v.Data, data.Shape, len(g.Lat), len(g.Lon), ErrDataUnavailable)
	}
	t, err := f.times(v.Time)
	if err != nil {
		return nil, err
	}
	if t != nil && len(t) != data.Shape[0] {
		return nil, fmt.Errorf("sstmap: %d times for %d days: %w", len(t), data.Shape[0], ErrDataUnavailable)
	}
	return &AnomalyField{Grid: g, Time: t, Data: data}, nil
}

// OpenAnomalyField reads a daily anomaly field from the NetCDF file
// at path.
func OpenAnomalyField(path string, v GridVars) (*AnomalyField, error) {
	ff, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("sstmap: %w: %w", err, ErrDataUnavailable)
	}
	defer ff.Close()
	return ReadAnomalyField(ff, v)
}

// ReadBathymetry reads a [lat, lon] elevation field from NetCDF
// storage rw.
func ReadBathymetry(rw cdf.ReaderWriterAt, v GridVars) (*BathymetryField, error) {
	f, err := openNCF(rw)
	if err != nil {
		return nil, err
	}
	g, err := f.grid(v)
	if err != nil {
		return nil, err
	}
	data, err := f.read(v.Data)
	if err != nil {
		return nil, err
	}
	if len(data.Shape) != 2 {
		return nil, fmt.Errorf("sstmap: bathymetry variable %s has shape %v; want [lat, lon]: %w",
			v.Data, data.Shape, ErrDataUnavailable)
	}
	f2, err := NewField2D(g, data)
	if err != nil {
		return nil, err
	}
	return &BathymetryField{Field2D: *f2}, nil
}

// OpenBathymetry reads a [lat, lon] elevation field from the NetCDF
// file at path.
func OpenBathymetry(path string, v GridVars) (*BathymetryField, error) {
	ff, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("sstmap: %w: %w", err, ErrDataUnavailable)
	}
	defer ff.Close()
	return ReadBathymetry(ff, v)
}

// OpenTopography reads the static topography dataset at path, whose
// variables are X, Y, and bath.
func OpenTopography(path string) (*BathymetryField, error) {
	return OpenBathymetry(path, TopographyVars)
}

func float32s(d []float64) []float32 {
	o := make([]float32, len(d))
	for i, v := range d {
		o[i] = float32(v)
	}
	return o
}

func writeNCF(f *cdf.File, v string, data []float64) error {
	end := append([]int{}, f.Header.Lengths(v)...)
	w := f.Writer(v, make([]int, len(end)), end)
	if _, err := w.Write(float32s(data)); err != nil {
		return fmt.Errorf("sstmap: writing netcdf variable %s: %w", v, err)
	}
	return nil
}

// CreateAnomalyFile writes a into NetCDF storage w using the variable
// names in v. Time is written as days since 1800-01-01 when a has a
// time axis.
func CreateAnomalyFile(w cdf.ReaderWriterAt, v GridVars, a *AnomalyField) error {
	tdim := v.Time
	if tdim == "" {
		tdim = "time"
	}
	h := cdf.NewHeader([]string{tdim, v.Lat, v.Lon}, []int{a.NumDays(), len(a.Lat), len(a.Lon)})
	h.AddVariable(v.Lon, []string{v.Lon}, []float32{0})
	h.AddAttribute(v.Lon, "units", "degrees_east")
	h.AddVariable(v.Lat, []string{v.Lat}, []float32{0})
	h.AddAttribute(v.Lat, "units", "degrees_north")
	if a.Time != nil && v.Time != "" {
		h.AddVariable(v.Time, []string{tdim}, []float32{0})
		h.AddAttribute(v.Time, "units", "days since 1800-01-01 00:00:00")
	}
	h.AddVariable(v.Data, []string{tdim, v.Lat, v.Lon}, []float32{0})
	h.AddAttribute(v.Data, "units", "Celsius")
	h.AddAttribute(v.Data, "long_name", "Daily sea surface temperature anomalies")
	h.AddAttribute(v.Data, "_FillValue", []float32{-999})
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("sstmap: creating netcdf: %w", err)
	}
	if err := writeNCF(f, v.Lon, a.Lon); err != nil {
		return err
	}
	if err := writeNCF(f, v.Lat, a.Lat); err != nil {
		return err
	}
	if a.Time != nil && v.Time != "" {
		ref := time.Date(1800, time.January, 1, 0, 0, 0, 0, time.UTC)
		days := make([]float64, len(a.Time))
		for i, t := range a.Time {
			days[i] = t.Sub(ref).Hours() / 24
		}
		if err := writeNCF(f, v.Time, days); err != nil {
			return err
		}
	}
	data := make([]float64, len(a.Data.Elements))
	for i, val := range a.Data.Elements {
		if math.IsNaN(val) {
			val = -999
		}
		data[i] = val
	}
	return writeNCF(f, v.Data, data)
}

// CreateBathymetryFile writes b into NetCDF storage w using the
// variable names in v.
func CreateBathymetryFile(w cdf.ReaderWriterAt, v GridVars, b *BathymetryField) error {
	h := cdf.NewHeader([]string{v.Lat, v.Lon}, []int{len(b.Lat), len(b.Lon)})
	h.AddVariable(v.Lon, []string{v.Lon}, []float32{0})
	h.AddVariable(v.Lat, []string{v.Lat}, []float32{0})
	h.AddVariable(v.Data, []string{v.Lat, v.Lon}, []float32{0})
	h.AddAttribute(v.Data, "units", "m")
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("sstmap: creating netcdf: %w", err)
	}
	if err := writeNCF(f, v.Lon, b.Lon); err != nil {
		return err
	}
	if err := writeNCF(f, v.Lat, b.Lat); err != nil {
		return err
	}
	return writeNCF(f, v.Data, b.Data.Elements)
}
