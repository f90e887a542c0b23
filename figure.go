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
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure is a drawing surface holding one or more map axes. Nothing
// is drawn until the figure is rasterized by Draw, WriteTo, Save or
// Image, so axes, layers and gridliners can be changed until then.
type Figure struct {
	Width, Height vg.Length
	DPI           int
	Style         Style

	// Background is the color outside of the map frames.
	Background color.Color

	axes []*MapAxis
}

// NewFigure creates a figure of the given size and resolution.
func NewFigure(width, height vg.Length, dpi int, style Style) *Figure {
	return &Figure{
		Width:      width,
		Height:     height,
		DPI:        dpi,
		Style:      style,
		Background: color.White,
	}
}

// AddMap adds a map axis showing ext that fills the figure.
func (f *Figure) AddMap(ext Extent) *MapAxis {
	ax := &MapAxis{fig: f, Extent: ext}
	f.axes = append(f.axes, ax)
	return ax
}

// Axes returns the map axes of the figure in the order they were
// added.
func (f *Figure) Axes() []*MapAxis { return f.axes }

// Draw rasterizes the figure onto a new canvas.
func (f *Figure) Draw() (*vgimg.Canvas, error) {
	if f.DPI <= 0 {
		return nil, fmt.Errorf("sstmap: figure dpi must be positive but is %d: %w", f.DPI, ErrInvalidOptions)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("sstmap: invalid figure size %v x %v: %w", f.Width, f.Height, ErrInvalidOptions)
	}
	c := vgimg.NewWith(
		vgimg.UseWH(f.Width, f.Height),
		vgimg.UseDPI(f.DPI),
		vgimg.UseBackgroundColor(f.Background),
	)
	dc := draw.New(c)
	for i, ax := range f.axes {
		if err := ax.draw(dc); err != nil {
			return nil, fmt.Errorf("sstmap: drawing map axis %d: %w", i, err)
		}
	}
	return c, nil
}

// Image returns the rasterized figure.
func (f *Figure) Image() (image.Image, error) {
	c, err := f.Draw()
	if err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// WriteTo writes the figure to w in PNG format.
func (f *Figure) WriteTo(w io.Writer) (int64, error) {
	c, err := f.Draw()
	if err != nil {
		return 0, err
	}
	return vgimg.PngCanvas{Canvas: c}.WriteTo(w)
}

// Save writes the figure to the file at path, choosing the format
// from the file extension. PNG is used when the extension is not
// recognized.
func (f *Figure) Save(path string) error {
	c, err := f.Draw()
	if err != nil {
		return err
	}
	var wt io.WriterTo
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		wt = vgimg.JpegCanvas{Canvas: c}
	case ".tif", ".tiff":
		wt = vgimg.TiffCanvas{Canvas: c}
	default:
		wt = vgimg.PngCanvas{Canvas: c}
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sstmap: saving figure: %w", err)
	}
	if _, err = wt.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("sstmap: saving figure %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("sstmap: saving figure %s: %w", path, err)
	}
	return nil
}
