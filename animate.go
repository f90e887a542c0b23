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
	"image/color/palette"
	"image/gif"
	_ "image/jpeg" // Frames may be JPEG.
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// DefaultAnimationDPI is the frame resolution used when
// AnimationOptions.DPI is zero.
const DefaultAnimationDPI = 100

// AnimationOptions specifies a year-long anomaly animation.
type AnimationOptions struct {
	Year int

	ManualColorScale   bool
	ColorMin, ColorMax float64

	// DPI is the frame resolution. Zero means DefaultAnimationDPI.
	DPI int

	// FrameDuration is how long each frame is shown, in seconds.
	FrameDuration float64

	// FigureDir is the directory the daily frames are written to.
	FigureDir string

	// GIFPath is the output directory and GIFName is the output file
	// name without the ".gif" extension.
	GIFPath, GIFName string
}

// Validate checks the options for consistency.
func (o AnimationOptions) Validate() error {
	if o.FrameDuration < 0 || math.IsNaN(o.FrameDuration) {
		return fmt.Errorf("sstmap: frame duration must not be negative but is %g: %w", o.FrameDuration, ErrInvalidOptions)
	}
	if o.DPI < 0 {
		return fmt.Errorf("sstmap: dpi must not be negative but is %d: %w", o.DPI, ErrInvalidOptions)
	}
	if o.FigureDir == "" {
		return fmt.Errorf("sstmap: figure directory is not set: %w", ErrInvalidOptions)
	}
	if o.GIFName == "" {
		return fmt.Errorf("sstmap: gif name is not set: %w", ErrInvalidOptions)
	}
	if o.ManualColorScale && o.ColorMin > o.ColorMax {
		return fmt.Errorf("sstmap: color scale minimum %g is greater than maximum %g: %w",
			o.ColorMin, o.ColorMax, ErrInvalidOptions)
	}
	return nil
}

// GIFFile returns the path of the output animation.
func (o AnimationOptions) GIFFile() string {
	return filepath.Join(os.ExpandEnv(o.GIFPath), o.GIFName+".gif")
}

// Animator renders a year of daily figures and assembles them into
// an animated GIF.
type Animator struct {
	Renderer *Renderer
	Log      logrus.FieldLogger
}

func (a *Animator) log() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

// Animate writes one "<day>.png" frame per day slot to o.FigureDir and
// then writes the animation to o.GIFFile(). Any failure stops the run.
func (a *Animator) Animate(o AnimationOptions) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if a.Renderer == nil || a.Renderer.Anomaly == nil {
		return fmt.Errorf("sstmap: no anomaly data: %w", ErrDataUnavailable)
	}
	dpi := o.DPI
	if dpi == 0 {
		dpi = DefaultAnimationDPI
	}
	dir := os.ExpandEnv(o.FigureDir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("sstmap: creating figure directory: %w", err)
	}

	po := PlotOptions{
		Year:             o.Year,
		DPI:              dpi,
		ManualColorScale: o.ManualColorScale,
		ColorMin:         o.ColorMin,
		ColorMax:         o.ColorMax,
	}
	// The automatic color scale covers the whole year, so it is
	// found once and used for every frame.
	min, max, err := a.Renderer.ColorScale(po)
	if err != nil {
		return err
	}
	po.ManualColorScale, po.ColorMin, po.ColorMax = true, min, max

	n := a.Renderer.Anomaly.NumDays()
	if n > MaxDay+1 {
		n = MaxDay + 1
	}
	if n == 0 {
		return fmt.Errorf("sstmap: anomaly data has no days: %w", ErrDataUnavailable)
	}
	log := a.log().WithFields(logrus.Fields{"year": o.Year, "dir": dir})
	if err := removeStaleFrames(dir, n, log); err != nil {
		return err
	}
	log.Infof("rendering %d frames with color scale [%g, %g]", n, min, max)
	for day := 0; day < n; day++ {
		po.Day = day
		fig, err := a.Renderer.Render(po)
		if err != nil {
			return fmt.Errorf("sstmap: rendering day %d: %w", day, err)
		}
		fname := filepath.Join(dir, strconv.Itoa(day)+".png")
		if err := fig.Save(fname); err != nil {
			return err
		}
		log.WithField("day", day).Debugf("wrote %s", fname)
	}

	out := o.GIFFile()
	if err := AssembleGIF(dir, out, o.FrameDuration); err != nil {
		return err
	}
	log.WithField("gif", out).Info("wrote animation")
	return nil
}

// removeStaleFrames deletes frames left in dir by an earlier run
// whose day index is n or more, so they are not assembled with the
// frames of this run.
func removeStaleFrames(dir string, n int, log logrus.FieldLogger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("sstmap: reading frame directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		day, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), ".png"))
		if err != nil || day < n {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("sstmap: removing stale frame: %w", err)
		}
		log.Debugf("removed stale frame %s", path)
	}
	return nil
}

// SortedFrames returns the paths of the ".png" files in dir, ordered
// by the integer value of their base names, so "10.png" comes after
// "2.png". Other files are ignored; a ".png" file whose name is not an
// integer is an error.
func SortedFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("sstmap: reading frame directory: %w", err)
	}
	type frame struct {
		n    int
		path string
	}
	var frames []frame
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), ".png"))
		if err != nil {
			return nil, fmt.Errorf("sstmap: %s: %w", entry.Name(), ErrFrameName)
		}
		frames = append(frames, frame{n: n, path: filepath.Join(dir, entry.Name())})
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].n < frames[j].n })
	o := make([]string, len(frames))
	for i, f := range frames {
		o[i] = f.path
	}
	return o, nil
}

// ReadFrames decodes the images at paths, in order.
func ReadFrames(paths []string) ([]image.Image, error) {
	o := make([]image.Image, len(paths))
	for i, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("sstmap: reading frame: %w", err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("sstmap: decoding frame %s: %w", p, err)
		}
		o[i] = img
	}
	return o, nil
}

// EncodeGIF writes frames to w as a GIF that loops forever, showing
// each frame for the given number of seconds. Frames are scaled to the
// size of the first frame and dithered to the Plan 9 palette.
func EncodeGIF(w io.Writer, frames []image.Image, seconds float64) error {
	if len(frames) == 0 {
		return fmt.Errorf("sstmap: no frames to encode: %w", ErrDataUnavailable)
	}
	b := frames[0].Bounds()
	r := image.Rect(0, 0, b.Dx(), b.Dy())
	delay := int(math.Round(seconds * 100))
	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0,
	}
	for i, img := range frames {
		src := img
		if sb := img.Bounds(); sb.Dx() != r.Dx() || sb.Dy() != r.Dy() {
			dst := image.NewRGBA(r)
			xdraw.ApproxBiLinear.Scale(dst, r, img, sb, xdraw.Over, nil)
			src = dst
		}
		p := image.NewPaletted(r, palette.Plan9)
		xdraw.FloydSteinberg.Draw(p, r, src, src.Bounds().Min)
		g.Image[i] = p
		g.Delay[i] = delay
	}
	if err := gif.EncodeAll(w, g); err != nil {
		return fmt.Errorf("sstmap: encoding gif: %w", err)
	}
	return nil
}

// AssembleGIF encodes the frames in dir, in SortedFrames order, into
// the GIF file out, replacing any existing file.
func AssembleGIF(dir, out string, seconds float64) error {
	paths, err := SortedFrames(dir)
	if err != nil {
		return err
	}
	frames, err := ReadFrames(paths)
	if err != nil {
		return err
	}
	if d := filepath.Dir(out); d != "" {
		if err := os.MkdirAll(d, os.ModePerm); err != nil {
			return fmt.Errorf("sstmap: creating gif directory: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("sstmap: creating gif: %w", err)
	}
	if err := EncodeGIF(f, frames, seconds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sstmap: writing gif: %w", err)
	}
	return nil
}
