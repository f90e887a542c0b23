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
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestSortedFrames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2.png", "10.png", "1.png"} {
		writePNG(t, filepath.Join(dir, name), 4, 4, color.Black)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "old"), 0755); err != nil {
		t.Fatal(err)
	}
	frames, err := SortedFrames(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1.png", "2.png", "10.png"}
	if len(frames) != len(want) {
		t.Fatalf("frames = %v; want %v", frames, want)
	}
	for i, w := range want {
		if frames[i] != filepath.Join(dir, w) {
			t.Errorf("frame %d = %s; want %s", i, frames[i], w)
		}
	}

	writePNG(t, filepath.Join(dir, "map.png"), 4, 4, color.Black)
	if _, err := SortedFrames(dir); !errors.Is(err, ErrFrameName) {
		t.Errorf("err = %v; want ErrFrameName", err)
	}
}

func TestEncodeGIF(t *testing.T) {
	frames := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 20, 10)),
		image.NewRGBA(image.Rect(0, 0, 40, 20)),
		image.NewRGBA(image.Rect(5, 5, 25, 15)),
	}
	var buf bytes.Buffer
	if err := EncodeGIF(&buf, frames, 0.1); err != nil {
		t.Fatal(err)
	}
	g, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 3 {
		t.Fatalf("%d frames; want 3", len(g.Image))
	}
	for i, img := range g.Image {
		if g.Delay[i] != 10 {
			t.Errorf("frame %d delay = %d; want 10", i, g.Delay[i])
		}
		if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
			t.Errorf("frame %d size = %v; want 20x10", i, b)
		}
	}
	if g.LoopCount != 0 {
		t.Errorf("loop count = %d; want 0", g.LoopCount)
	}

	if err := EncodeGIF(&buf, nil, 0.1); err == nil {
		t.Error("expected an error for no frames")
	}
}

func TestAssembleGIFOrder(t *testing.T) {
	dir := t.TempDir()
	colors := map[string]color.Color{
		"2.png":  color.White,
		"10.png": color.NRGBA{R: 255, A: 255},
		"1.png":  color.Black,
	}
	for name, c := range colors {
		writePNG(t, filepath.Join(dir, name), 8, 8, c)
	}
	out := filepath.Join(t.TempDir(), "gifs", "anim.gif")
	if err := AssembleGIF(dir, out, 0.08); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 3 || g.Delay[0] != 8 {
		t.Fatalf("%d frames with delay %d", len(g.Image), g.Delay[0])
	}
	want := []color.NRGBA{
		{A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 255, A: 255},
	}
	for i, w := range want {
		have := color.NRGBAModel.Convert(g.Image[i].At(4, 4)).(color.NRGBA)
		if have != w {
			t.Errorf("frame %d color = %+v; want %+v", i, have, w)
		}
	}
}

func TestAnimate(t *testing.T) {
	r := testRenderer(3)
	base := t.TempDir()
	o := AnimationOptions{
		Year:          2016,
		DPI:           20,
		FrameDuration: 0.1,
		FigureDir:     filepath.Join(base, "figures"),
		GIFPath:       base,
		GIFName:       "sst_anom2016",
	}
	a := &Animator{Renderer: r}
	if err := a.Animate(o); err != nil {
		t.Fatal(err)
	}
	frames, err := SortedFrames(o.FigureDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Errorf("%d frames; want 3", len(frames))
	}
	f, err := os.Open(filepath.Join(base, "sst_anom2016.gif"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 3 || g.Delay[0] != 10 {
		t.Errorf("%d frames with delay %d", len(g.Image), g.Delay[0])
	}
}

func TestAnimateRemovesStaleFrames(t *testing.T) {
	base := t.TempDir()
	o := AnimationOptions{
		Year:          2016,
		DPI:           20,
		FrameDuration: 0.1,
		FigureDir:     filepath.Join(base, "figures"),
		GIFPath:       base,
		GIFName:       "sst_anom2016",
	}
	if err := os.MkdirAll(o.FigureDir, os.ModePerm); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(o.FigureDir, "365.png")
	writePNG(t, stale, 4, 3, color.White)
	other := filepath.Join(o.FigureDir, "notes.txt")
	if err := os.WriteFile(other, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	a := &Animator{Renderer: testRenderer(3)}
	if err := a.Animate(o); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("365.png: %v; want it removed", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("notes.txt: %v", err)
	}
	f, err := os.Open(o.GIFFile())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 3 {
		t.Errorf("%d frames; want 3", len(g.Image))
	}
}

func TestFramesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	if _, err := SortedFrames(dir); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("SortedFrames: err = %v; want fs.ErrNotExist", err)
	}
	out := filepath.Join(t.TempDir(), "a.gif")
	if err := AssembleGIF(dir, out, 0.1); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("AssembleGIF: err = %v; want fs.ErrNotExist", err)
	}
}

func TestAnimateInvalid(t *testing.T) {
	a := &Animator{Renderer: testRenderer(1)}
	for _, o := range []AnimationOptions{
		{FigureDir: t.TempDir(), GIFName: "a", FrameDuration: -1},
		{GIFName: "a"},
		{FigureDir: t.TempDir()},
		{FigureDir: t.TempDir(), GIFName: "a", ManualColorScale: true, ColorMin: 1, ColorMax: 0},
	} {
		if err := a.Animate(o); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("%+v: err = %v; want ErrInvalidOptions", o, err)
		}
	}
}
