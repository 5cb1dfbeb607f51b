// seehuhn.de/go/tilerender - tiled multi-threaded page rendering
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package display

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/raster"
	"seehuhn.de/go/tilerender/tiling"
)

func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

func rectPath(x0, y0, x1, y1 float64) path.Path {
	p := &path.Data{}
	p.MoveTo(pt(x0, y0)).LineTo(pt(x1, y0)).LineTo(pt(x1, y1)).LineTo(pt(x0, y1)).Close()
	return p.Iter()
}

type otherProgram struct{}

func (otherProgram) Bounds() tiling.Rect { return tiling.Rect{X1: 1, Y1: 1} }

func TestCloneClose(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "render.display")
	defer teardown()

	m := NewContext()
	clones, err := m.Clone(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(clones) != 3 {
		t.Fatalf("got %d clones, want 3", len(clones))
	}
	for _, c := range clones {
		if c.(*Context).IsMaster() {
			t.Error("clone claims to be the master")
		}
	}

	// cloning a clone is the same as cloning the master
	more, err := clones[0].Clone(1)
	if err != nil {
		t.Fatal(err)
	}
	clones = append(clones, more...)

	for _, c := range clones {
		if err := c.Close(); err != nil {
			t.Error(err)
		}
		if err := c.Close(); err != nil {
			t.Error(err)
		}
		if !c.Closed() {
			t.Error("clone not closed")
		}
	}

	s := m.Stats()
	if s.ClonesCreated != 4 || s.ClonesClosed != 4 {
		t.Errorf("stats = %+v, want 4 created and 4 closed", s)
	}
	if err := m.Close(); err != nil {
		t.Error(err)
	}
	if _, err := m.Clone(1); !errors.Is(err, engine.ErrContextClosed) {
		t.Errorf("Clone after Close: %v", err)
	}
}

func TestCloneLimit(t *testing.T) {
	m := NewContext(WithCloneLimit(2))
	defer m.Close()

	clones, err := m.Clone(3)
	if !errors.Is(err, ErrCloneLimit) {
		t.Errorf("expected ErrCloneLimit, got %v", err)
	}
	if len(clones) != 2 {
		t.Fatalf("got %d clones, want 2", len(clones))
	}

	clones[0].Close()
	extra, err := m.Clone(1)
	if err != nil || len(extra) != 1 {
		t.Fatalf("Clone after Close: %d, %v", len(extra), err)
	}
	extra[0].Close()
	clones[1].Close()
}

func TestAddImage(t *testing.T) {
	m := NewContext()
	defer m.Close()

	img := image.NewNRGBA(image.Rect(5, 5, 7, 8))
	id, err := m.AddImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Error("got the zero resource ID")
	}
	if _, err := m.AddImage(image.NewGray(image.Rect(0, 0, 0, 3))); err == nil {
		t.Error("empty image accepted")
	}

	clones, _ := m.Clone(1)
	defer clones[0].Close()
	if _, err := clones[0].(*Context).AddImage(img); !errors.Is(err, ErrNotMaster) {
		t.Errorf("AddImage on clone: %v", err)
	}
	if n := m.Stats().Images; n != 1 {
		t.Errorf("%d images, want 1", n)
	}
}

func TestResourcesOutliveMaster(t *testing.T) {
	m := NewContext()
	id, _ := m.AddImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	clones, _ := m.Clone(1)
	c := clones[0].(*Context)

	m.Close()
	if _, ok := c.res.get(id); !ok {
		t.Error("image dropped while a clone is open")
	}
	c.Close()
	if _, ok := c.res.get(id); ok {
		t.Error("image kept after the last holder was closed")
	}
}

func TestRenderErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "render.display")
	defer teardown()

	m := NewContext()
	prog := NewProgram(tiling.Rect{X1: 10, Y1: 10})
	region := tiling.Rect{X1: 10, Y1: 10}
	buf := make([]byte, 10*10*4)

	err := m.RenderRegion(otherProgram{}, region, 1, engine.RGBA, buf, nil)
	if !errors.Is(err, engine.ErrUnsupportedProgram) {
		t.Errorf("foreign program: %v", err)
	}
	err = m.RenderRegion(prog, region, 1, engine.RGBA, buf[:399], nil)
	if !errors.Is(err, engine.ErrBufferTooSmall) {
		t.Errorf("short buffer: %v", err)
	}
	if err := m.RenderRegion(prog, region, 1, engine.PixelFormat(0), buf, nil); err == nil {
		t.Error("invalid format accepted")
	}
	if err := m.RenderRegion(prog, region, 0, engine.RGBA, buf, nil); err == nil {
		t.Error("zero zoom accepted")
	}

	clones, _ := m.Clone(1)
	c := clones[0]
	m.Close()
	err = c.RenderRegion(prog, region, 1, engine.RGBA, buf, nil)
	if !errors.Is(err, engine.ErrContextClosed) {
		t.Errorf("closed master: %v", err)
	}
	c.Close()
	err = c.RenderRegion(prog, region, 1, engine.RGBA, buf, nil)
	if !errors.Is(err, engine.ErrContextClosed) {
		t.Errorf("closed clone: %v", err)
	}
}

func TestRenderFill(t *testing.T) {
	m := NewContext()
	defer m.Close()

	prog := NewProgram(tiling.Rect{X1: 10, Y1: 10})
	prog.Fill(rectPath(2, 3, 8, 7), raster.NonZero, color.NRGBA{R: 255, A: 255})

	for _, format := range []engine.PixelFormat{engine.RGB, engine.BGR, engine.RGBA, engine.BGRA} {
		t.Run(format.String(), func(t *testing.T) {
			bpp := format.BytesPerPixel()
			buf := make([]byte, 10*10*bpp)
			cookie := &engine.Cookie{}
			err := m.RenderRegion(prog, prog.Bounds(), 1, format, buf, cookie)
			if err != nil {
				t.Fatal(err)
			}
			if cur, max := cookie.Progress(); cur != 1 || max != 1 {
				t.Errorf("progress %d/%d, want 1/1", cur, max)
			}

			inside := buf[(5*10+4)*bpp:][:bpp]
			outside := buf[(0*10+0)*bpp:][:bpp]
			var wantIn, wantOut []byte
			switch format {
			case engine.RGB:
				wantIn, wantOut = []byte{255, 0, 0}, []byte{255, 255, 255}
			case engine.BGR:
				wantIn, wantOut = []byte{0, 0, 255}, []byte{255, 255, 255}
			case engine.RGBA:
				wantIn, wantOut = []byte{255, 0, 0, 255}, []byte{0, 0, 0, 0}
			case engine.BGRA:
				wantIn, wantOut = []byte{0, 0, 255, 255}, []byte{0, 0, 0, 0}
			}
			if string(inside) != string(wantIn) {
				t.Errorf("inside: %v, want %v", inside, wantIn)
			}
			if string(outside) != string(wantOut) {
				t.Errorf("outside: %v, want %v", outside, wantOut)
			}
		})
	}
}

func TestRenderPremultiplied(t *testing.T) {
	m := NewContext()
	defer m.Close()

	prog := NewProgram(tiling.Rect{X1: 4, Y1: 4})
	prog.Fill(rectPath(0, 0, 4, 4), raster.NonZero, color.NRGBA{R: 255, G: 128, A: 128})

	buf := make([]byte, 4*4*4)
	if err := m.RenderRegion(prog, prog.Bounds(), 1, engine.RGBA, buf, nil); err != nil {
		t.Fatal(err)
	}
	want := []byte{128, 64, 0, 128}
	for i := 0; i < len(buf); i += 4 {
		for j := range 4 {
			if d := int(buf[i+j]) - int(want[j]); d < -1 || d > 1 {
				t.Fatalf("pixel %d: %v, want %v", i/4, buf[i:i+4], want)
			}
		}
	}
}

func TestRenderStroke(t *testing.T) {
	m := NewContext()
	defer m.Close()

	p := &path.Data{}
	p.MoveTo(pt(0, 5)).LineTo(pt(20, 5))
	prog := NewProgram(tiling.Rect{X1: 20, Y1: 10})
	prog.Stroke(p.Iter(), StrokeStyle{Width: 2, Cap: graphics.LineCapButt}, color.Black)

	buf := make([]byte, 20*10*3)
	if err := m.RenderRegion(prog, prog.Bounds(), 1, engine.RGB, buf, nil); err != nil {
		t.Fatal(err)
	}
	for y := range 10 {
		got := buf[(y*20+10)*3]
		want := byte(255)
		if y == 4 || y == 5 {
			want = 0
		}
		if got != want {
			t.Errorf("row %d: %d, want %d", y, got, want)
		}
	}
}

func TestRenderAbort(t *testing.T) {
	m := NewContext()
	defer m.Close()

	prog := NewProgram(tiling.Rect{X1: 10, Y1: 10})
	for range 5 {
		prog.Fill(rectPath(1, 1, 9, 9), raster.NonZero, color.Black)
	}

	cookie := &engine.Cookie{}
	cookie.Abort()
	buf := make([]byte, 10*10*3)
	err := m.RenderRegion(prog, prog.Bounds(), 1, engine.RGB, buf, cookie)
	if !errors.Is(err, engine.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if !cookie.Incomplete() {
		t.Error("aborted render not marked incomplete")
	}
	if cur, max := cookie.Progress(); cur != 0 || max != 5 {
		t.Errorf("progress %d/%d, want 0/5", cur, max)
	}
}

func TestRenderImage(t *testing.T) {
	m := NewContext()
	defer m.Close()

	blue := image.NewUniform(color.NRGBA{B: 255, A: 255})
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			src.Set(x, y, blue.C)
		}
	}
	id, err := m.AddImage(src)
	if err != nil {
		t.Fatal(err)
	}

	prog := NewProgram(tiling.Rect{X1: 8, Y1: 8})
	prog.Image(id, tiling.Rect{X0: 2, Y0: 2, X1: 6, Y1: 6})
	prog.Image(id+7, tiling.Rect{X1: 8, Y1: 8})

	clones, _ := m.Clone(1)
	c := clones[0]
	defer c.Close()

	buf := make([]byte, 8*8*4)
	cookie := &engine.Cookie{}
	if err := c.RenderRegion(prog, prog.Bounds(), 1, engine.RGBA, buf, cookie); err != nil {
		t.Fatal(err)
	}
	if got := buf[(4*8+4)*4:][:4]; string(got) != string([]byte{0, 0, 255, 255}) {
		t.Errorf("inside image: %v", got)
	}
	if got := buf[:4]; string(got) != string([]byte{0, 0, 0, 0}) {
		t.Errorf("outside image: %v", got)
	}
	if cookie.Errors() != 1 {
		t.Errorf("%d errors, want 1 for the unknown resource", cookie.Errors())
	}
}

// TestTilesMatchWhole checks that rendering a page in pieces gives the
// same pixels as rendering it in one go.
func TestTilesMatchWhole(t *testing.T) {
	m := NewContext()
	defer m.Close()

	prog := NewProgram(tiling.Rect{X1: 60, Y1: 40})
	prog.Fill(rectPath(5.3, 4.1, 51.7, 33.2), raster.NonZero, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
	circle := &path.Data{}
	circle.MoveTo(pt(30, 8)).
		CubeTo(pt(40, 8), pt(46, 16), pt(46, 22)).
		CubeTo(pt(46, 30), pt(40, 36), pt(30, 36)).
		CubeTo(pt(20, 36), pt(14, 30), pt(14, 22)).
		CubeTo(pt(14, 16), pt(20, 8), pt(30, 8)).Close()
	prog.Stroke(circle.Iter(), StrokeStyle{Width: 3, Join: graphics.LineJoinRound}, color.NRGBA{G: 120, A: 200})

	const zoom = 1.5
	full := prog.Bounds().Round(zoom)
	whole := make([]byte, full.Area()*4)
	if err := m.RenderRegion(prog, prog.Bounds(), zoom, engine.RGBA, whole, nil); err != nil {
		t.Fatal(err)
	}

	for _, tile := range tiling.SplitPixels(full, 6) {
		region := tiling.Rect{
			X0: float64(tile.X0) / zoom, Y0: float64(tile.Y0) / zoom,
			X1: float64(tile.X1) / zoom, Y1: float64(tile.Y1) / zoom,
		}
		buf := make([]byte, tile.Area()*4)
		if err := m.RenderRegion(prog, region, zoom, engine.RGBA, buf, nil); err != nil {
			t.Fatal(err)
		}
		for y := tile.Y0; y < tile.Y1; y++ {
			for x := tile.X0; x < tile.X1; x++ {
				a := buf[((y-tile.Y0)*tile.Dx()+x-tile.X0)*4:][:4]
				b := whole[(y*full.Dx()+x)*4:][:4]
				for k := range 4 {
					if d := int(a[k]) - int(b[k]); d < -3 || d > 3 {
						t.Fatalf("tile %v, pixel (%d,%d): %v != %v", tile, x, y, a, b)
					}
				}
			}
		}
	}
}
