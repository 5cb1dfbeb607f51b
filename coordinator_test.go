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

package tilerender

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/tilerender/display"
	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/job"
	"seehuhn.de/go/tilerender/raster"
	"seehuhn.de/go/tilerender/testcases"
	"seehuhn.de/go/tilerender/tiling"
)

var page = fakeProgram{bounds: tiling.Rect{X1: 600, Y1: 800}}

func TestNewNormalizesThreads(t *testing.T) {
	e, master := newFake()
	coord, err := New(master, page, Options{Threads: 11})
	require.NoError(t, err)
	assert.Equal(t, 10, coord.Threads())
	assert.Equal(t, int64(10), e.created.Load())
	assert.Len(t, coord.Tiles(tiling.Size{W: 600, H: 800}), 10)
	require.NoError(t, coord.Close())

	coord, err = New(master, page, Options{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, coord.Threads(), 1)
	require.NoError(t, coord.Close())
}

func TestCloneFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "render.tiles")
	defer teardown()

	e, master := newFake()
	e.limit = 3
	coord, err := New(master, page, Options{Threads: 4})
	assert.Nil(t, coord)

	var cloneErr *CloneError
	require.ErrorAs(t, err, &cloneErr)
	assert.Equal(t, 4, cloneErr.Wanted)
	assert.Equal(t, 3, cloneErr.Released)
	assert.ErrorIs(t, err, errCloneFailed)
	assert.Equal(t, e.created.Load(), e.closed.Load(), "partial clones must be released")
}

func TestCloneLimitDisplay(t *testing.T) {
	master := display.NewContext(display.WithCloneLimit(2))
	defer master.Close()

	_, err := New(master, display.NewProgram(page.bounds), Options{Threads: 3})
	assert.ErrorIs(t, err, display.ErrCloneLimit)
	assert.Equal(t, master.Stats().ClonesCreated, master.Stats().ClonesClosed)
}

// TestClose checks that all contexts are released, and that Close can be
// called more than once.
func TestClose(t *testing.T) {
	e, master := newFake()
	coord, err := New(master, page, Options{Threads: 6})
	require.NoError(t, err)

	size := tiling.Size{W: 60, H: 80}
	dst := buffers(coord, size, engine.RGB)
	require.NoError(t, coord.Render(context.Background(), size, page.bounds, dst, engine.RGB))

	require.NoError(t, coord.Close())
	require.NoError(t, coord.Close())
	assert.Equal(t, int64(6), e.created.Load())
	assert.Equal(t, int64(6), e.closed.Load())

	err = coord.Render(context.Background(), size, page.bounds, dst, engine.RGB)
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, master.Closed())
}

func TestLifetime(t *testing.T) {
	_, master := newFake()
	coord, err := New(master, page, Options{Threads: 2})
	require.NoError(t, err)

	master.Close()
	size := tiling.Size{W: 10, H: 10}
	err = coord.Render(context.Background(), size, page.bounds, buffers(coord, size, engine.RGB), engine.RGB)
	var lifeErr *LifetimeError
	assert.ErrorAs(t, err, &lifeErr)

	assert.PanicsWithError(t, (&LifetimeError{Op: "close"}).Error(), func() {
		coord.Close()
	})

	_, err = New(master, page, Options{Threads: 2})
	assert.ErrorAs(t, err, &lifeErr)
}

// TestPlacement checks that every pixel ends up in the right place of the
// stitched image.
func TestPlacement(t *testing.T) {
	for _, threads := range []int{1, 2, 3, 4, 5, 7, 12} {
		for _, format := range []engine.PixelFormat{engine.RGB, engine.BGRA} {
			_, master := newFake()
			coord, err := New(master, page, Options{Threads: threads})
			require.NoError(t, err)

			size := tiling.Size{W: 300, H: 400}
			dst := buffers(coord, size, format)
			err = coord.Render(context.Background(), size, page.bounds, dst, format)
			require.NoError(t, err)

			img, err := Stitch(coord.Tiles(size), dst, format)
			require.NoError(t, err)
			require.Equal(t, size.Rect().Image(), img.Bounds())

		pixels:
			for y := range size.H {
				for x := range size.W {
					px := img.Pix[img.PixOffset(x, y):][:3]
					want := []byte{byte(x), byte(y), byte(x + y)}
					if format == engine.BGRA {
						want[0], want[2] = want[2], want[0]
					}
					if !bytes.Equal(px, want) {
						t.Errorf("%d threads, %s: pixel (%d,%d) = %v, want %v",
							threads, format, x, y, px, want)
						break pixels
					}
				}
			}
			require.NoError(t, coord.Close())
		}
	}
}

func TestValidation(t *testing.T) {
	_, master := newFake()
	coord, err := New(master, page, Options{Threads: 4})
	require.NoError(t, err)
	defer coord.Close()

	ctx := context.Background()
	size := tiling.Size{W: 60, H: 80}
	dst := buffers(coord, size, engine.RGB)

	assert.Error(t, coord.Render(ctx, size, page.bounds, dst[:3], engine.RGB))
	assert.Error(t, coord.Render(ctx, tiling.Size{}, page.bounds, dst, engine.RGB))
	assert.Error(t, coord.Render(ctx, size, tiling.Rect{}, dst, engine.RGB))
	assert.Error(t, coord.Render(ctx, size, page.bounds, dst, engine.PixelFormat(0)))

	err = coord.Render(ctx, size, page.bounds, dst, engine.RGBA)
	assert.ErrorIs(t, err, engine.ErrBufferTooSmall)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, 0, renderErr.Tile)
}

func TestTileFailure(t *testing.T) {
	e, master := newFake()
	coord, err := New(master, page, Options{Threads: 4})
	require.NoError(t, err)
	defer coord.Close()

	size := tiling.Size{W: 60, H: 80}
	tiles := coord.Tiles(size)
	e.fail = func(r tiling.PixelRect) bool { return r == tiles[2] }

	dst := buffers(coord, size, engine.RGB)
	err = coord.Render(context.Background(), size, page.bounds, dst, engine.RGB)
	require.ErrorIs(t, err, errBroken)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, 2, renderErr.Tile)
	assert.False(t, renderErr.Aborted())

	// the other tiles are rendered
	t0 := tiles[0]
	assert.Equal(t, byte(t0.X0+1), dst[0][3])
	assert.Equal(t, int64(1), coord.Progress()[2].Errors)
}

func TestAbort(t *testing.T) {
	e, master := newFake()
	e.slow = true
	coord, err := New(master, page, Options{Threads: 4})
	require.NoError(t, err)
	defer coord.Close()

	size := tiling.Size{W: 60, H: 80}
	dst := buffers(coord, size, engine.RGB)
	done := make(chan error, 1)
	go func() {
		done <- coord.Render(context.Background(), size, page.bounds, dst, engine.RGB)
	}()

	require.Eventually(t, func() bool { return e.started.Load() == 4 },
		5*time.Second, time.Millisecond)
	coord.Abort()

	select {
	case err := <-done:
		require.ErrorIs(t, err, engine.ErrAborted)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.True(t, renderErr.Aborted())
	case <-time.After(5 * time.Second):
		t.Fatal("Render did not return after Abort")
	}
	for _, p := range coord.Progress() {
		assert.True(t, p.Incomplete)
	}

	// the next render is not affected by the abort
	e.slow = false
	err = coord.Render(context.Background(), size, page.bounds, dst, engine.RGB)
	assert.NoError(t, err)
	for _, p := range coord.Progress() {
		assert.False(t, p.Incomplete)
		assert.Equal(t, p.Max, p.Current)
	}
}

func TestContextCancel(t *testing.T) {
	e, master := newFake()
	e.slow = true
	coord, err := New(master, page, Options{Threads: 3})
	require.NoError(t, err)
	defer coord.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	size := tiling.Size{W: 60, H: 80}
	err = coord.Render(ctx, size, page.bounds, buffers(coord, size, engine.RGB), engine.RGB)
	assert.ErrorIs(t, err, engine.ErrAborted)
}

// TestCloseDuringRender checks that Close aborts a running render and
// waits for it.
func TestCloseDuringRender(t *testing.T) {
	e, master := newFake()
	e.slow = true
	coord, err := New(master, page, Options{Threads: 2})
	require.NoError(t, err)

	size := tiling.Size{W: 60, H: 80}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := coord.Render(context.Background(), size, page.bounds, buffers(coord, size, engine.RGB), engine.RGB)
		assert.ErrorIs(t, err, engine.ErrAborted)
	}()
	require.Eventually(t, func() bool { return e.started.Load() == 2 },
		5*time.Second, time.Millisecond)

	require.NoError(t, coord.Close())
	wg.Wait()
	assert.Equal(t, int64(2), e.closed.Load())
}

// TestReuse renders the same page several times and checks that the
// output is always the same, also when compared to fresh coordinators.
func TestReuse(t *testing.T) {
	scene, ok := testcases.PageByName("rings")
	require.True(t, ok)
	prog := job.Scene(scene)

	master := display.NewContext()
	defer master.Close()

	size := tiling.Size{W: 600, H: 800}
	region := prog.Bounds()
	render := func(coord *Coordinator) [][]byte {
		dst := buffers(coord, size, engine.RGBA)
		require.NoError(t, coord.Render(context.Background(), size, region, dst, engine.RGBA))
		return dst
	}

	coord, err := New(master, prog, Options{Threads: 4})
	require.NoError(t, err)
	first := render(coord)
	second := render(coord)
	require.NoError(t, coord.Close())
	assert.Equal(t, first, second)

	fresh, err := New(master, prog, Options{Threads: 4})
	require.NoError(t, err)
	third := render(fresh)
	require.NoError(t, fresh.Close())
	assert.Equal(t, first, third)

	s := master.Stats()
	assert.Equal(t, int64(8), s.ClonesCreated)
	assert.Equal(t, int64(8), s.ClonesClosed)
}

// TestThreadsAgree checks that the number of workers does not change the
// stitched image by more than rounding noise.
func TestThreadsAgree(t *testing.T) {
	scene, _ := testcases.PageByName("shapes")
	prog := job.Scene(scene)
	master := display.NewContext()
	defer master.Close()

	size := tiling.Size{W: 306, H: 396}
	var ref []byte
	for _, threads := range []int{1, 4, 6} {
		coord, err := New(master, prog, Options{Threads: threads})
		require.NoError(t, err)
		dst := buffers(coord, size, engine.RGB)
		require.NoError(t, coord.Render(context.Background(), size, prog.Bounds(), dst, engine.RGB))
		img, err := Stitch(coord.Tiles(size), dst, engine.RGB)
		require.NoError(t, err)
		require.NoError(t, coord.Close())

		if ref == nil {
			ref = img.Pix
			continue
		}
		for i := range ref {
			if d := int(ref[i]) - int(img.Pix[i]); d < -3 || d > 3 {
				t.Fatalf("%d threads: byte %d differs: %d != %d", threads, i, img.Pix[i], ref[i])
			}
		}
	}
}

func TestClipToPage(t *testing.T) {
	prog := display.NewProgram(tiling.Rect{X1: 100, Y1: 100})
	prog.Fill(testcases.Rectangle(-50, -50, 150, 150).Iter(), raster.NonZero, color.Black)

	cases := []Options{
		{Threads: 4, ClipToPageBounds: true, PageBounds: tiling.Rect{X1: 50, Y1: 100}},
		{Threads: 4, ClipToPageBounds: true, PageBounds: tiling.Rect{X1: 100, Y1: 200},
			ResolutionX: 144, ResolutionY: 144},
	}
	for i, opts := range cases {
		master := display.NewContext()
		coord, err := New(master, prog, opts)
		require.NoError(t, err)

		size := tiling.Size{W: 100, H: 100}
		for _, format := range []engine.PixelFormat{engine.RGB, engine.RGBA} {
			dst := buffers(coord, size, format)
			require.NoError(t, coord.Render(context.Background(), size, prog.Bounds(), dst, format))
			img, err := Stitch(coord.Tiles(size), dst, format)
			require.NoError(t, err)

			inside := img.NRGBAAt(25, 50)
			outside := img.NRGBAAt(75, 50)
			assert.Equal(t, uint8(255), inside.A, "case %d, %s", i, format)
			assert.Equal(t, uint8(0), inside.R, "case %d, %s", i, format)
			if format.HasAlpha() {
				assert.Equal(t, uint8(0), outside.A, "case %d, %s", i, format)
			} else {
				assert.Equal(t, uint8(255), outside.R, "case %d, %s", i, format)
			}
		}
		require.NoError(t, coord.Close())
		require.NoError(t, master.Close())
	}
}

func TestProgress(t *testing.T) {
	scene, _ := testcases.PageByName("dense")
	prog := job.Scene(scene)
	master := display.NewContext()
	defer master.Close()

	coord, err := New(master, prog, Options{Threads: 2})
	require.NoError(t, err)
	defer coord.Close()

	for _, p := range coord.Progress() {
		assert.Equal(t, Progress{}, p)
	}

	size := tiling.Size{W: 120, H: 160}
	require.NoError(t, coord.Render(context.Background(), size, prog.Bounds(),
		buffers(coord, size, engine.RGB), engine.RGB))
	for _, p := range coord.Progress() {
		assert.Equal(t, int64(len(scene.Items)), p.Max)
		assert.Equal(t, p.Max, p.Current)
	}
}

func TestRenderErrorUnwrap(t *testing.T) {
	err := error(&RenderError{Tile: 3, Err: engine.ErrAborted})
	assert.True(t, errors.Is(err, engine.ErrAborted))
	assert.Contains(t, err.Error(), "tile 3")
}

// TestCancelledContextIsolated checks that a cancelled context only
// affects the call it was passed to.
func TestCancelledContextIsolated(t *testing.T) {
	scene, _ := testcases.PageByName("dense")
	prog := job.Scene(scene)
	master := display.NewContext()
	defer master.Close()

	coord, err := New(master, prog, Options{Threads: 4})
	require.NoError(t, err)
	defer coord.Close()

	size := tiling.Size{W: 120, H: 160}
	dst := buffers(coord, size, engine.RGB)
	for range 20 {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		coord.Render(ctx, size, prog.Bounds(), dst, engine.RGB)

		require.NoError(t, coord.Render(context.Background(), size, prog.Bounds(), dst, engine.RGB))
		for i, p := range coord.Progress() {
			assert.False(t, p.Incomplete, "worker %d", i)
		}
	}
}

func TestWorkerQuitReleasesWaiter(t *testing.T) {
	_, master := newFake()
	w := newWorker(0, master, page)
	var wg sync.WaitGroup
	wg.Add(1)
	go w.run(&wg)

	close(w.quit)
	wg.Wait()
	select {
	case err := <-w.fromWork:
		assert.ErrorIs(t, err, ErrClosed)
	default:
		t.Fatal("worker exited without a result")
	}
}
