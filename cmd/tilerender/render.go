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

package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/muesli/gamut"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"seehuhn.de/go/tilerender"
	"seehuhn.de/go/tilerender/display"
	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/job"
	"seehuhn.de/go/tilerender/testcases"
	"seehuhn.de/go/tilerender/tiling"
)

// settings collects everything needed to render one page.
type settings struct {
	threads   int
	zoom      float64
	format    engine.PixelFormat
	region    tiling.Rect
	clip      bool
	showTiles bool
	out       string
}

func commandRender(c *cli.Context) error {
	j, err := job.Load(c.Path("job"))
	if err != nil {
		return err
	}

	s := settings{
		threads:   j.Threads,
		zoom:      j.Zoom,
		format:    j.Format,
		region:    j.Region,
		clip:      j.Clip,
		showTiles: c.Bool("show-tiles"),
		out:       c.Path("out"),
	}
	if c.IsSet("threads") {
		s.threads = c.Int("threads")
	}
	if c.IsSet("zoom") {
		s.zoom = c.Float64("zoom")
	}
	if f := c.String("format"); f != "" {
		s.format, err = engine.ParsePixelFormat(f)
		if err != nil {
			return err
		}
	}

	master := display.NewContext()
	defer master.Close()
	prog, err := j.Program(master)
	if err != nil {
		return err
	}
	pterm.Info.Printf("job %q: %d operations\n", j.Name, prog.Len())
	return renderToFile(master, prog, s)
}

func commandScene(c *cli.Context) error {
	name := c.String("name")
	if name == "" {
		data := [][]string{{"name", "width", "height", "items"}}
		for _, p := range testcases.Pages {
			data = append(data, []string{
				p.Name,
				fmt.Sprintf("%g", p.Width),
				fmt.Sprintf("%g", p.Height),
				fmt.Sprintf("%d", len(p.Items)),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return nil
	}

	page, ok := testcases.PageByName(name)
	if !ok {
		return fmt.Errorf("unknown scene %q", name)
	}
	out := c.Path("out")
	if out == "" {
		out = name + ".png"
	}
	prog := job.Scene(page)

	master := display.NewContext()
	defer master.Close()
	return renderToFile(master, prog, settings{
		threads:   c.Int("threads"),
		zoom:      c.Float64("zoom"),
		format:    engine.RGBA,
		region:    prog.Bounds(),
		showTiles: c.Bool("show-tiles"),
		out:       out,
	})
}

// renderToFile renders prog with a new coordinator and writes the
// stitched image.
func renderToFile(master *display.Context, prog *display.Program, s settings) error {
	if !(s.zoom > 0) {
		return fmt.Errorf("invalid zoom factor %g", s.zoom)
	}
	pix := s.region.Round(s.zoom)
	size := tiling.Size{W: pix.Dx(), H: pix.Dy()}

	coord, err := tilerender.New(master, prog, tilerender.Options{
		Threads:          s.threads,
		ClipToPageBounds: s.clip,
	})
	if err != nil {
		return err
	}
	defer coord.Close()

	tiles := coord.Tiles(size)
	dst := make([][]byte, len(tiles))
	for i, t := range tiles {
		dst[i] = make([]byte, t.Area()*s.format.BytesPerPixel())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pterm.Info.Printf("rendering %v pixels with %d threads\n", size, coord.Threads())
	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- coord.Render(ctx, size, s.region, dst, s.format)
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
wait:
	for {
		select {
		case err = <-done:
			break wait
		case <-ticker.C:
			pterm.Info.Printf("%s\n", progressLine(coord.Progress()))
		}
	}
	if err != nil {
		return err
	}
	pterm.Success.Printf("rendered in %v\n", time.Since(start).Round(time.Millisecond))

	img, err := tilerender.Stitch(tiles, dst, s.format)
	if err != nil {
		return err
	}
	if s.showTiles {
		if err := tintTiles(img, tiles); err != nil {
			return err
		}
	}
	if err := writeImage(s.out, img); err != nil {
		return err
	}
	pterm.Success.Printf("wrote %s\n", s.out)
	return nil
}

// progressLine summarizes the progress of all workers.
func progressLine(progress []tilerender.Progress) string {
	var cur, total int64
	parts := make([]string, len(progress))
	for i, p := range progress {
		cur += p.Current
		total += p.Max
		parts[i] = fmt.Sprintf("%d/%d", p.Current, p.Max)
	}
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(cur) / float64(total)
	}
	return fmt.Sprintf("%5.1f%% [%s]", pct, strings.Join(parts, " "))
}

// tintTiles draws every tile in a translucent colour of its own.
func tintTiles(img draw.Image, tiles []tiling.PixelRect) error {
	colors, err := gamut.Generate(len(tiles), gamut.PastelGenerator{})
	if err != nil {
		return err
	}
	for i, t := range tiles {
		r, g, b, _ := colors[i].RGBA()
		tint := color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 80}
		draw.Draw(img, t.Image(), image.NewUniform(tint), image.Point{}, draw.Over)
	}
	return nil
}

// writeImage writes img as PNG or TIFF, depending on the file name.
func writeImage(fileName string, img image.Image) error {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".tif", ".tiff":
		encode = func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		}
	case ".png":
		encode = png.Encode
	default:
		return fmt.Errorf("%s: unknown image format", fileName)
	}

	fd, err := os.Create(fileName)
	if err != nil {
		return err
	}
	err = encode(fd, img)
	if cerr := fd.Close(); err == nil {
		err = cerr
	}
	tracer().Debugf("wrote %s: %v", fileName, err)
	return err
}
