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

package job

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for image items
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"seehuhn.de/go/tilerender/display"
	"seehuhn.de/go/tilerender/raster"
	"seehuhn.de/go/tilerender/testcases"
)

// Program builds the display program of the job.  Images are loaded
// and stored in master, which must be the context used for rendering.
func (j *Job) Program(master *display.Context) (*display.Program, error) {
	prog := display.NewProgram(j.Bounds())

	if j.Background != nil {
		prog.Fill(testcases.Rectangle(0, 0, j.Width, j.Height).Iter(), raster.NonZero, *j.Background)
	}
	if j.Scene != "" {
		page, ok := testcases.PageByName(j.Scene)
		if !ok {
			return nil, fmt.Errorf("unknown scene %q", j.Scene)
		}
		appendScene(prog, page)
	}

	ids := make(map[string]display.ResourceID)
	for _, item := range j.Items {
		if item.Kind == "image" {
			id, ok := ids[item.Image]
			if !ok {
				img, err := j.loadImage(item.Image)
				if err != nil {
					return nil, err
				}
				id, err = master.AddImage(img)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", item.Image, err)
				}
				ids[item.Image] = id
			}
			prog.Image(id, item.Rect)
			continue
		}

		if item.Fill != nil {
			prog.Fill(item.Path.Iter(), item.Rule, *item.Fill)
		}
		if item.Stroke != nil {
			prog.Stroke(item.Path.Iter(), item.Style, *item.Stroke)
		}
	}
	return prog, nil
}

func (j *Job) loadImage(name string) (image.Image, error) {
	if !filepath.IsAbs(name) && j.dir != "" {
		name = filepath.Join(j.dir, name)
	}
	fd, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	img, format, err := image.Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tracer().Debugf("loaded %s image %s, %v", format, name, img.Bounds())
	return img, nil
}
