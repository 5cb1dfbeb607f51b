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
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"
)

// ResourceID identifies an image stored in a master context.
// The zero value is never a valid ID.
type ResourceID uint32

// resourceTable holds the images shared by a master context and its
// clones.  Entries are only ever appended, so IDs stay valid for the
// lifetime of the table.
//
// The table counts its holders. The master holds one reference and every
// clone holds one more. The images are dropped when the last holder lets
// go.
type resourceTable struct {
	mu      sync.RWMutex
	images  []*image.RGBA
	holders atomic.Int32
}

func newResourceTable() *resourceTable {
	t := &resourceTable{}
	t.holders.Store(1)
	return t
}

// add stores a premultiplied copy of img and returns its ID.
func (t *resourceTable) add(img image.Image) ResourceID {
	b := img.Bounds()
	cp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(cp, cp.Bounds(), img, b.Min, draw.Src)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.images = append(t.images, cp)
	return ResourceID(len(t.images))
}

// get returns the image with the given ID.
func (t *resourceTable) get(id ResourceID) (*image.RGBA, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id == 0 || int(id) > len(t.images) {
		return nil, false
	}
	img := t.images[id-1]
	return img, img != nil
}

// len returns the number of stored images.
func (t *resourceTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.images)
}

func (t *resourceTable) retain() {
	t.holders.Add(1)
}

// release drops one reference. When the last reference is gone, the
// images are freed and the result is true.
func (t *resourceTable) release() bool {
	if t.holders.Add(-1) > 0 {
		return false
	}
	t.mu.Lock()
	clear(t.images)
	t.mu.Unlock()
	return true
}
