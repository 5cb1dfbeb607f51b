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

package engine

import (
	"sync"
	"testing"
)

func TestPixelFormat(t *testing.T) {
	cases := []struct {
		f     PixelFormat
		name  string
		bpp   int
		alpha bool
	}{
		{RGB, "rgb", 3, false},
		{RGBA, "rgba", 4, true},
		{BGR, "bgr", 3, false},
		{BGRA, "bgra", 4, true},
	}
	for _, c := range cases {
		if got := c.f.String(); got != c.name {
			t.Errorf("%d: String() = %q, want %q", c.f, got, c.name)
		}
		if got := c.f.BytesPerPixel(); got != c.bpp {
			t.Errorf("%s: BytesPerPixel() = %d, want %d", c.name, got, c.bpp)
		}
		if got := c.f.HasAlpha(); got != c.alpha {
			t.Errorf("%s: HasAlpha() = %t, want %t", c.name, got, c.alpha)
		}
		f, err := ParsePixelFormat(c.name)
		if err != nil || f != c.f {
			t.Errorf("ParsePixelFormat(%q) = %v, %v", c.name, f, err)
		}
	}

	if f, err := ParsePixelFormat("BGRA"); err != nil || f != BGRA {
		t.Errorf("ParsePixelFormat is case sensitive: %v, %v", f, err)
	}
	if _, err := ParsePixelFormat("cmyk"); err == nil {
		t.Error("ParsePixelFormat accepted an unknown format")
	}
	if PixelFormat(0).IsValid() || PixelFormat(0).BytesPerPixel() != 0 {
		t.Error("zero PixelFormat should be invalid")
	}
}

func TestCookie(t *testing.T) {
	c := &Cookie{}
	c.Begin(10)
	for range 4 {
		c.Advance()
	}
	c.AddError()
	if cur, max := c.Progress(); cur != 4 || max != 10 {
		t.Errorf("Progress() = %d, %d, want 4, 10", cur, max)
	}
	if c.Aborted() || c.Incomplete() {
		t.Error("fresh cookie is aborted or incomplete")
	}

	c.Abort()
	c.SetIncomplete()
	if !c.Aborted() || !c.Incomplete() || c.Errors() != 1 {
		t.Error("cookie did not record abort, incomplete or error")
	}

	c.Reset()
	cur, max := c.Progress()
	if c.Aborted() || c.Incomplete() || c.Errors() != 0 || cur != 0 || max != 0 {
		t.Error("Reset did not clear the cookie")
	}
}

func TestNilCookie(t *testing.T) {
	var c *Cookie
	c.Abort()
	c.Begin(3)
	c.Advance()
	c.SetIncomplete()
	c.AddError()
	c.Reset()
	if c.Aborted() || c.Incomplete() || c.Errors() != 0 {
		t.Error("nil cookie reports state")
	}
}

func TestCookieConcurrent(t *testing.T) {
	c := &Cookie{}
	c.Begin(1000)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.Advance()
				c.Aborted()
			}
		}()
	}
	c.Abort()
	wg.Wait()

	if cur, _ := c.Progress(); cur != 1000 {
		t.Errorf("progress = %d, want 1000", cur)
	}
}
