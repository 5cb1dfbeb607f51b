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

// Package job reads render jobs from HCL files.
//
// A job file describes one page, a list of items painted on it, and the
// parameters used to render it:
//
//	page "poster" {
//	  width  = 612
//	  height = 792
//	}
//
//	render {
//	  threads = 6
//	  zoom    = 2
//	  format  = "rgba"
//	}
//
//	item "circle" {
//	  cx   = page_width / 2
//	  cy   = page_height / 2
//	  r    = 100
//	  fill = rgb(200, 30, 60)
//	}
//
// The page block is read first, so that the remaining blocks can refer to
// page_width and page_height.
package job

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/npillmayer/schuko/tracing"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/tiling"
)

// tracer traces with key 'render.job'.
func tracer() tracing.Trace {
	return tracing.Select("render.job")
}

// Job is a page together with its render settings.
type Job struct {
	Name          string
	Width, Height float64
	Background    *color.NRGBA // nil for no background

	Threads int
	Zoom    float64
	Format  engine.PixelFormat
	Clip    bool
	Region  tiling.Rect // the page area to render

	Scene string // name of a built-in page painted before Items
	Items []Item

	dir string // base directory for image files
}

// Bounds returns the page area.
func (j *Job) Bounds() tiling.Rect {
	return tiling.Rect{X1: j.Width, Y1: j.Height}
}

// Size returns the size of the rendered image in pixels.
func (j *Job) Size() tiling.Size {
	r := j.Region.Round(j.Zoom)
	return tiling.Size{W: r.Dx(), H: r.Dy()}
}

type fileHeader struct {
	Page   pageBlock `hcl:"page,block"`
	Remain hcl.Body  `hcl:",remain"`
}

type pageBlock struct {
	Name       string  `hcl:"name,label"`
	Width      float64 `hcl:"width"`
	Height     float64 `hcl:"height"`
	Background *string `hcl:"background,optional"`
}

type fileBody struct {
	Scene  *string      `hcl:"scene,optional"`
	Render *renderBlock `hcl:"render,block"`
	Items  []*itemBlock `hcl:"item,block"`
}

type renderBlock struct {
	Threads int       `hcl:"threads,optional"`
	Zoom    float64   `hcl:"zoom,optional"`
	Format  string    `hcl:"format,optional"`
	Clip    bool      `hcl:"clip,optional"`
	Region  []float64 `hcl:"region,optional"`
}

// Load reads a job file.  Image files named in the job are looked up
// relative to the directory of the job file.
func Load(fileName string) (*Job, error) {
	src, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	j, err := Parse(src, fileName)
	if err != nil {
		return nil, err
	}
	j.dir = filepath.Dir(fileName)
	return j, nil
}

// Parse reads a job from HCL source.  The file name is only used in
// error messages.
func Parse(src []byte, fileName string) (*Job, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, fileName)
	if diags.HasErrors() {
		return nil, diags
	}

	var head fileHeader
	if diags := gohcl.DecodeBody(f.Body, newEvalContext(nil), &head); diags.HasErrors() {
		return nil, diags
	}
	if !(head.Page.Width > 0 && head.Page.Height > 0) {
		return nil, fmt.Errorf("%s: page %q has size %gx%g",
			fileName, head.Page.Name, head.Page.Width, head.Page.Height)
	}

	var body fileBody
	ctx := newEvalContext(map[string]cty.Value{
		"page_width":  cty.NumberFloatVal(head.Page.Width),
		"page_height": cty.NumberFloatVal(head.Page.Height),
	})
	if diags := gohcl.DecodeBody(head.Remain, ctx, &body); diags.HasErrors() {
		return nil, diags
	}

	j := &Job{
		Name:   head.Page.Name,
		Width:  head.Page.Width,
		Height: head.Page.Height,
		Zoom:   1,
		Format: engine.RGBA,
	}
	j.Region = j.Bounds()
	if head.Page.Background != nil {
		bg, err := parseColor(*head.Page.Background, 1)
		if err != nil {
			return nil, fmt.Errorf("page background: %w", err)
		}
		j.Background = &bg
	}
	if body.Scene != nil {
		j.Scene = *body.Scene
	}

	if r := body.Render; r != nil {
		if err := j.applyRender(r); err != nil {
			return nil, fmt.Errorf("%s: render: %w", fileName, err)
		}
	}

	for i, b := range body.Items {
		item, err := decodeItem(b, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: item %d (%s): %w", fileName, i+1, b.Kind, err)
		}
		j.Items = append(j.Items, item)
	}

	tracer().Debugf("job %q: %d items", j.Name, len(j.Items))
	return j, nil
}

func (j *Job) applyRender(r *renderBlock) error {
	j.Threads = r.Threads
	j.Clip = r.Clip
	if r.Zoom != 0 {
		if r.Zoom < 0 {
			return fmt.Errorf("invalid zoom %g", r.Zoom)
		}
		j.Zoom = r.Zoom
	}
	if r.Format != "" {
		f, err := engine.ParsePixelFormat(r.Format)
		if err != nil {
			return err
		}
		j.Format = f
	}
	if r.Region != nil {
		if len(r.Region) != 4 {
			return fmt.Errorf("region needs 4 numbers, got %d", len(r.Region))
		}
		reg := tiling.Rect{X0: r.Region[0], Y0: r.Region[1], X1: r.Region[2], Y1: r.Region[3]}
		if reg.IsEmpty() {
			return fmt.Errorf("empty region %v", reg)
		}
		j.Region = reg
	}
	return nil
}

func newEvalContext(vars map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: vars,
		Functions: map[string]function.Function{
			"rgb": rgbFunc,
			"min": stdlib.MinFunc,
			"max": stdlib.MaxFunc,
			"abs": stdlib.AbsoluteFunc,
		},
	}
}

// rgbFunc converts three 0-255 channel values to a hex colour string.
var rgbFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "r", Type: cty.Number},
		{Name: "g", Type: cty.Number},
		{Name: "b", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		var ch [3]float64
		for i, a := range args {
			v, _ := a.AsBigFloat().Float64()
			if v < 0 || v > 255 {
				return cty.NilVal, function.NewArgErrorf(i, "value %g outside 0-255", v)
			}
			ch[i] = v / 255
		}
		c := colorful.Color{R: ch[0], G: ch[1], B: ch[2]}
		return cty.StringVal(c.Hex()), nil
	},
})

// parseColor converts a hex colour like "#ff8000" and an opacity in the
// range 0 to 1 into a colour value.
func parseColor(s string, opacity float64) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	if opacity < 0 || opacity > 1 {
		return color.NRGBA{}, fmt.Errorf("opacity %g outside 0-1", opacity)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(opacity*255 + 0.5)}, nil
}
