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

// Command tilerender renders pages using several goroutines at once.
//
// The pages are either described by HCL job files (see package
// seehuhn.de/go/tilerender/job) or taken from the built-in test scenes.
package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

// traceKeys lists the tracers of all packages of the module.
var traceKeys = []string{"render.tiles", "render.display", "render.job", "render.cli"}

// tracer traces with key 'render.cli'.
func tracer() tracing.Trace {
	return tracing.Select("render.cli")
}

func main() {
	initDisplay()

	traceFlag := &cli.StringFlag{
		Name:  "trace",
		Usage: "trace level [Debug|Info|Error]",
		Value: "Error",
	}
	threadsFlag := &cli.IntFlag{
		Name:    "threads",
		Aliases: []string{"t"},
		Usage:   "number of worker goroutines (0 for one per CPU)",
	}

	app := &cli.App{
		Name:  "tilerender",
		Usage: "tiled multi-threaded page rendering",
		Flags: []cli.Flag{traceFlag},
		Before: func(c *cli.Context) error {
			return setupTracing(c.String("trace"))
		},
		Commands: []*cli.Command{
			{
				Name:   "render",
				Usage:  "render a job file to PNG or TIFF",
				Action: commandRender,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     "job",
						Usage:    "path to the job file",
						Required: true,
					},
					&cli.PathFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "output file (.png, .tif or .tiff)",
						Required: true,
					},
					threadsFlag,
					&cli.Float64Flag{
						Name:  "zoom",
						Usage: "zoom factor, overrides the job file",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "pixel format rgb, rgba, bgr or bgra, overrides the job file",
					},
					&cli.BoolFlag{
						Name:  "show-tiles",
						Usage: "tint every tile in a different colour",
					},
				},
			},
			{
				Name:   "scene",
				Usage:  "render a built-in scene, or list the scenes",
				Action: commandScene,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "name of the scene; list all scenes if empty",
					},
					&cli.PathFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "output file (.png, .tif or .tiff)",
					},
					threadsFlag,
					&cli.Float64Flag{
						Name:  "zoom",
						Usage: "zoom factor",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "show-tiles",
						Usage: "tint every tile in a different colour",
					},
				},
			},
			{
				Name:   "tiles",
				Usage:  "show how an image is split into tiles",
				Action: commandTiles,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Usage: "image width in pixels", Value: 600},
					&cli.IntFlag{Name: "height", Usage: "image height in pixels", Value: 800},
					threadsFlag,
				},
			},
			{
				Name:   "pdf",
				Usage:  "write the page of a job file as a PDF proof",
				Action: commandPDF,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     "job",
						Usage:    "path to the job file",
						Required: true,
					},
					&cli.PathFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "output PDF file",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// initDisplay sets up the pterm prefixes.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " INFO ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setupTracing(level string) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	for _, key := range traceKeys {
		t := tracing.Select(key)
		switch level {
		case "Debug":
			t.SetTraceLevel(tracing.LevelDebug)
		case "Info":
			t.SetTraceLevel(tracing.LevelInfo)
		case "Error":
			t.SetTraceLevel(tracing.LevelError)
		default:
			return fmt.Errorf("invalid trace level %q", level)
		}
	}
	tracer().Debugf("trace level is %s", level)
	return nil
}
