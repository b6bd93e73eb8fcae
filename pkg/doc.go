// Package pkg provides the libraries behind masonry, a balanced-column
// layout for variable-height items.
//
// # Overview
//
// A masonry wall places items one at a time into the column whose end is
// highest on screen, and only while a column end is visible. The column
// count follows the container width. The pkg directory is organized as:
//
//  1. [masonry] - the wall: column store, planner, fill scheduler, styles
//  2. [loop], [surface], [throttle] - a headless host that measures the wall
//     and reports visibility like a browser would
//  3. [layout], [sink] - the layout document and its JSON, SVG, HTML and
//     text renderings
//  4. [pipeline] - orchestration (simulate → layout → render) with caching
//  5. [cache], [config], [server] - infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Items (JSON)
//	     ↓
//	[surface] + [masonry] (simulate the wall on a virtual viewport)
//	     ↓
//	[layout] (columns, geometry, styles)
//	     ↓
//	[sink] (JSON / SVG / HTML / text)
//
// # Quick Start
//
//	items, _ := io.ImportJSON("items.json")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, items, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	os.WriteFile("wall.svg", result.Artifacts[pipeline.FormatSVG], 0o644)
package pkg
