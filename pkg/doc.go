// Package pkg provides the libraries behind chartkit, a toolkit for
// composing images and charts.
//
// # Overview
//
// The pkg directory is organized in layers:
//
//  1. [colors] - Color parsing, linear-light blending, palettes, colormaps
//  2. [raster] - Canvas creation, padding, cropping, resizing, layout, I/O
//  3. [geometry] - Antialiased shapes, masks and frames
//  4. [text] and [fonts] - Font resolution, markup, wrapping, fitting
//  5. [httputil] - Image downloads with a rate-limited on-disk cache
//  6. [legend] and [chart] - Legends and bar, grid, map, time and month charts
//  7. [calendar] - Gregorian and Julian calendars for month charts
//  8. [config], [errors] and [observability] - Shared configuration, error
//     codes and instrumentation hooks
//
// # Architecture
//
// The typical data flow:
//
//	Data table / index map / URLs
//	         ↓
//	    [chart] or [legend] (layout of the chart)
//	         ↓
//	    [text], [geometry] (labels and shapes)
//	         ↓
//	    [raster] (composition and encoding)
//
// # Quick Start
//
//	img, err := chart.BarChart(chart.Table{Values: [][]float64{{3, 1}, {1, 2}}}, chart.BarOptions{
//	    BarWidth:    10,
//	    ChartLength: 100,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	raster.Save(img, "bars.png", 0)
//
// # Images
//
// Every operation returns a new *image.NRGBA anchored at the origin and
// leaves its inputs untouched. Colors are blended in linear light.
//
// # Configuration
//
// Options structs carry a *config.Config; nil means the process default,
// which a program may replace once at startup with config.SetDefault.
//
// [colors]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/colors
// [raster]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/raster
// [geometry]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/geometry
// [text]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/text
// [fonts]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/fonts
// [httputil]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/httputil
// [legend]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/legend
// [chart]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/chart
// [calendar]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/calendar
// [config]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/chartkit/pkg/observability
package pkg
