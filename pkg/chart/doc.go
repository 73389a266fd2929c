// Package chart renders charts to images.
//
// # Charts
//
//   - [BarChart]: grouped, stacked and percentage bar charts from a [Table]
//   - [GridChart]: a grid of per-cell images with row, column and group labels
//   - [MapChart] and [RenderMap]: choropleth maps from an index image whose
//     colors identify regions
//   - [TimeChart]: rows of intervals along a linear time axis
//   - [MonthChart]: one month of a [calendar.Calendar]
//
// Every chart returns an *image.NRGBA anchored at the origin. Labels are
// [Label] values, either text rendered with the chart's font or a ready
// image; callbacks returning the zero Label draw nothing.
//
// # Errors
//
// Empty or ragged data is a DATA_SHAPE error, inverted or non-positive
// ranges and negative intervals are NUMERIC_RANGE errors, and conflicting
// options are ARGUMENT_ERROR. Map regions named by the caller but missing
// from the index map are reported as UNKNOWN_REGION warnings, not errors.
package chart
