// Package raster implements the image layout layer: rows, columns, arrays,
// padding, cropping, resizing, compositing and file I/O.
//
// Every function works on, and returns, [*image.NRGBA] images anchored at
// the origin. Inputs of any other [image.Image] type are converted first.
// Functions never modify their arguments; the result is always a new image.
//
// # Alignment
//
// Alignment is expressed as fractions of the free space: an [Align] of
// {0, 0} puts the image at the top-left of its cell, {0.5, 0.5} centres it
// and {1, 1} puts it at the bottom-right.
//
// # Fills
//
// A [Fill] paints a region of a given size. [Solid] fills with a color,
// [*Pattern] tiles an image from the origin of the region (optionally
// rotated) and [ImageFill] tiles or stretches an image. Geometry, legends
// and map charts all accept fills.
//
// # Compositing
//
// Pasting happens in non-premultiplied space: a source pixel over a fully
// transparent destination pixel is copied exactly, so layouts built on a
// transparent background reproduce their inputs bit for bit.
package raster
