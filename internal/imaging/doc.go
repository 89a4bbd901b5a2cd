// Package imaging provides the pixel surface and the image I/O shared by every
// color-reduction pass in the MCP server.
//
// The central type is Buffer: a dense RGB buffer with three interleaved 8-bit
// channels per pixel and an explicit stride. The quantizer and both dither
// engines rewrite a Buffer in place; this package converts between Buffers
// and standard image.Image values, loads and caches source files, encodes
// results, and reports on the colors an image uses.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. X increases
// rightward and Y increases downward. Pixel (x, y) starts at
// Pix[y*Stride + x*Channels].
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached images are never
// mutated; LoadBuffer returns a private copy per call. A Buffer itself is not
// synchronized: passes that split work across goroutines partition it by rows
// or by channel so no two goroutines write the same sample.
//
// # Color Representation
//
// Colors are reported in several forms:
//   - Hex: 6-character format "#RRGGBB" (uppercase)
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Error Handling
//
// Functions return wrapped errors for file I/O failures, unsupported output
// formats, inconsistent buffer geometry and mismatched buffer sizes.
//
// # Performance Considerations
//
// For repeated reductions of the same file, ImageCache avoids redundant
// decoding. Large images may consume significant memory when cached; use
// Evict() or Clear() in long-running processes.
package imaging
