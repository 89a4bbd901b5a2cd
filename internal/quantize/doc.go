// Package quantize builds adaptive palettes with an octree.
//
// Every pixel is inserted into an 8-level tree that branches on one bit of
// each channel per level. Leaves are then merged bottom-up, least-populated
// subtrees first, until no more than the requested number remain; each
// surviving leaf contributes the average of the pixels it absorbed to the
// palette. A second pass maps every pixel to its leaf.
//
// Quantize rewrites an imaging.Buffer in place, QuantizeIndexed returns
// palette indices, Paletted produces an *image.Paletted, and Quantizer plugs
// the octree into image/gif through image/draw.Quantizer.
package quantize
