package quantize

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
)

// MaxPalettedColors is the largest palette an image.Paletted can index.
const MaxPalettedColors = 256

// Result is the outcome of an indexed quantization.
type Result struct {
	// Palette holds one color per final octree leaf.
	Palette []imaging.RGBColor

	// Indices holds the palette index of every pixel, row-major with a
	// stride of the buffer width.
	Indices []int
}

// Quantize reduces buf to at most maxColors colors in place and returns the
// palette. Every pixel is rewritten to its palette color.
//
// The tree is filled in a single-threaded pass; the remap pass only reads the
// finished tree and runs in parallel over rows. maxColors below 1 is treated
// as 1. If maxColors is at least the number of distinct colors, no merge
// happens and the image is unchanged.
func Quantize(buf *imaging.Buffer, maxColors int, opts ...imaging.Option) []imaging.RGBColor {
	t := buildTree(buf, maxColors)
	palette := t.Palette()

	o := imaging.NewOptions(opts...)
	progress := o.Tracker(buf.Height)
	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < buf.Width; x++ {
				buf.Set(x, y, palette[t.Lookup(buf.At(x, y))])
			}
		}
		progress.Add(end - start)
	})
	return palette
}

// QuantizeIndexed is like Quantize but leaves buf untouched and returns the
// per-pixel palette indices instead.
func QuantizeIndexed(buf *imaging.Buffer, maxColors int, opts ...imaging.Option) *Result {
	t := buildTree(buf, maxColors)
	indices := make([]int, buf.Width*buf.Height)

	o := imaging.NewOptions(opts...)
	progress := o.Tracker(buf.Height)
	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < buf.Width; x++ {
				indices[y*buf.Width+x] = t.Lookup(buf.At(x, y))
			}
		}
		progress.Add(end - start)
	})
	return &Result{Palette: t.Palette(), Indices: indices}
}

func buildTree(buf *imaging.Buffer, maxColors int) *Octree {
	t := NewOctree()
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			t.Insert(buf.At(x, y))
		}
	}
	t.BuildPalette(maxColors)
	return t
}

// Paletted quantizes img to at most maxColors colors (capped at 256) and
// returns a paletted image with bounds starting at (0,0). Alpha is dropped.
func Paletted(img image.Image, maxColors int) *image.Paletted {
	if maxColors > MaxPalettedColors {
		maxColors = MaxPalettedColors
	}
	buf := imaging.FromImage(img)
	res := QuantizeIndexed(buf, maxColors)

	dst := image.NewPaletted(image.Rect(0, 0, buf.Width, buf.Height), toColorPalette(res.Palette))
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			dst.Pix[y*dst.Stride+x] = uint8(res.Indices[y*buf.Width+x])
		}
	}
	return dst
}

func toColorPalette(p []imaging.RGBColor) color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	return out
}

// Quantizer adapts the octree to image/draw.Quantizer, so it can build the
// palette for image/gif and any other encoder that accepts one.
type Quantizer struct {
	// MaxColors caps the palette. Zero means use the capacity of the palette
	// passed to Quantize, or 256 if that is zero.
	MaxColors int
}

// Quantize appends up to cap(p)-len(p) colors chosen from m to p.
func (q Quantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	limit := q.MaxColors
	if limit == 0 {
		limit = cap(p) - len(p)
	}
	if limit <= 0 || limit > MaxPalettedColors-len(p) {
		limit = MaxPalettedColors - len(p)
	}
	if limit <= 0 {
		return p
	}

	t := buildTree(imaging.FromImage(m), limit)
	return append(p, toColorPalette(t.Palette())...)
}
