package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Channels is the number of interleaved 8-bit samples per pixel in a Buffer.
const Channels = 3

// Buffer is a dense, fixed-stride pixel buffer holding three 8-bit channels
// (R, G, B) per pixel. It is the working surface of every color-reduction pass:
// the quantizer and both dither engines read and rewrite Pix in place.
//
// Pixel (x, y) starts at Pix[y*Stride + x*Channels]. Stride is at least
// Width*Channels; any trailing bytes in a row are never touched.
//
// A Buffer carries no alpha. Conversion from an image.Image drops alpha after
// un-premultiplying, and conversion back produces a fully opaque image.
type Buffer struct {
	// Width is the number of pixels per row.
	Width int

	// Height is the number of rows.
	Height int

	// Stride is the distance in bytes between the starts of adjacent rows.
	Stride int

	// Pix holds the interleaved R, G, B samples.
	Pix []uint8
}

// NewBuffer allocates a zeroed (black) buffer of the given dimensions.
// Negative dimensions are treated as zero.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	stride := width * Channels
	return &Buffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]uint8, stride*height),
	}
}

// FromImage copies an image into a new Buffer.
//
// The source is first normalized to non-premultiplied RGBA with
// imaging.Clone, so every concrete image type (paletted, YCbCr, 16-bit)
// goes through the same path. The returned buffer's (0,0) corresponds to
// the source's bounds.Min.
func FromImage(img image.Image) *Buffer {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	buf := NewBuffer(w, h)

	for y := 0; y < h; y++ {
		si := y * src.Stride
		di := y * buf.Stride
		for x := 0; x < w; x++ {
			buf.Pix[di] = src.Pix[si]
			buf.Pix[di+1] = src.Pix[si+1]
			buf.Pix[di+2] = src.Pix[si+2]
			si += 4
			di += Channels
		}
	}
	return buf
}

// Image returns an opaque *image.NRGBA copy of the buffer with bounds
// starting at (0,0).
func (b *Buffer) Image() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		si := y * b.Stride
		di := y * dst.Stride
		for x := 0; x < b.Width; x++ {
			dst.Pix[di] = b.Pix[si]
			dst.Pix[di+1] = b.Pix[si+1]
			dst.Pix[di+2] = b.Pix[si+2]
			dst.Pix[di+3] = 0xff
			si += Channels
			di += 4
		}
	}
	return dst
}

// Clone returns a deep copy of the buffer with a tight stride.
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.Width, b.Height)
	for y := 0; y < b.Height; y++ {
		copy(c.Pix[y*c.Stride:(y+1)*c.Stride], b.Pix[y*b.Stride:y*b.Stride+b.Width*Channels])
	}
	return c
}

// Offset returns the index in Pix of the first sample of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return y*b.Stride + x*Channels
}

// At returns the color of pixel (x, y). It panics if the coordinates are
// outside the buffer, matching slice indexing semantics.
func (b *Buffer) At(x, y int) RGBColor {
	i := b.Offset(x, y)
	return RGBColor{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2]}
}

// Set writes the color of pixel (x, y).
func (b *Buffer) Set(x, y int, c RGBColor) {
	i := b.Offset(x, y)
	b.Pix[i] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
}

// Validate reports whether the buffer's geometry is consistent with Pix.
func (b *Buffer) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("invalid buffer dimensions %dx%d", b.Width, b.Height)
	}
	if b.Stride < b.Width*Channels {
		return fmt.Errorf("stride %d too small for width %d", b.Stride, b.Width)
	}
	if b.Height > 0 && len(b.Pix) < (b.Height-1)*b.Stride+b.Width*Channels {
		return fmt.Errorf("pixel slice of length %d too short for %dx%d stride %d",
			len(b.Pix), b.Width, b.Height, b.Stride)
	}
	return nil
}
