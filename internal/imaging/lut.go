package imaging

import (
	"github.com/anthonynsimon/bild/parallel"
)

// LUT is a precomputed mapping from every 8-bit input value to an 8-bit output.
// Any pure per-sample function can be tabulated once per pass.
type LUT [256]uint8

// NewLUT tabulates fn over all 256 inputs.
func NewLUT(fn func(v uint8) uint8) *LUT {
	var l LUT
	for i := range l {
		l[i] = fn(uint8(i))
	}
	return &l
}

// Apply maps every channel of every pixel through the table, in place.
// Rows are processed in parallel; the table is read-only.
func (l *LUT) Apply(buf *Buffer, opts ...Option) {
	o := NewOptions(opts...)
	progress := o.Tracker(buf.Height)

	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := buf.Pix[y*buf.Stride : y*buf.Stride+buf.Width*Channels]
			for i, v := range row {
				row[i] = l[v]
			}
		}
		progress.Add(end - start)
	})
}
