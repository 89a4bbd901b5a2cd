package dither

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
)

// Ordered reduces every channel of buf to levels equally spaced values,
// choosing between the two nearest values by comparing against the tiled
// threshold matrix m.
//
// For a sample v at (x, y), with interval = 255/(levels-1):
//
//	base      = floor(v/interval) * interval
//	threshold = base + m.At(x, y) * interval
//	output    = base if threshold > v, else base + interval
//
// Each sample depends only on its own value and position, so rows are
// processed in parallel. levels is clamped to [2, 256]; with 256 levels the
// buffer is left unchanged.
func Ordered(buf *imaging.Buffer, levels int, m *Matrix, opts ...imaging.Option) {
	levels = ClampLevels(levels)
	o := imaging.NewOptions(opts...)
	progress := o.Tracker(buf.Height)

	tables := orderedTables(levels, m)

	parallel.Line(buf.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := buf.Pix[y*buf.Stride:]
			tableRow := (y % m.height) * m.width
			for x := 0; x < buf.Width; x++ {
				lut := tables[tableRow+x%m.width]
				i := x * imaging.Channels
				row[i] = lut[row[i]]
				row[i+1] = lut[row[i+1]]
				row[i+2] = lut[row[i+2]]
			}
		}
		progress.Add(end - start)
	})
}

// orderedTables precomputes, for every matrix cell, the output of each of
// the 256 possible input samples at that cell.
func orderedTables(levels int, m *Matrix) []*imaging.LUT {
	interval := Interval(levels)
	tables := make([]*imaging.LUT, len(m.values))
	for i, t := range m.values {
		tables[i] = imaging.NewLUT(func(v uint8) uint8 {
			return orderedSample(float64(v), t, interval)
		})
	}
	return tables
}

// orderedSample applies one threshold to one sample.
func orderedSample(v, threshold, interval float64) uint8 {
	base := math.Floor(v/interval) * interval
	if base+threshold*interval > v {
		return toSample(base)
	}
	return toSample(base + interval)
}

// Posterize reduces every channel to levels equally spaced values by plain
// rounding, with no dithering. It shares the level arithmetic of the
// dithering engines and runs through a single lookup table.
func Posterize(buf *imaging.Buffer, levels int, opts ...imaging.Option) {
	interval := Interval(levels)
	lut := imaging.NewLUT(func(v uint8) uint8 {
		return toSample(interval * math.Round(float64(v)/interval))
	})
	lut.Apply(buf, opts...)
}
