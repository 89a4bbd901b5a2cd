package imaging

import (
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ReductionStats summarizes how far a reduced image drifted from its source.
type ReductionStats struct {
	// TotalPixels is the number of pixels compared.
	TotalPixels int `json:"total_pixels"`

	// PixelsChanged counts pixels whose RGB value differs at all.
	PixelsChanged int `json:"pixels_changed"`

	// SimilarityScore is the fraction of unchanged pixels (0.0 to 1.0).
	SimilarityScore float64 `json:"similarity_score"`

	// MeanDeltaE is the average CIE76 distance in Lab space, scaled so that
	// 1.0 is roughly one just-noticeable difference.
	MeanDeltaE float64 `json:"mean_delta_e"`

	// MaxDeltaE is the largest per-pixel Lab distance, on the same scale.
	MaxDeltaE float64 `json:"max_delta_e"`

	// ColorsBefore and ColorsAfter are the distinct color counts.
	ColorsBefore int `json:"colors_before"`
	ColorsAfter  int `json:"colors_after"`

	// PackedBefore and PackedAfter are the zstd-compressed sizes in bytes of
	// the raw samples, a rough measure of how much the reduction helps a
	// general-purpose compressor.
	PackedBefore int `json:"packed_bytes_before"`
	PackedAfter  int `json:"packed_bytes_after"`
}

// deltaEScale converts go-colorful's unit Lab distance into the customary
// 0-100 L* scale.
const deltaEScale = 100.0

// CompareBuffers measures the difference between a source buffer and its
// reduced version. Both must have identical dimensions.
//
// Lab distances are memoized per color pair, so images with few distinct
// colors (the usual case after reduction) cost little more than one pass.
func CompareBuffers(before, after *Buffer) (*ReductionStats, error) {
	if before.Width != after.Width || before.Height != after.Height {
		return nil, fmt.Errorf("buffer sizes differ: %dx%d vs %dx%d",
			before.Width, before.Height, after.Width, after.Height)
	}

	type pair struct{ a, b RGBColor }
	memo := make(map[pair]float64)

	total := before.Width * before.Height
	changed := 0
	var sum, worst float64

	for y := 0; y < before.Height; y++ {
		for x := 0; x < before.Width; x++ {
			a, b := before.At(x, y), after.At(x, y)
			if a == b {
				continue
			}
			changed++
			d, ok := memo[pair{a, b}]
			if !ok {
				d = a.Colorful().DistanceLab(b.Colorful()) * deltaEScale
				memo[pair{a, b}] = d
			}
			sum += d
			if d > worst {
				worst = d
			}
		}
	}

	stats := &ReductionStats{
		TotalPixels:     total,
		PixelsChanged:   changed,
		SimilarityScore: 1.0,
		MaxDeltaE:       math.Round(worst*100) / 100,
		ColorsBefore:    DistinctColors(before),
		ColorsAfter:     DistinctColors(after),
		PackedBefore:    PackedSize(before),
		PackedAfter:     PackedSize(after),
	}
	if total > 0 {
		stats.SimilarityScore = math.Round((1.0-float64(changed)/float64(total))*1000) / 1000
		stats.MeanDeltaE = math.Round(sum/float64(total)*100) / 100
	}
	return stats, nil
}

// zstdEncoder is shared; EncodeAll is safe for concurrent use.
var zstdEncoder = sync.OnceValue(func() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(fmt.Sprintf("imaging: zstd encoder: %v", err))
	}
	return enc
})

// PackedSize returns the zstd-compressed size of the buffer's samples with
// row padding removed.
func PackedSize(buf *Buffer) int {
	raw := buf.Pix
	if buf.Stride != buf.Width*Channels {
		raw = buf.Clone().Pix
	}
	raw = raw[:buf.Width*buf.Height*Channels]
	if len(raw) == 0 {
		return 0
	}
	return len(zstdEncoder().EncodeAll(raw, nil))
}
