package dither

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
)

// Diffuse reduces every channel of buf to levels equally spaced values,
// carrying each sample's rounding error forward to unprocessed neighbors
// through kernel k.
//
// Within a channel, pixels are visited strictly in raster order:
//
//	adjusted = clamp(v + E[x,y], 0, 255)
//	rounded  = interval * round(adjusted / interval)
//	residual = adjusted - rounded
//
// and residual is spread to E using the kernel weights. Error that would land
// outside the image is discarded. The three channels do not interact, so each
// runs in its own goroutine with a private accumulator. levels is clamped to
// [2, 256]; with 256 levels the buffer is left unchanged.
func Diffuse(buf *imaging.Buffer, levels int, k *Kernel, opts ...imaging.Option) {
	levels = ClampLevels(levels)
	interval := Interval(levels)
	o := imaging.NewOptions(opts...)
	progress := o.Tracker(buf.Height * imaging.Channels)

	var g errgroup.Group
	for c := 0; c < imaging.Channels; c++ {
		c := c
		g.Go(func() error {
			diffuseChannel(buf, c, interval, k, progress)
			return nil
		})
	}
	// diffuseChannel cannot fail; Wait only joins the goroutines.
	_ = g.Wait()
}

// diffuseChannel runs the sequential error-diffusion pass over one channel.
// It writes only that channel's samples, so concurrent calls for different
// channels never touch the same bytes.
func diffuseChannel(buf *imaging.Buffer, c int, interval float64, k *Kernel, progress *imaging.Tracker) {
	w, h := buf.Width, buf.Height
	acc := make([]float64, w*h)

	for y := 0; y < h; y++ {
		row := buf.Pix[y*buf.Stride:]
		for x := 0; x < w; x++ {
			i := x*imaging.Channels + c
			adjusted := clamp255(float64(row[i]) + acc[y*w+x])
			rounded := interval * math.Round(adjusted/interval)
			if residual := adjusted - rounded; residual != 0 {
				k.spread(acc, w, h, x, y, residual)
			}
			row[i] = toSample(rounded)
		}
		progress.Add(1)
	}
}
