package imaging

import (
	"image"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Prefilter describes optional adjustments applied to a source image before
// it is copied into a Buffer for reduction. The reduction passes themselves
// never touch gamma or smoothing; these run strictly upstream of them.
type Prefilter struct {
	// MaxSize downscales the source, keeping its aspect ratio, so that
	// neither side exceeds it. 0 disables it. Smaller sources are never
	// enlarged.
	MaxSize int `json:"max_size,omitempty"`

	// Gamma brightens (>1) or darkens (<1) midtones. 0 or 1 disables it.
	Gamma float64 `json:"gamma,omitempty"`

	// BlurSigma applies a gaussian blur first, which suppresses noise that
	// would otherwise consume palette entries. 0 disables it.
	BlurSigma float64 `json:"blur_sigma,omitempty"`
}

// Enabled reports whether any adjustment is configured.
func (p Prefilter) Enabled() bool {
	return p.MaxSize > 0 || (p.Gamma > 0 && p.Gamma != 1.0) || p.BlurSigma > 0
}

// Apply runs the configured adjustments in order (downscale, blur, gamma)
// and returns the resulting image. With nothing configured the source is
// returned unchanged.
func (p Prefilter) Apply(src image.Image) image.Image {
	out := src
	if p.MaxSize > 0 {
		// Thumbnail returns the source as is when it already fits.
		out = resize.Thumbnail(uint(p.MaxSize), uint(p.MaxSize), out, resize.Lanczos3)
	}
	if p.BlurSigma > 0 {
		g := gift.New(gift.GaussianBlur(float32(p.BlurSigma)))
		dst := image.NewNRGBA(g.Bounds(out.Bounds()))
		g.Draw(dst, out)
		out = dst
	}
	if p.Gamma > 0 && p.Gamma != 1.0 {
		out = imaging.AdjustGamma(out, p.Gamma)
	}
	return out
}

// PrepareBuffer applies the prefilter to src and copies the result into a new
// Buffer owned by the caller.
func (p Prefilter) PrepareBuffer(src image.Image) *Buffer {
	return FromImage(p.Apply(src))
}
