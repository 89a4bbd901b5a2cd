// Package dither reduces the tonal depth of an image while simulating the
// tones it can no longer represent.
//
// Two families are provided:
//
//   - Ordered dithering (Ordered) compares every sample against a tiled
//     threshold Matrix. Bayer matrices of any order from 1 to 8 are generated
//     recursively; ClusterDot is a fixed 8x8 clustered-dot pattern. Every
//     sample is independent, so the pass runs in parallel over rows.
//
//   - Error diffusion (Diffuse) rounds samples in raster order and pushes the
//     rounding error onto later pixels through a Kernel. The pass is
//     sequential within a channel; the three channels run concurrently.
//
// Both operate in place on an imaging.Buffer and quantize each channel to
// levels equally spaced values between 0 and 255. Posterize is the same
// quantization without any dithering.
//
// Parameters outside their valid ranges are clamped, never rejected.
package dither
