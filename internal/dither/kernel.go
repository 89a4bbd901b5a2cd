package dither

import (
	"fmt"
	"sort"

	ditherlib "github.com/makeworld-the-better-one/dither/v2"
)

// Kernel is an immutable error-diffusion kernel.
//
// Row 0 of the weight table is the current scan line; column Anchor of row 0
// is the pixel being processed. Cell (dx, dy) receives weight[dy][dx] of the
// rounding error at image position (x + dx - Anchor, y + dy). Weights are
// non-negative and sum to 1, and no weight ever targets a pixel that has
// already been processed.
type Kernel struct {
	weights [][]float64
	anchor  int
	taps    []tap
}

// tap is one non-zero kernel cell, flattened for the inner loop.
type tap struct {
	dx, dy int // offset relative to the current pixel
	w      float64
}

// NewKernel validates and normalizes a weight table.
//
// Entries in row 0 at or before the anchor must be zero, all entries must be
// non-negative, and at least one must be positive. The stored weights are
// divided by their sum.
func NewKernel(weights [][]float64, anchor int) (*Kernel, error) {
	if len(weights) == 0 || len(weights[0]) == 0 {
		return nil, fmt.Errorf("diffusion kernel must not be empty")
	}
	if anchor < 0 || anchor >= len(weights[0]) {
		return nil, fmt.Errorf("anchor %d outside first row of width %d", anchor, len(weights[0]))
	}

	var sum float64
	for dy, row := range weights {
		for dx, w := range row {
			if w < 0 {
				return nil, fmt.Errorf("negative weight %g at (%d,%d)", w, dx, dy)
			}
			if dy == 0 && dx <= anchor && w != 0 {
				return nil, fmt.Errorf("weight %g at (%d,0) targets an already processed pixel", w, dx)
			}
			sum += w
		}
	}
	if sum <= 0 {
		return nil, fmt.Errorf("diffusion kernel has no positive weight")
	}

	k := &Kernel{
		weights: make([][]float64, len(weights)),
		anchor:  anchor,
	}
	for dy, row := range weights {
		k.weights[dy] = make([]float64, len(row))
		for dx, w := range row {
			if w == 0 {
				continue
			}
			k.weights[dy][dx] = w / sum
			k.taps = append(k.taps, tap{dx: dx - anchor, dy: dy, w: w / sum})
		}
	}
	return k, nil
}

// KernelFromMatrix converts one of the dither library's diffusion tables.
// Those tables mark the current pixel implicitly as the last zero before the
// first non-zero entry of the first row.
func KernelFromMatrix(edm ditherlib.ErrorDiffusionMatrix) (*Kernel, error) {
	if len(edm) == 0 || len(edm[0]) == 0 {
		return nil, fmt.Errorf("diffusion matrix must not be empty")
	}

	// With no forward weight in the first row, the current pixel is its
	// last cell and all error flows to later rows.
	anchor := len(edm[0]) - 1
	for i, v := range edm[0] {
		if v != 0 {
			anchor = i - 1
			break
		}
	}
	if anchor < 0 {
		return nil, fmt.Errorf("diffusion matrix has no current pixel before its first weight")
	}

	weights := make([][]float64, len(edm))
	for y, row := range edm {
		weights[y] = make([]float64, len(row))
		for x, v := range row {
			weights[y][x] = float64(v)
		}
	}
	return NewKernel(weights, anchor)
}

// Anchor returns the column of row 0 that corresponds to the current pixel.
func (k *Kernel) Anchor() int { return k.anchor }

// Weights returns a copy of the normalized weight table.
func (k *Kernel) Weights() [][]float64 {
	out := make([][]float64, len(k.weights))
	for i, row := range k.weights {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// spread distributes residual over the in-bounds targets of pixel (x, y) in a
// w x h accumulator. Weight landing outside the image is dropped, not
// redistributed, so edge pixels lose part of their error.
func (k *Kernel) spread(acc []float64, w, h, x, y int, residual float64) {
	for _, t := range k.taps {
		tx, ty := x+t.dx, y+t.dy
		if tx < 0 || tx >= w || ty >= h {
			continue
		}
		acc[ty*w+tx] += residual * t.w
	}
}

// Named kernels. The weight tables come from the dither library's presets
// and are normalized on construction.
var kernelSources = map[string]ditherlib.ErrorDiffusionMatrix{
	"floyd_steinberg":     ditherlib.FloydSteinberg,
	"jarvis_judice_ninke": ditherlib.JarvisJudiceNinke,
	"stucki":              ditherlib.Stucki,
	"atkinson":            ditherlib.Atkinson,
	"burkes":              ditherlib.Burkes,
	"sierra":              ditherlib.Sierra,
	"two_row_sierra":      ditherlib.TwoRowSierra,
	"sierra_lite":         ditherlib.SierraLite,
}

var namedKernels = func() map[string]*Kernel {
	kernels := make(map[string]*Kernel, len(kernelSources))
	for name, edm := range kernelSources {
		k, err := KernelFromMatrix(edm)
		if err != nil {
			panic(fmt.Sprintf("dither: preset %s: %v", name, err))
		}
		kernels[name] = k
	}
	return kernels
}()

// NamedKernel returns a preset kernel by name.
func NamedKernel(name string) (*Kernel, bool) {
	k, ok := namedKernels[name]
	return k, ok
}

// KernelNames lists the preset kernel names in sorted order.
func KernelNames() []string {
	names := make([]string, 0, len(namedKernels))
	for name := range namedKernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
