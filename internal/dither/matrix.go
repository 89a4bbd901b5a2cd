package dither

import (
	"fmt"
	"sync"
)

// Matrix is an immutable, tileable table of thresholds for ordered dithering.
//
// Every entry lies strictly inside (0, 1), so no input value is forced up or
// down regardless of where it sits in the image. The table repeats across the
// image: pixel (x, y) uses entry (x mod Width, y mod Height).
type Matrix struct {
	width  int
	height int
	values []float64 // row-major
}

// NewMatrix builds a matrix from a rectangular table of ranks.
//
// The ranks must be a permutation of 0..n-1 where n is the number of cells;
// each rank r becomes the threshold (r+1)/(n+1).
func NewMatrix(ranks [][]int) (*Matrix, error) {
	if len(ranks) == 0 || len(ranks[0]) == 0 {
		return nil, fmt.Errorf("threshold matrix must not be empty")
	}
	height, width := len(ranks), len(ranks[0])
	n := width * height

	seen := make([]bool, n)
	values := make([]float64, 0, n)
	for y, row := range ranks {
		if len(row) != width {
			return nil, fmt.Errorf("threshold matrix row %d has %d entries, want %d", y, len(row), width)
		}
		for x, r := range row {
			if r < 0 || r >= n {
				return nil, fmt.Errorf("rank %d at (%d,%d) outside 0..%d", r, x, y, n-1)
			}
			if seen[r] {
				return nil, fmt.Errorf("rank %d appears more than once", r)
			}
			seen[r] = true
			values = append(values, float64(r+1)/float64(n+1))
		}
	}

	return &Matrix{width: width, height: height, values: values}, nil
}

// Width returns the number of columns.
func (m *Matrix) Width() int { return m.width }

// Height returns the number of rows.
func (m *Matrix) Height() int { return m.height }

// At returns the threshold for image pixel (x, y), tiling the table.
func (m *Matrix) At(x, y int) float64 {
	tx := x % m.width
	if tx < 0 {
		tx += m.width
	}
	ty := y % m.height
	if ty < 0 {
		ty += m.height
	}
	return m.values[ty*m.width+tx]
}

// MaxBayerOrder bounds Bayer matrices at 256x256.
const MaxBayerOrder = 8

// bayerBase is the order-1 rank pattern, row-major.
var bayerBase = [2][2]int{
	{0, 2},
	{3, 1},
}

var bayerCache sync.Map // int -> *Matrix

// Bayer returns the 2^order x 2^order Bayer matrix. The order is clamped to
// [1, MaxBayerOrder]. Matrices are built once per order and shared; they are
// immutable so sharing is safe.
func Bayer(order int) *Matrix {
	if order < 1 {
		order = 1
	}
	if order > MaxBayerOrder {
		order = MaxBayerOrder
	}
	if m, ok := bayerCache.Load(order); ok {
		return m.(*Matrix)
	}

	size := 1 << order
	ranks := make([][]int, size)
	for i := range ranks {
		ranks[i] = make([]int, size)
		for j := range ranks[i] {
			ranks[i][j] = bayerRank(i, j, order)
		}
	}

	m, err := NewMatrix(ranks)
	if err != nil {
		panic(fmt.Sprintf("dither: bayer order %d produced invalid ranks: %v", order, err))
	}
	actual, _ := bayerCache.LoadOrStore(order, m)
	return actual.(*Matrix)
}

// bayerRank returns the rank at row i, column j of the order-k matrix:
// four times the rank in the quadrant-local order-(k-1) matrix, plus the
// base rank of the quadrant.
func bayerRank(i, j, k int) int {
	if k == 1 {
		return bayerBase[i][j]
	}
	half := 1 << (k - 1)
	return 4*bayerRank(i%half, j%half, k-1) + bayerBase[i/half][j/half]
}

// clusterDotRanks is an 8x8 clustered-dot pattern: two dots per tile that
// grow outward from their centers, which suits printers and e-ink panels
// that reproduce isolated pixels poorly.
var clusterDotRanks = [][]int{
	{24, 10, 12, 26, 35, 47, 49, 37},
	{8, 0, 2, 14, 45, 59, 61, 51},
	{22, 6, 4, 16, 43, 57, 63, 53},
	{30, 20, 18, 28, 33, 41, 55, 39},
	{34, 46, 48, 36, 25, 11, 13, 27},
	{44, 58, 60, 50, 9, 1, 3, 15},
	{42, 56, 62, 52, 23, 7, 5, 17},
	{32, 40, 54, 38, 31, 21, 19, 29},
}

var clusterDot = sync.OnceValue(func() *Matrix {
	m, err := NewMatrix(clusterDotRanks)
	if err != nil {
		panic(fmt.Sprintf("dither: cluster-dot table invalid: %v", err))
	}
	return m
})

// ClusterDot returns the shared 8x8 clustered-dot matrix.
func ClusterDot() *Matrix {
	return clusterDot()
}
