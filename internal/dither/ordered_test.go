package dither

import (
	"sync"
	"testing"

	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
)

// gradientBuffer fills every channel with a distinct ramp so all 256 sample
// values appear.
func gradientBuffer(width, height int) *imaging.Buffer {
	buf := imaging.NewBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := (x + y*width) % 256
			buf.Set(x, y, imaging.RGBColor{R: uint8(v), G: uint8(255 - v), B: uint8(v * 7)})
		}
	}
	return buf
}

func flatBuffer(width, height int, v uint8) *imaging.Buffer {
	buf := imaging.NewBuffer(width, height)
	for i := range buf.Pix {
		buf.Pix[i] = v
	}
	return buf
}

// allowedLevels returns the set of output values for a level count.
func allowedLevels(levels int) map[uint8]bool {
	out := make(map[uint8]bool, levels)
	interval := Interval(levels)
	for i := 0; i < levels; i++ {
		out[toSample(float64(i)*interval)] = true
	}
	return out
}

func assertOnlyLevels(t *testing.T, buf *imaging.Buffer, levels int) {
	t.Helper()
	allowed := allowedLevels(levels)
	for i, v := range buf.Pix {
		if !allowed[v] {
			t.Fatalf("sample %d has value %d, not one of %d levels", i, v, levels)
		}
	}
}

func TestClampLevels(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 2}, {0, 2}, {1, 2}, {2, 2}, {16, 16}, {256, 256}, {1000, 256},
	}
	for _, tt := range tests {
		if got := ClampLevels(tt.in); got != tt.want {
			t.Errorf("ClampLevels(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOrdered_FullLevelsIsIdentity(t *testing.T) {
	buf := gradientBuffer(32, 8)
	want := buf.Clone()

	Ordered(buf, 256, Bayer(3))

	for i := range want.Pix {
		if buf.Pix[i] != want.Pix[i] {
			t.Fatalf("sample %d changed: got %d, want %d", i, buf.Pix[i], want.Pix[i])
		}
	}
}

func TestOrdered_OutputsOnlyLevels(t *testing.T) {
	tests := []struct {
		name   string
		levels int
		m      *Matrix
	}{
		{"bayer two levels", 2, Bayer(2)},
		{"bayer four levels", 4, Bayer(3)},
		{"cluster dot three levels", 3, ClusterDot()},
		{"clamped below", 0, Bayer(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := gradientBuffer(32, 8)
			Ordered(buf, tt.levels, tt.m)
			assertOnlyLevels(t, buf, ClampLevels(tt.levels))
		})
	}
}

func TestOrdered_MidGrayBayerOne(t *testing.T) {
	buf := flatBuffer(2, 2, 128)
	Ordered(buf, 2, Bayer(1))

	// Thresholds are 51, 153, 204 and 102 on the 0..255 scale.
	want := [2][2]uint8{
		{255, 0},
		{0, 255},
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := buf.At(x, y).R; got != want[y][x] {
				t.Errorf("pixel (%d,%d): got %d, want %d", x, y, got, want[y][x])
			}
		}
	}
}

func TestOrdered_PreservesFlatAverage(t *testing.T) {
	buf := flatBuffer(16, 16, 64)
	Ordered(buf, 2, Bayer(4))

	white := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if buf.At(x, y).G == 255 {
				white++
			}
		}
	}
	// A rank r turns white when (r+1)*255/257 <= 64, which holds for 64 ranks.
	if white != 64 {
		t.Errorf("white pixels: got %d, want 64", white)
	}
}

func TestOrdered_Extremes(t *testing.T) {
	for _, v := range []uint8{0, 255} {
		buf := flatBuffer(8, 8, v)
		Ordered(buf, 2, ClusterDot())
		for i, got := range buf.Pix {
			if got != v {
				t.Fatalf("flat %d: sample %d became %d", v, i, got)
			}
		}
	}
}

func TestOrdered_Progress(t *testing.T) {
	buf := gradientBuffer(4, 20)
	var (
		mu    sync.Mutex
		final int
	)
	Ordered(buf, 2, Bayer(2), imaging.WithProgress(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if done == total {
			final = done
		}
	}))
	if final != 20 {
		t.Errorf("final progress: got %d, want 20", final)
	}
}

func TestPosterize(t *testing.T) {
	buf := imaging.NewBuffer(4, 1)
	buf.Set(0, 0, imaging.RGBColor{R: 0, G: 127, B: 128})
	buf.Set(1, 0, imaging.RGBColor{R: 255, G: 42, B: 43})
	buf.Set(2, 0, imaging.RGBColor{R: 200, G: 100, B: 50})
	buf.Set(3, 0, imaging.RGBColor{R: 1, G: 254, B: 170})

	Posterize(buf, 2)
	want := []imaging.RGBColor{
		{R: 0, G: 0, B: 255},
		{R: 255, G: 0, B: 0},
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 255},
	}
	for x, w := range want {
		if got := buf.At(x, 0); got != w {
			t.Errorf("pixel %d: got %+v, want %+v", x, got, w)
		}
	}
}

func TestPosterize_OutputsOnlyLevels(t *testing.T) {
	buf := gradientBuffer(32, 8)
	Posterize(buf, 5)
	assertOnlyLevels(t, buf, 5)
}
