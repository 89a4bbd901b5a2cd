package dither

import (
	"math"
	"sync"
	"testing"

	"github.com/ironsheep/image-reduce-mcp/internal/imaging"
)

func TestDiffuse_FullLevelsIsIdentity(t *testing.T) {
	buf := gradientBuffer(32, 8)
	want := buf.Clone()

	k, _ := NamedKernel("floyd_steinberg")
	Diffuse(buf, 256, k)

	for i := range want.Pix {
		if buf.Pix[i] != want.Pix[i] {
			t.Fatalf("sample %d changed: got %d, want %d", i, buf.Pix[i], want.Pix[i])
		}
	}
}

func TestDiffuse_OutputsOnlyLevels(t *testing.T) {
	for _, name := range KernelNames() {
		for _, levels := range []int{2, 3, 6} {
			k, _ := NamedKernel(name)
			buf := gradientBuffer(24, 12)
			Diffuse(buf, levels, k)
			assertOnlyLevels(t, buf, levels)
		}
	}
}

func TestDiffuse_CarriesErrorForward(t *testing.T) {
	k, err := NewKernel([][]float64{{0, 1}}, 0)
	if err != nil {
		t.Fatalf("NewKernel failed: %v", err)
	}

	buf := imaging.NewBuffer(2, 1)
	buf.Set(0, 0, imaging.RGBColor{R: 10, G: 10, B: 10})
	buf.Set(1, 0, imaging.RGBColor{R: 250, G: 250, B: 250})

	Diffuse(buf, 2, k)

	if got := buf.At(0, 0); got != (imaging.RGBColor{}) {
		t.Errorf("first pixel: got %+v, want black", got)
	}
	// 250 plus the carried 10 saturates at 255.
	if got := buf.At(1, 0); got != (imaging.RGBColor{R: 255, G: 255, B: 255}) {
		t.Errorf("second pixel: got %+v, want white", got)
	}
}

func TestDiffuse_ChannelsIndependent(t *testing.T) {
	buf := imaging.NewBuffer(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			buf.Set(x, y, imaging.RGBColor{R: uint8(x * 16), G: 0, B: 255})
		}
	}

	k, _ := NamedKernel("stucki")
	Diffuse(buf, 2, k)

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := buf.At(x, y)
			if c.G != 0 || c.B != 255 {
				t.Fatalf("pixel (%d,%d): flat channels changed to %+v", x, y, c)
			}
		}
	}
}

func TestDiffuse_PreservesFlatAverage(t *testing.T) {
	const size = 32
	buf := flatBuffer(size, size, 64)

	k, _ := NamedKernel("floyd_steinberg")
	Diffuse(buf, 2, k)

	white := 0
	for i := 0; i < len(buf.Pix); i += imaging.Channels {
		if buf.Pix[i] == 255 {
			white++
		}
	}
	got := float64(white) / float64(size*size)
	if want := 64.0 / 255.0; math.Abs(got-want) > 0.05 {
		t.Errorf("white fraction: got %.3f, want about %.3f", got, want)
	}
}

func TestDiffuse_Deterministic(t *testing.T) {
	k, _ := NamedKernel("atkinson")
	a := gradientBuffer(20, 20)
	b := a.Clone()

	Diffuse(a, 3, k)
	Diffuse(b, 3, k)

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("sample %d differs between runs: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestDiffuse_Progress(t *testing.T) {
	buf := gradientBuffer(4, 10)
	k, _ := NamedKernel("burkes")

	var (
		mu    sync.Mutex
		final int
		total int
	)
	Diffuse(buf, 2, k, imaging.WithProgress(func(done, n int) {
		mu.Lock()
		defer mu.Unlock()
		if done > final {
			final = done
		}
		total = n
	}))

	if total != 10*imaging.Channels || final != total {
		t.Errorf("progress: got %d of %d, want %d of %d", final, total, 10*imaging.Channels, 10*imaging.Channels)
	}
}
