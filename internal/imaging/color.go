package imaging

import (
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
//
// RGBColor is a value type; palettes are ordered slices of it.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Colorful converts the color to a go-colorful value in sRGB space.
func (c RGBColor) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Hex returns the color as "#RRGGBB" with uppercase digits.
func (c RGBColor) Hex() string {
	// go-colorful emits lowercase; keep the uppercase form used in reports.
	return upperHex(c.Colorful().Hex())
}

// HSL returns the color in HSL space rounded to whole degrees and percents.
func (c RGBColor) HSL() HSLColor {
	h, s, l := c.Colorful().Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}

func upperHex(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'a' && ch <= 'f' {
			b[i] = ch - 'a' + 'A'
		}
	}
	return string(b)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB"
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation
}

// Describe returns the color in every reported representation.
func (c RGBColor) Describe() ColorResult {
	return ColorResult{
		Hex: c.Hex(),
		RGB: c,
		HSL: c.HSL(),
	}
}

// PaletteEntry describes one palette color and how much of an image uses it.
type PaletteEntry struct {
	Index      int         `json:"index"`      // Position in the palette
	Color      ColorResult `json:"color"`      // The palette color
	Pixels     int         `json:"pixels"`     // Number of pixels with exactly this color
	Percentage float64     `json:"percentage"` // Share of all pixels (0-100)
}

// PaletteUsage reports, for every palette entry, how many pixels of buf carry
// exactly that color.
//
// Entries are returned in palette order. When the palette contains the same
// color twice, the pixels are credited to the first occurrence.
func PaletteUsage(buf *Buffer, palette []RGBColor) []PaletteEntry {
	first := make(map[RGBColor]int, len(palette))
	for i, c := range palette {
		if _, ok := first[c]; !ok {
			first[c] = i
		}
	}

	counts := make([]int, len(palette))
	total := 0
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if i, ok := first[buf.At(x, y)]; ok {
				counts[i]++
			}
			total++
		}
	}

	entries := make([]PaletteEntry, len(palette))
	for i, c := range palette {
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(counts[i])/float64(total)*10000) / 100
		}
		entries[i] = PaletteEntry{
			Index:      i,
			Color:      c.Describe(),
			Pixels:     counts[i],
			Percentage: pct,
		}
	}
	return entries
}

// DistinctColors returns the number of distinct colors in the buffer.
func DistinctColors(buf *Buffer) int {
	seen := make(map[RGBColor]struct{})
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			seen[buf.At(x, y)] = struct{}{}
		}
	}
	return len(seen)
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB"
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components
}

// DominantColors returns up to count of the most frequent exact colors in the
// buffer, most common first. Ties are broken by hex string so the result is
// deterministic.
func DominantColors(buf *Buffer, count int) []ColorFrequency {
	counts := make(map[RGBColor]int)
	total := 0
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			counts[buf.At(x, y)]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        c,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count >= 0 && len(colors) > count {
		colors = colors[:count]
	}
	return colors
}
