package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded images to avoid redundant
// disk reads.
//
// Cached images are treated as read-only. Every reduction pass works on a
// Buffer obtained from LoadBuffer, which is a private copy, so a tool call can
// never leak its in-place edits into the cache or into a concurrent call.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	buf, err := cache.LoadBuffer("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	palette := quantize.Quantize(buf, 16)
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Decoding goes through imaging.Open with EXIF auto-orientation enabled, so a
// JPEG shot in portrait is reduced the way it is displayed. Supported formats
// are those registered with imaging: PNG, JPEG, GIF, BMP and TIFF.
//
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadBuffer loads an image (through the cache) and returns a fresh Buffer
// copy that the caller owns exclusively.
func (c *ImageCache) LoadBuffer(path string) (*Buffer, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "bmp", "tiff" or "unknown".
	Format string `json:"format"`

	// HasAlpha indicates whether the decoded image type carries alpha.
	// Alpha is discarded by every reduction pass.
	HasAlpha bool `json:"has_alpha"`

	// Paletted is true when the source is already a palette image.
	Paletted bool `json:"paletted"`

	// DistinctColors is the number of distinct RGB colors after dropping alpha.
	// It is the upper bound on the size of any quantized palette.
	DistinctColors int `json:"distinct_colors"`

	// TopColors lists the most frequent exact colors, most common first.
	TopColors []ColorFrequency `json:"top_colors"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// topColorCount is the number of colors listed in ImageInfo.TopColors.
const topColorCount = 8

// LoadImageInfo loads an image into the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	hasAlpha, paletted := false, false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	case *image.Paletted:
		paletted = true
	}

	buf := FromImage(img)
	return &ImageInfo{
		Width:          buf.Width,
		Height:         buf.Height,
		Format:         format,
		HasAlpha:       hasAlpha,
		Paletted:       paletted,
		DistinctColors: DistinctColors(buf),
		TopColors:      DominantColors(buf, topColorCount),
		FileSizeBytes:  stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// absPath is used in error messages so relative paths are unambiguous.
func absPath(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}
	return path
}
