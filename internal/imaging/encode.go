package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// OutputFormat selects the encoding of a reduced image.
type OutputFormat string

const (
	// FormatPNG encodes a truecolor PNG.
	FormatPNG OutputFormat = "png"
	// FormatGIF encodes a paletted GIF. Only meaningful when the image
	// already has 256 colors or fewer, or when a quantizer is supplied.
	FormatGIF OutputFormat = "gif"
)

// ParseOutputFormat maps a user-supplied format name to an OutputFormat.
// The empty string selects PNG.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch name {
	case "", "png":
		return FormatPNG, nil
	case "gif":
		return FormatGIF, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// MimeType returns the MIME type of the encoded output.
func (f OutputFormat) MimeType() string {
	if f == FormatGIF {
		return "image/gif"
	}
	return "image/png"
}

// EncodeResult contains a reduced image, either inlined as base64 or written
// to disk.
type EncodeResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
	MimeType    string `json:"mime_type"`
}

// EncodeOptions controls how a Buffer is turned into bytes.
type EncodeOptions struct {
	// Format is the container format; zero value means PNG.
	Format OutputFormat

	// Scale enlarges or shrinks the output with nearest-neighbor sampling,
	// which keeps dither patterns crisp. Values <= 0 or == 1 leave it as is.
	Scale float64

	// OutputPath writes the file to disk instead of returning base64.
	OutputPath string

	// Quantizer builds the GIF palette. When nil, GIF output uses the
	// standard library's Plan9 palette with Floyd-Steinberg, which is only
	// lossless if the image already uses that palette.
	Quantizer draw.Quantizer
}

// Encode renders buf according to opts.
func Encode(buf *Buffer, opts EncodeOptions) (*EncodeResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = FormatPNG
	}

	var img image.Image = buf.Image()
	if opts.Scale > 0 && opts.Scale != 1.0 {
		w := int(float64(buf.Width) * opts.Scale)
		h := int(float64(buf.Height) * opts.Scale)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		img = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}

	var (
		format imaging.Format
		encOpt []imaging.EncodeOption
	)
	switch opts.Format {
	case FormatGIF:
		format = imaging.GIF
		if opts.Quantizer != nil {
			encOpt = append(encOpt, imaging.GIFQuantizer(opts.Quantizer), imaging.GIFNumColors(256))
		}
	default:
		format = imaging.PNG
	}

	result := &EncodeResult{
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		MimeType: opts.Format.MimeType(),
	}

	if opts.OutputPath != "" {
		if err := imaging.Save(img, opts.OutputPath, encOpt...); err != nil {
			return nil, fmt.Errorf("failed to save image to %s: %w", absPath(opts.OutputPath), err)
		}
		result.OutputPath = opts.OutputPath
		return result, nil
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, format, encOpt...); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	result.ImageBase64 = base64.StdEncoding.EncodeToString(out.Bytes())
	return result, nil
}
