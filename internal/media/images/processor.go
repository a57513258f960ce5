package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// maxDimension is the longest edge kept after processing. Category and
// logo images are shown as tiles, so anything bigger is wasted bytes.
const maxDimension = 1024

// jpegQuality for re-encoded uploads.
const jpegQuality = 85

// Processed is the normalized result of an upload: a JPEG no larger than
// maxDimension on its longest edge, plus its BlurHash placeholder.
type Processed struct {
	JPEG     []byte
	BlurHash string
	Width    int
	Height   int
}

// Processor validates and normalizes uploaded images.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(logger *slog.Logger) *Processor {
	return &Processor{logger: logger}
}

// Process decodes an uploaded image (JPEG, PNG, GIF, or WebP), downscales
// it to fit maxDimension, re-encodes it as JPEG, and computes its BlurHash.
// Undecodable data is rejected, which is the only upload validation needed:
// nothing but pixels survives the re-encode.
func (p *Processor) Process(data []byte) (*Processed, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	scaled := scaleDown(img, maxDimension)
	bounds := scaled.Bounds()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	hash, err := ComputeBlurHash(scaled)
	if err != nil {
		return nil, fmt.Errorf("compute blurhash: %w", err)
	}

	p.logger.Debug("processed image",
		"format", format,
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"bytes", buf.Len(),
	)

	return &Processed{
		JPEG:     buf.Bytes(),
		BlurHash: hash,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// scaleDown resizes img so its longest edge is at most max, preserving
// aspect ratio. Images already small enough pass through unchanged.
// Simple box scaling - fast and good enough for tile-sized output.
func scaleDown(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= max && srcHeight <= max {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = max
		dstHeight = (srcHeight * max) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = max
		dstWidth = (srcWidth * max) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}

	return dst
}
