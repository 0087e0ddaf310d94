package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageService prepares album art for the renderer.
//
// ImageService is used to:
//   - Decode uploaded art (JPEG, PNG, GIF, WebP)
//   - Center-crop it to a square so it fills the vinyl label
//   - Resize it to the label diameter once, instead of on every frame
//
// Example usage:
//
//	svc := NewImageService()
//	art, err := svc.LoadArt(ctx, fileData, 560)
//	if err != nil {
//	    return fmt.Errorf("album art: %w", err)
//	}
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// LoadArt decodes data and returns a size x size RGBA image.
//
// Non-square images are center-cropped before scaling. The Catmull-Rom
// kernel is used for high-quality resizing.
//
// Returns an error if the data is not a supported image format or size is
// not positive.
func (s *ImageService) LoadArt(ctx context.Context, data []byte, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid art size %d", size)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := SquareCrop(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst, nil
}

// SquareCrop returns the largest square centered inside b.
//
// Example:
//
//	SquareCrop(image.Rect(0, 0, 1500, 1000)) // (250,0)-(1250,1000)
func SquareCrop(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w == h {
		return b
	}
	if w > h {
		off := (w - h) / 2
		return image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+h, b.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+w)
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved. Returns the resized image as JPEG-encoded
// bytes. It is used for the thumbnail stored alongside each export record.
//
// Example:
//
//	// A 1500x1000 image becomes 150x100
//	thumb, err := svc.ResizeImage(ctx, imageData, 150, 150)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return s.EncodeThumbnail(ctx, img, maxWidth, maxHeight)
}

// EncodeThumbnail scales img to fit within maxWidth x maxHeight and encodes
// it as JPEG.
func (s *ImageService) EncodeThumbnail(ctx context.Context, img image.Image, maxWidth, maxHeight int) ([]byte, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty image")
	}

	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
