package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// Region is a rectangle in image coordinates: (X1,Y1) inclusive, (X2,Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// PatchOptions controls how an arbitrary image becomes a square grayscale patch.
// Steps run in field order; zero values skip a step.
type PatchOptions struct {
	// Region crops to an explicit rectangle first.
	Region *Region

	// Square crops the largest centered square.
	Square bool

	// Size resizes the square patch to Size x Size with Lanczos resampling.
	Size int

	// Blur applies a Gaussian blur of this radius after grayscale conversion.
	Blur float64
}

// PreparePatch turns img into a grayscale patch the iris search accepts.
// The source image is never modified.
func PreparePatch(img image.Image, opts PatchOptions) (*image.Gray, error) {
	out := img

	if opts.Region != nil {
		cropped, err := cropRegion(out, *opts.Region)
		if err != nil {
			return nil, err
		}
		out = cropped
	}

	if opts.Square {
		b := out.Bounds()
		side := b.Dx()
		if b.Dy() < side {
			side = b.Dy()
		}
		out = imaging.CropCenter(out, side, side)
	}

	if opts.Size > 0 {
		b := out.Bounds()
		if b.Dx() != b.Dy() {
			return nil, fmt.Errorf("cannot resize %dx%d patch to %dx%d: crop to a square first",
				b.Dx(), b.Dy(), opts.Size, opts.Size)
		}
		out = imaging.Resize(out, opts.Size, opts.Size, imaging.Lanczos)
	}

	gray := ToGray(out)
	if opts.Blur > 0 {
		gray = ToGray(blur.Gaussian(gray, opts.Blur))
	}
	return gray, nil
}

// cropRegion validates r against the image bounds and crops.
func cropRegion(img image.Image, r Region) (image.Image, error) {
	bounds := img.Bounds()
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return imaging.Crop(img, r.Rect()), nil
}

// EncodedImage is an image encoded as base64 PNG for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
