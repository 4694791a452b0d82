package iris

import (
	"image"
	"image/color"
)

// createDiskImage returns a side x side image filled with bg and a filled disk
// of radius r around (cx, cy) in fg.
func createDiskImage(side, cx, cy, r int, fg, bg uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetGray(x, y, color.Gray{Y: fg})
			} else {
				img.SetGray(x, y, color.Gray{Y: bg})
			}
		}
	}
	return img
}

// createUniformImage returns a w x h image filled with v.
func createUniformImage(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// addOffset returns a copy of img with delta added to every pixel. The caller
// keeps values below 256.
func addOffset(img *image.Gray, delta uint8) *image.Gray {
	out := image.NewGray(img.Rect)
	for i, v := range img.Pix {
		out.Pix[i] = v + delta
	}
	return out
}
