package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/iris-locator/internal/iris"
)

// OverlayOptions selects what Overlay draws. Layers are drawn in field order.
type OverlayOptions struct {
	// Centers marks every candidate center with a dot in its candidate color.
	Centers []image.Point

	// Rings draws the tested radii around each center in Centers, blended
	// with Alpha. Zero value skips the layer.
	Rings iris.RadiusRange

	// Candidates draws each candidate's best circle in its candidate color.
	// Colors follow Centers when both are set, otherwise candidate order.
	Candidates []iris.Candidate

	// Best draws the winning circle on top.
	Best *iris.Candidate

	// BestColor is a hex color "#RRGGBB" or "#RRGGBBAA" for Best. Default red.
	BestColor string

	// Alpha is the opacity of Rings and Candidates (0-1]. Default 0.5.
	Alpha float64

	// Label writes the best center and radius next to the winning circle.
	Label bool
}

// OverlayResult is an overlay rendered as base64 PNG.
type OverlayResult struct {
	EncodedImage
	Candidates int `json:"candidates"`
}

// CandidateColors returns n distinct, deterministic colors, evenly spaced in
// HCL hue so neighboring candidates stay distinguishable.
func CandidateColors(n int) []color.RGBA {
	colors := make([]color.RGBA, n)
	for i := range colors {
		c := colorful.Hcl(360*float64(i)/float64(n), 0.6, 0.65).Clamped()
		r, g, b := c.RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// Overlay renders the requested layers onto a copy of img. img is not modified.
func Overlay(img image.Image, opts OverlayOptions) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	alpha := opts.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 0.5
	}

	n := len(opts.Centers)
	if len(opts.Candidates) > n {
		n = len(opts.Candidates)
	}
	colors := CandidateColors(n)
	colorIndex := make(map[image.Point]int, len(opts.Centers))
	for i, c := range opts.Centers {
		colorIndex[c] = i
	}

	for i, c := range opts.Centers {
		blendPixel(out, c.X, c.Y, colors[i], 1)
	}

	if radii := opts.Rings.Radii(); len(radii) > 0 {
		for i, c := range opts.Centers {
			for _, r := range radii {
				drawCircle(out, c, r, colors[i], alpha)
			}
		}
	}

	for i, cand := range opts.Candidates {
		idx, ok := colorIndex[cand.Center]
		if !ok {
			idx = i
		}
		drawCircle(out, cand.Center, cand.Radius, colors[idx], alpha)
	}

	if opts.Best != nil {
		bestColor, err := parseHexColor(opts.BestColor)
		if err != nil {
			bestColor = color.RGBA{255, 0, 0, 255}
		}
		drawCircle(out, opts.Best.Center, opts.Best.Radius, bestColor, float64(bestColor.A)/255)
		blendPixel(out, opts.Best.Center.X, opts.Best.Center.Y, bestColor, 1)

		if opts.Label {
			label := fmt.Sprintf("(%d,%d) r=%d", opts.Best.Center.X, opts.Best.Center.Y, opts.Best.Radius)
			drawLabel(out, opts.Best.Center.X-opts.Best.Radius, opts.Best.Center.Y-opts.Best.Radius-3, label, bestColor)
		}
	}

	return out
}

// OverlayPNG renders Overlay and encodes it as base64 PNG.
func OverlayPNG(img image.Image, opts OverlayOptions) (*OverlayResult, error) {
	enc, err := EncodePNG(Overlay(img, opts))
	if err != nil {
		return nil, err
	}
	return &OverlayResult{EncodedImage: *enc, Candidates: len(opts.Candidates)}, nil
}

// drawCircle blends a 1-pixel circle outline into dst, clipped to bounds.
func drawCircle(dst *image.RGBA, center image.Point, r int, c color.RGBA, alpha float64) {
	seen := make(map[image.Point]bool)
	iris.TraceCircle(center, r, func(x, y int) {
		p := image.Point{X: x, Y: y}
		if seen[p] {
			return
		}
		seen[p] = true
		blendPixel(dst, x, y, c, alpha)
	})
}

// blendPixel mixes c into the pixel at (x, y) with weight alpha, in RGB space.
func blendPixel(dst *image.RGBA, x, y int, c color.RGBA, alpha float64) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) {
		return
	}
	under, _ := colorful.MakeColor(dst.RGBAAt(x, y))
	over, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	r, g, b := under.BlendRgb(over, alpha).Clamped().RGB255()
	dst.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
}

// drawLabel writes text with its baseline at (x, y), clamped into the image.
func drawLabel(dst *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	b := dst.Bounds()
	if x+width > b.Max.X {
		x = b.Max.X - width
	}
	if x < b.Min.X {
		x = b.Min.X
	}
	if y < b.Min.Y+face.Ascent {
		y = b.Min.Y + face.Ascent
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
