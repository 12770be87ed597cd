// Package camouflage segments a background and a foreground image into
// uniform-tone regions and links them into a spatial graph for pattern
// placement.
package camouflage

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxDimension is the largest width or height a GrayAlpha may have.
// Region coordinates are stored as uint16.
const MaxDimension = 1<<16 - 1

var (
	ErrImageTooLarge = errors.New("camouflage: image exceeds 65535 pixels in width or height")
	ErrOutOfRange    = errors.New("camouflage: coordinate outside the 16-bit range")
)

// Point is a pixel address.
type Point struct {
	X, Y uint16
}

// PointF is a sub-pixel position, used for centroids.
type PointF struct {
	X, Y float64
}

// GrayAlpha is a two channel image: intensity followed by alpha, 8 bits each.
type GrayAlpha struct {
	W, H int
	Pix  []uint8 // Interleaved intensity/alpha, len = W*H*2
}

// NewGrayAlpha returns a fully transparent image. It panics when a
// dimension is negative or larger than MaxDimension.
func NewGrayAlpha(w, h int) *GrayAlpha {
	if w < 0 || h < 0 || w > MaxDimension || h > MaxDimension {
		panic(fmt.Sprintf("camouflage: invalid image dimensions %dx%d", w, h))
	}
	return &GrayAlpha{
		W:   w,
		H:   h,
		Pix: make([]uint8, w*h*2),
	}
}

func gaOffset(w, x, y int) int {
	return (y*w + x) * 2
}

// Tone returns the intensity at (x, y).
func (g *GrayAlpha) Tone(x, y int) uint8 {
	return g.Pix[gaOffset(g.W, x, y)]
}

// Alpha returns the alpha at (x, y).
func (g *GrayAlpha) Alpha(x, y int) uint8 {
	return g.Pix[gaOffset(g.W, x, y)+1]
}

// Set writes both channels at (x, y).
func (g *GrayAlpha) Set(x, y int, tone, alpha uint8) {
	off := gaOffset(g.W, x, y)
	g.Pix[off] = tone
	g.Pix[off+1] = alpha
}

// Transparent reports whether (x, y) is void.
func (g *GrayAlpha) Transparent(x, y int) bool {
	return g.Alpha(x, y) == 0
}

// sameOpaqueTone reports whether (x, y) is opaque with intensity tone.
func (g *GrayAlpha) sameOpaqueTone(x, y int, tone uint8) bool {
	off := gaOffset(g.W, x, y)
	return g.Pix[off] == tone && g.Pix[off+1] != 0
}

func (g *GrayAlpha) inBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Empty reports whether the image has no pixels.
func (g *GrayAlpha) Empty() bool {
	return g == nil || g.W == 0 || g.H == 0
}

// Clone returns a deep copy.
func (g *GrayAlpha) Clone() *GrayAlpha {
	out := &GrayAlpha{W: g.W, H: g.H, Pix: make([]uint8, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// Tones returns the distinct intensities of the image in ascending order.
func (g *GrayAlpha) Tones() []uint8 {
	var seen [256]bool
	for i := 0; i < len(g.Pix); i += 2 {
		seen[g.Pix[i]] = true
	}
	var out []uint8
	for t := range 256 {
		if seen[t] {
			out = append(out, uint8(t))
		}
	}
	return out
}

// FromImage converts any image to intensity+alpha. Intensity is the
// Rec. 709 luma of the unpremultiplied sRGB colour; fully transparent pixels
// get intensity 0.
func FromImage(img image.Image) (*GrayAlpha, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("%dx%d: %w", w, h, ErrImageTooLarge)
	}
	out := NewGrayAlpha(w, h)
	for y := range h {
		for x := range w {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			_, _, _, a := c.RGBA()
			if a == 0 {
				continue
			}
			col, _ := colorful.MakeColor(c)
			luma := 0.2126*col.R + 0.7152*col.G + 0.0722*col.B
			out.Set(x, y, uint8(max(0, min(255, luma*255+0.5))), uint8(a>>8))
		}
	}
	return out, nil
}

// NRGBA renders the image as gray with its alpha channel.
func (g *GrayAlpha) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, g.W, g.H))
	for y := range g.H {
		for x := range g.W {
			t := g.Tone(x, y)
			out.SetNRGBA(x, y, color.NRGBA{R: t, G: t, B: t, A: g.Alpha(x, y)})
		}
	}
	return out
}
