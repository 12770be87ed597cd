package camouflage

import (
	"math"
	"math/rand/v2"
)

// fillRect paints the inclusive rectangle (x0, y0)-(x1, y1) opaque.
func fillRect(img *GrayAlpha, x0, y0, x1, y1 int, tone uint8) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.Set(x, y, tone, 255)
		}
	}
}

// randomImage returns a w×h image drawing intensities from tones, with
// roughly one pixel in five left transparent.
func randomImage(rng *rand.Rand, w, h int, tones []uint8) *GrayAlpha {
	img := NewGrayAlpha(w, h)
	for y := range h {
		for x := range w {
			if rng.IntN(5) == 0 {
				continue
			}
			img.Set(x, y, tones[rng.IntN(len(tones))], uint8(1+rng.IntN(255)))
		}
	}
	return img
}

// rectSegment returns the region covering the inclusive rectangle.
func rectSegment(x0, y0, x1, y1 uint16) Segment {
	s := make(Segment)
	for y := y0; y <= y1; y++ {
		s[y] = RangeList{{Lo: x0, Hi: x1}}
	}
	return s
}

// geo wraps s with its unweighted centroid.
func geo(s Segment, tone uint8) GeoSegment {
	var sx, sy float64
	n := 0
	for y, rl := range s {
		for _, r := range rl {
			for x := int(r.Lo); x <= int(r.Hi); x++ {
				sx += float64(x)
				sy += float64(y)
				n++
			}
		}
	}
	return GeoSegment{Seg: s, Centroid: PointF{X: sx / float64(n), Y: sy / float64(n)}, Tone: tone}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
