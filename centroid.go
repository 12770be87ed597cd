package camouflage

import (
	"gonum.org/v1/gonum/floats"
)

// Centroid returns the alpha-weighted centroid of s, reading alpha from
// img. Every pixel of a segment is opaque, so a zero weighted area means the
// segment does not belong to img; Centroid panics in that case.
func (s Segment) Centroid(img *GrayAlpha) PointF {
	rows := s.Rows()

	xs := make([]float64, 0, 64)
	alphas := make([]float64, 0, 64)
	rowAlpha := make([]float64, len(rows))
	rowWeightedX := make([]float64, len(rows))

	for i, y := range rows {
		xs = xs[:0]
		alphas = alphas[:0]
		for _, r := range s[y] {
			for x := int(r.Lo); x <= int(r.Hi); x++ {
				xs = append(xs, float64(x))
				alphas = append(alphas, float64(img.Alpha(x, int(y)))/255.0)
			}
		}
		rowAlpha[i] = floats.Sum(alphas)
		rowWeightedX[i] = floats.Dot(xs, alphas)
	}

	weightedArea := floats.Sum(rowAlpha)
	if weightedArea == 0 {
		panic("camouflage: centroid of a segment without opaque pixels")
	}

	var c PointF
	for i, y := range rows {
		c.X += rowWeightedX[i] / weightedArea
		c.Y += rowAlpha[i] * (float64(y) / weightedArea)
	}
	return c
}
