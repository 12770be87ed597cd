package camouflage

import (
	"fmt"
	"maps"
	"slices"
)

// Range is an inclusive run of columns within one row.
type Range struct {
	Lo, Hi uint16
}

// Len returns the number of pixels covered by r.
func (r Range) Len() int {
	return int(r.Hi) - int(r.Lo) + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d..=%d", r.Lo, r.Hi)
}

// RangeList holds the disjoint runs of one segment on one row.
type RangeList []Range

// Segment maps a row index to the runs a region occupies on that row.
type Segment map[uint16]RangeList

// Rows returns the occupied row indices in ascending order.
func (s Segment) Rows() []uint16 {
	return slices.Sorted(maps.Keys(s))
}

// Area returns the number of pixels in the segment.
func (s Segment) Area() int {
	n := 0
	for _, ranges := range s {
		for _, r := range ranges {
			n += r.Len()
		}
	}
	return n
}

// Bounds returns the inclusive bounding box of the segment. ok is false for
// an empty segment.
func (s Segment) Bounds() (minPt, maxPt Point, ok bool) {
	first := true
	for y, ranges := range s {
		for _, r := range ranges {
			if first {
				minPt = Point{X: r.Lo, Y: y}
				maxPt = Point{X: r.Hi, Y: y}
				first = false
				continue
			}
			minPt.X = min(minPt.X, r.Lo)
			minPt.Y = min(minPt.Y, y)
			maxPt.X = max(maxPt.X, r.Hi)
			maxPt.Y = max(maxPt.Y, y)
		}
	}
	return minPt, maxPt, !first
}

// Contains reports whether pixel (x, y) belongs to the segment.
func (s Segment) Contains(x, y uint16) bool {
	for _, r := range s[y] {
		if x >= r.Lo && x <= r.Hi {
			return true
		}
	}
	return false
}

func (s Segment) add(y uint16, r Range) {
	s[y] = append(s[y], r)
}

// normalize orders the runs of every row by their first column.
func (s Segment) normalize() {
	for _, ranges := range s {
		slices.SortFunc(ranges, func(a, b Range) int {
			return int(a.Lo) - int(b.Lo)
		})
	}
}

// GeoSegment is a region together with its alpha-weighted centroid.
type GeoSegment struct {
	Seg      Segment
	Centroid PointF
	Tone     uint8
}

// ImageSegments is the ordered segmentation of one image.
type ImageSegments []GeoSegment
