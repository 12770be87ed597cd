package camouflage

import (
	"fmt"
	"image"
)

// CropPredicate selects how a candidate region must relate to a reference
// region to survive Crop.
type CropPredicate int

const (
	CropOverlaps CropPredicate = iota
	CropConnected
	CropTouching
)

func (p CropPredicate) String() string {
	switch p {
	case CropConnected:
		return "connected"
	case CropTouching:
		return "touching"
	default:
		return "overlaps"
	}
}

// ParseCropPredicate maps a predicate name to its value. Unknown names
// select CropOverlaps and report false.
func ParseCropPredicate(s string) (CropPredicate, bool) {
	switch s {
	case "overlaps", "":
		return CropOverlaps, true
	case "connected":
		return CropConnected, true
	case "touching":
		return CropTouching, true
	}
	return CropOverlaps, false
}

func (p CropPredicate) holds(a, b Segment) bool {
	switch p {
	case CropConnected:
		return a.Connected(b)
	case CropTouching:
		return a.Touches(b)
	default:
		return a.Overlaps(b)
	}
}

// Crop returns the candidate regions related by pred to at least one
// reference region, in their original order. Regions are neither split nor
// merged.
func Crop(reference, candidate ImageSegments, pred CropPredicate) ImageSegments {
	out := ImageSegments{}
	for _, c := range candidate {
		for _, r := range reference {
			if pred.holds(r.Seg, c.Seg) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Translate returns a copy of segs moved by (dx, dy), centroids included.
// It fails with ErrOutOfRange when a pixel would leave the 16-bit
// coordinate space.
func Translate(segs ImageSegments, dx, dy int) (ImageSegments, error) {
	out := make(ImageSegments, 0, len(segs))
	for i, g := range segs {
		moved := make(Segment, len(g.Seg))
		for y, ranges := range g.Seg {
			ny := int(y) + dy
			if ny < 0 || ny > MaxDimension {
				return nil, fmt.Errorf("segment %d row %d: %w", i, ny, ErrOutOfRange)
			}
			list := make(RangeList, len(ranges))
			for j, r := range ranges {
				lo, hi := int(r.Lo)+dx, int(r.Hi)+dx
				if lo < 0 || hi > MaxDimension {
					return nil, fmt.Errorf("segment %d columns %d..%d: %w", i, lo, hi, ErrOutOfRange)
				}
				list[j] = Range{Lo: uint16(lo), Hi: uint16(hi)}
			}
			moved[uint16(ny)] = list
		}
		out = append(out, GeoSegment{
			Seg: moved,
			Centroid: PointF{
				X: g.Centroid.X + float64(dx),
				Y: g.Centroid.Y + float64(dy),
			},
			Tone: g.Tone,
		})
	}
	return out, nil
}

// CropImage returns a basis-sized image holding the basis pixels that lie
// under an opaque target pixel when target is placed at pos. Everything else
// is transparent.
func CropImage(basis, target *GrayAlpha, pos image.Point) *GrayAlpha {
	cut := NewGrayAlpha(basis.W, basis.H)
	for y := range target.H {
		by := pos.Y + y
		for x := range target.W {
			bx := pos.X + x
			if !basis.inBounds(bx, by) || target.Transparent(x, y) {
				continue
			}
			cut.Set(bx, by, basis.Tone(bx, by), basis.Alpha(bx, by))
		}
	}
	return cut
}
