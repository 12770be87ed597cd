package camouflage

// Segmenter partitions an image into maximal 4-connected regions of opaque
// pixels sharing the exact same intensity. A Segmenter owns its visitation
// grid and is meant for a single pass.
type Segmenter struct {
	img     *GrayAlpha
	visited *VisitedPixels
	stack   []Point
}

func NewSegmenter(img *GrayAlpha) *Segmenter {
	return &Segmenter{
		img:     img,
		visited: NewVisitedPixels(img.W, img.H),
	}
}

// SegmentImage returns the regions of img in row-major seed order, each
// with its centroid computed.
func SegmentImage(img *GrayAlpha) ImageSegments {
	if img.Empty() {
		return ImageSegments{}
	}
	return NewSegmenter(img).Run()
}

// Visited exposes the visitation grid of the pass.
func (s *Segmenter) Visited() *VisitedPixels {
	return s.visited
}

// Run scans the image in row-major order and grows a region from every
// unvisited opaque pixel.
func (s *Segmenter) Run() ImageSegments {
	segments := ImageSegments{}
	w, h := s.img.W, s.img.H
	for y := range h {
		for x := range w {
			if s.visited.IsVisited(x, y) {
				continue
			}
			if s.img.Transparent(x, y) {
				s.visited.Visit(x, y)
				continue
			}
			tone := s.img.Tone(x, y)
			seg := s.grow(x, y, tone)
			segments = append(segments, GeoSegment{
				Seg:      seg,
				Centroid: seg.Centroid(s.img),
				Tone:     tone,
			})
		}
	}
	return segments
}

// grow collects the region containing (x, y) one horizontal run at a time.
// Runs of the neighbouring rows are queued on an explicit stack, so region
// size is not bounded by goroutine stack depth.
func (s *Segmenter) grow(x, y int, tone uint8) Segment {
	seg := make(Segment)
	s.stack = append(s.stack[:0], Point{X: uint16(x), Y: uint16(y)})

	for len(s.stack) > 0 {
		p := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		px, py := int(p.X), int(p.Y)
		// A queued run may have been absorbed by an earlier scan.
		if s.visited.IsVisited(px, py) {
			continue
		}
		lo, hi := s.scanRow(px, py, tone)
		seg.add(p.Y, Range{Lo: uint16(lo), Hi: uint16(hi)})

		if py > 0 {
			s.seedRow(lo, hi, py-1, tone)
		}
		if py < s.img.H-1 {
			s.seedRow(lo, hi, py+1, tone)
		}
	}

	seg.normalize()
	return seg
}

// scanRow extends left and right from (x, y) while the tone matches and
// marks the whole run visited.
func (s *Segmenter) scanRow(x, y int, tone uint8) (lo, hi int) {
	s.visited.Visit(x, y)
	lo, hi = x, x
	for lo > 0 && s.img.sameOpaqueTone(lo-1, y, tone) {
		lo--
		s.visited.Visit(lo, y)
	}
	for hi < s.img.W-1 && s.img.sameOpaqueTone(hi+1, y, tone) {
		hi++
		s.visited.Visit(hi, y)
	}
	return lo, hi
}

// seedRow queues one pixel per contiguous stretch of matching, unvisited
// pixels of row y between lo and hi.
func (s *Segmenter) seedRow(lo, hi, y int, tone uint8) {
	inStretch := false
	for x := lo; x <= hi; x++ {
		if !s.visited.IsVisited(x, y) && s.img.sameOpaqueTone(x, y, tone) {
			if !inStretch {
				s.stack = append(s.stack, Point{X: uint16(x), Y: uint16(y)})
				inStretch = true
			}
			continue
		}
		inStretch = false
	}
}
