package camouflage

// VisitedPixels marks pixels already handled by a segmentation pass. Once
// set, a flag is never cleared.
type VisitedPixels struct {
	W, H    int
	visited []bool // len = W*H, row-major
}

func NewVisitedPixels(w, h int) *VisitedPixels {
	return &VisitedPixels{
		W:       w,
		H:       h,
		visited: make([]bool, w*h),
	}
}

func visitedOffset(w, x, y int) int {
	return y*w + x
}

func (v *VisitedPixels) Visit(x, y int) {
	v.visited[visitedOffset(v.W, x, y)] = true
}

func (v *VisitedPixels) IsVisited(x, y int) bool {
	return v.visited[visitedOffset(v.W, x, y)]
}

// Count returns the number of visited pixels.
func (v *VisitedPixels) Count() int {
	n := 0
	for _, b := range v.visited {
		if b {
			n++
		}
	}
	return n
}
