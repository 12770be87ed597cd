package camouflage

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// NeighborSearch selects how the K nearest background regions of a
// foreground region are found. Both strategies return the same nodes.
type NeighborSearch int

const (
	// SearchExhaustive sorts the distances to every background region.
	SearchExhaustive NeighborSearch = iota
	// SearchKDTree narrows the candidates with a k-d tree first.
	SearchKDTree
)

func (s NeighborSearch) String() string {
	switch s {
	case SearchKDTree:
		return "kdtree"
	default:
		return "exhaustive"
	}
}

// ParseNeighborSearch maps a strategy name to its value. Unknown names
// select SearchExhaustive and report false.
func ParseNeighborSearch(s string) (NeighborSearch, bool) {
	switch s {
	case "exhaustive", "":
		return SearchExhaustive, true
	case "kdtree":
		return SearchKDTree, true
	}
	return SearchExhaustive, false
}

// Distance returns the Euclidean distance between p and q.
func (p PointF) Distance(q PointF) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

type neighbor struct {
	dist float64
	node int
}

// Centroid distances are always finite, so cmp.Compare gives a total order.
func compareNeighbors(a, b neighbor) int {
	return cmp.Or(cmp.Compare(a.dist, b.dist), cmp.Compare(a.node, b.node))
}

// nearestExhaustive returns the k nodes of targets closest to q, ties
// going to the earlier node.
func nearestExhaustive(q PointF, targets []centroidPoint, k int) []int {
	cands := make([]neighbor, 0, len(targets))
	for _, t := range targets {
		cands = append(cands, neighbor{dist: q.Distance(t.PointF), node: t.node})
	}
	slices.SortStableFunc(cands, func(a, b neighbor) int {
		return cmp.Compare(a.dist, b.dist)
	})
	return firstNodes(cands, k)
}

func firstNodes(cands []neighbor, k int) []int {
	k = min(k, len(cands))
	out := make([]int, k)
	for i := range k {
		out[i] = cands[i].node
	}
	return out
}

// centroidPoint is a background centroid stored in the k-d tree.
type centroidPoint struct {
	PointF
	node int
}

func (p centroidPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(centroidPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

func (p centroidPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p centroidPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(centroidPoint)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

type centroidPoints []centroidPoint

func (p centroidPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p centroidPoints) Len() int                              { return len(p) }
func (p centroidPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p centroidPoints) Pivot(d kdtree.Dim) int {
	plane := centroidPlane{centroidPoints: p, Dim: d}
	return kdtree.Partition(plane, kdtree.MedianOfRandoms(plane, 100))
}

// centroidPlane implements sort.Interface and kdtree.SortSlicer.
type centroidPlane struct {
	centroidPoints
	kdtree.Dim
}

func (p centroidPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.centroidPoints[i].X < p.centroidPoints[j].X
	case 1:
		return p.centroidPoints[i].Y < p.centroidPoints[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p centroidPlane) Slice(start, end int) kdtree.SortSlicer {
	return centroidPlane{centroidPoints: p.centroidPoints[start:end], Dim: p.Dim}
}

func (p centroidPlane) Swap(i, j int) {
	p.centroidPoints[i], p.centroidPoints[j] = p.centroidPoints[j], p.centroidPoints[i]
}

// newCentroidTree builds a k-d tree over a copy of targets; the tree
// reorders its input.
func newCentroidTree(targets []centroidPoint) *kdtree.Tree {
	pts := make(centroidPoints, len(targets))
	copy(pts, targets)
	return kdtree.New(pts, false)
}

// nearestKDTree finds the distance of the k-th nearest point, collects
// every point within a slightly wider radius so equidistant points are all
// considered, and orders those exactly as nearestExhaustive does.
// The widened radius keeps the keeper's sentinel strictly above every real
// candidate, so NearestSet drops the sentinel and never a tied point.
func nearestKDTree(tree *kdtree.Tree, q PointF, k int) []int {
	if k <= 0 || tree.Count == 0 {
		return nil
	}
	query := centroidPoint{PointF: q, node: -1}

	keep := kdtree.NewNKeeper(k)
	tree.NearestSet(keep, query)
	kth, found := 0.0, false
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		kth = max(kth, c.Dist)
		found = true
	}
	if !found {
		return nil
	}

	radius := math.Nextafter(kth, math.Inf(1)) * (1 + 1e-9)
	ties := kdtree.NewDistKeeper(radius)
	tree.NearestSet(ties, query)
	cands := make([]neighbor, 0, len(ties.Heap))
	for _, c := range ties.Heap {
		if c.Comparable == nil {
			continue
		}
		p := c.Comparable.(centroidPoint)
		cands = append(cands, neighbor{dist: q.Distance(p.PointF), node: p.node})
	}
	slices.SortFunc(cands, compareNeighbors)
	return firstNodes(cands, k)
}
