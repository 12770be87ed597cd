package camouflage

import (
	"fmt"
	"slices"
	"sync"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
)

// DefaultK is the number of background neighbours linked to every
// foreground region.
const DefaultK = 6

type GraphOptions struct {
	// Number of nearest background regions connected to each foreground
	// region. Fewer edges are added when the background has fewer regions.
	K int
	// Strategy used to find the nearest background regions.
	Search NeighborSearch
	// Goroutines used by the boundary and neighbour passes. Values below 2
	// run both passes on the calling goroutine.
	Workers int
}

func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		K:       DefaultK,
		Search:  SearchExhaustive,
		Workers: 1,
	}
}

// Node is a graph vertex carrying one region.
type Node struct {
	id         int64
	Geo        GeoSegment
	Background bool
}

func (n *Node) ID() int64 { return n.id }

func (n *Node) DOTID() string {
	if n.Background {
		return fmt.Sprintf("b%d", n.id)
	}
	return fmt.Sprintf("f%d", n.id)
}

func (n *Node) Attributes() []encoding.Attribute {
	block := "foreground"
	if n.Background {
		block = "background"
	}
	return []encoding.Attribute{
		{Key: "block", Value: block},
		{Key: "tone", Value: fmt.Sprint(n.Geo.Tone)},
		{Key: "area", Value: fmt.Sprint(n.Geo.Seg.Area())},
		{Key: "pos", Value: fmt.Sprintf("%.3f,%.3f", n.Geo.Centroid.X, n.Geo.Centroid.Y)},
	}
}

// SpatialGraph is an undirected graph over the regions of a foreground and
// a background image. Nodes [0, Division()) hold foreground regions in their
// input order and nodes [Division(), Len()) hold background regions.
// Foreground regions are linked to each other when they are connected and
// to their nearest background regions. Node indices never change.
type SpatialGraph struct {
	g        *simple.UndirectedGraph
	nodes    []*Node
	division int
	mu       sync.Mutex
}

// BuildGraph assembles the spatial graph of fg and bg.
func BuildGraph(fg, bg ImageSegments, opt GraphOptions) *SpatialGraph {
	sg := &SpatialGraph{
		g:     simple.NewUndirectedGraph(),
		nodes: make([]*Node, 0, len(fg)+len(bg)),
	}
	for _, seg := range fg {
		sg.addNode(seg, false)
	}
	sg.connectBoundaries(opt.Workers)

	sg.division = len(sg.nodes)
	for _, seg := range bg {
		sg.addNode(seg, true)
	}
	sg.connectNeighbors(opt)
	return sg
}

func (sg *SpatialGraph) addNode(seg GeoSegment, background bool) {
	n := &Node{id: int64(len(sg.nodes)), Geo: seg, Background: background}
	sg.nodes = append(sg.nodes, n)
	sg.g.AddNode(n)
}

func (sg *SpatialGraph) setEdge(i, j int) {
	sg.mu.Lock()
	defer sg.mu.Unlock()
	sg.g.SetEdge(sg.g.NewEdge(sg.nodes[i], sg.nodes[j]))
}

// connectBoundaries links every connected pair of the nodes added so far.
func (sg *SpatialGraph) connectBoundaries(workers int) {
	n := len(sg.nodes)
	parallelFor(n, workers, func(i int) {
		for j := i + 1; j < n; j++ {
			if sg.nodes[i].Geo.Seg.Connected(sg.nodes[j].Geo.Seg) {
				sg.setEdge(i, j)
			}
		}
	})
}

// connectNeighbors links every foreground node to its opt.K nearest
// background nodes by centroid distance.
func (sg *SpatialGraph) connectNeighbors(opt GraphOptions) {
	if opt.K <= 0 || sg.division == len(sg.nodes) {
		return
	}
	targets := make([]centroidPoint, 0, len(sg.nodes)-sg.division)
	for _, n := range sg.nodes[sg.division:] {
		targets = append(targets, centroidPoint{PointF: n.Geo.Centroid, node: int(n.id)})
	}

	nearest := func(q PointF) []int {
		return nearestExhaustive(q, targets, opt.K)
	}
	if opt.Search == SearchKDTree {
		tree := newCentroidTree(targets)
		nearest = func(q PointF) []int {
			return nearestKDTree(tree, q, opt.K)
		}
	}

	parallelFor(sg.division, opt.Workers, func(i int) {
		for _, j := range nearest(sg.nodes[i].Geo.Centroid) {
			sg.setEdge(i, j)
		}
	})
}

// Graph exposes the underlying gonum graph. Node IDs equal node indices.
func (sg *SpatialGraph) Graph() graph.Undirected {
	return sg.g
}

// Len returns the number of nodes.
func (sg *SpatialGraph) Len() int {
	return len(sg.nodes)
}

// Division returns the index of the first background node.
func (sg *SpatialGraph) Division() int {
	return sg.division
}

// Segment returns the region held by node i.
func (sg *SpatialGraph) Segment(i int) GeoSegment {
	return sg.nodes[i].Geo
}

func (sg *SpatialGraph) Foreground() ImageSegments {
	return sg.payloads(0, sg.division)
}

func (sg *SpatialGraph) Background() ImageSegments {
	return sg.payloads(sg.division, len(sg.nodes))
}

func (sg *SpatialGraph) payloads(from, to int) ImageSegments {
	out := make(ImageSegments, 0, to-from)
	for _, n := range sg.nodes[from:to] {
		out = append(out, n.Geo)
	}
	return out
}

// Neighbors returns the nodes adjacent to node i in ascending order.
func (sg *SpatialGraph) Neighbors(i int) []int {
	var out []int
	for _, n := range graph.NodesOf(sg.g.From(int64(i))) {
		out = append(out, int(n.ID()))
	}
	slices.Sort(out)
	return out
}

func (sg *SpatialGraph) HasEdge(i, j int) bool {
	return sg.g.HasEdgeBetween(int64(i), int64(j))
}

func (sg *SpatialGraph) EdgeCount() int {
	return len(graph.EdgesOf(sg.g.Edges()))
}

// Clusters groups foreground nodes joined by boundary edges. Each cluster
// is sorted and clusters are ordered by their first node.
func (sg *SpatialGraph) Clusters() [][]int {
	fg := simple.NewUndirectedGraph()
	for _, n := range sg.nodes[:sg.division] {
		fg.AddNode(n)
	}
	for i := range sg.division {
		for _, j := range sg.Neighbors(i) {
			if j > i && j < sg.division {
				fg.SetEdge(fg.NewEdge(sg.nodes[i], sg.nodes[j]))
			}
		}
	}

	var out [][]int
	for _, cc := range topo.ConnectedComponents(fg) {
		ids := make([]int, 0, len(cc))
		for _, n := range cc {
			ids = append(ids, int(n.ID()))
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []int) int { return a[0] - b[0] })
	return out
}

// Adjacency returns the symmetric 0/1 adjacency matrix, or nil for an
// empty graph.
func (sg *SpatialGraph) Adjacency() *mat.Dense {
	n := len(sg.nodes)
	if n == 0 {
		return nil
	}
	a := mat.NewDense(n, n, nil)
	for _, e := range graph.EdgesOf(sg.g.Edges()) {
		i, j := int(e.From().ID()), int(e.To().ID())
		a.Set(i, j, 1)
		a.Set(j, i, 1)
	}
	return a
}

// MarshalDOT renders the graph in Graphviz DOT format.
func (sg *SpatialGraph) MarshalDOT(name string) ([]byte, error) {
	return dot.Marshal(sg.g, name, "", "\t")
}
