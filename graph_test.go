package camouflage

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
)

// pixelSegments returns single-pixel regions at the given coordinates.
func pixelSegments(pts ...Point) ImageSegments {
	out := make(ImageSegments, 0, len(pts))
	for _, p := range pts {
		out = append(out, geo(rectSegment(p.X, p.Y, p.X, p.Y), 1))
	}
	return out
}

func randomPixelSegments(rng *rand.Rand, n, span int) ImageSegments {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: uint16(rng.IntN(span)), Y: uint16(rng.IntN(span))}
	}
	return pixelSegments(pts...)
}

func TestBuildGraphShape(t *testing.T) {
	fg := pixelSegments(Point{0, 0}, Point{20, 0}, Point{40, 0})
	bg := randomPixelSegments(rand.New(rand.NewPCG(5, 6)), 10, 60)

	g := BuildGraph(fg, bg, DefaultGraphOptions())
	if g.Len() != 13 {
		t.Errorf("Expected 13 nodes, got %d", g.Len())
	}
	if g.Division() != 3 {
		t.Errorf("Expected division 3, got %d", g.Division())
	}
	for i := range g.Division() {
		var bgNeighbors int
		for _, j := range g.Neighbors(i) {
			if j >= g.Division() {
				bgNeighbors++
			}
		}
		if bgNeighbors != DefaultK {
			t.Errorf("Node %d: expected %d background neighbours, got %d", i, DefaultK, bgNeighbors)
		}
	}
	for i := g.Division(); i < g.Len(); i++ {
		for _, j := range g.Neighbors(i) {
			if j >= g.Division() {
				t.Errorf("Expected no background-background edge, got %d-%d", i, j)
			}
		}
	}
	if got := g.Foreground(); len(got) != 3 || got[1].Centroid != fg[1].Centroid {
		t.Errorf("Expected foreground payloads in input order, got %v", got)
	}
	if got := g.Background(); len(got) != 10 || got[0].Centroid != bg[0].Centroid {
		t.Errorf("Expected background payloads in input order, got %v", got)
	}
}

func TestBuildGraphFewerThanK(t *testing.T) {
	fg := pixelSegments(Point{0, 0})
	bg := pixelSegments(Point{5, 5}, Point{9, 9})

	g := BuildGraph(fg, bg, DefaultGraphOptions())
	if got := g.Neighbors(0); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Expected neighbours [1 2], got %v", got)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("Expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestBuildGraphEmpty(t *testing.T) {
	g := BuildGraph(nil, nil, DefaultGraphOptions())
	if g.Len() != 0 || g.EdgeCount() != 0 || g.Division() != 0 {
		t.Errorf("Expected an empty graph, got %d nodes %d edges", g.Len(), g.EdgeCount())
	}
	if g.Adjacency() != nil {
		t.Error("Expected no adjacency matrix for an empty graph")
	}
	if len(g.Clusters()) != 0 {
		t.Error("Expected no clusters")
	}

	fg := pixelSegments(Point{0, 0}, Point{1, 0})
	g = BuildGraph(fg, nil, DefaultGraphOptions())
	if g.Division() != 2 || g.Len() != 2 {
		t.Errorf("Expected division 2 of 2, got %d of %d", g.Division(), g.Len())
	}
	if !g.HasEdge(0, 1) || g.EdgeCount() != 1 {
		t.Error("Expected only the boundary edge")
	}
}

func TestBuildGraphBoundaries(t *testing.T) {
	fg := ImageSegments{
		geo(rectSegment(0, 0, 3, 3), 1),
		geo(rectSegment(4, 0, 7, 3), 2),
		geo(rectSegment(0, 4, 1, 4), 3),
		geo(rectSegment(20, 20, 21, 21), 4),
	}
	g := BuildGraph(fg, nil, DefaultGraphOptions())

	want := [][2]int{{0, 1}, {0, 2}}
	if g.EdgeCount() != len(want) {
		t.Errorf("Expected %d edges, got %d", len(want), g.EdgeCount())
	}
	for _, e := range want {
		if !g.HasEdge(e[0], e[1]) || !g.HasEdge(e[1], e[0]) {
			t.Errorf("Expected edge %d-%d", e[0], e[1])
		}
	}

	clusters := g.Clusters()
	wantClusters := [][]int{{0, 1, 2}, {3}}
	if len(clusters) != len(wantClusters) {
		t.Fatalf("Expected clusters %v, got %v", wantClusters, clusters)
	}
	for i := range clusters {
		if !slices.Equal(clusters[i], wantClusters[i]) {
			t.Errorf("Expected clusters %v, got %v", wantClusters, clusters)
		}
	}
}

func TestNearestTiesPreferEarlierNodes(t *testing.T) {
	fg := pixelSegments(Point{10, 10})
	bg := pixelSegments(
		Point{30, 30}, // node 1, far
		Point{11, 10}, // node 2, distance 1
		Point{10, 9},  // node 3, distance 1
		Point{9, 10},  // node 4, distance 1
		Point{10, 11}, // node 5, distance 1
	)
	for _, search := range []NeighborSearch{SearchExhaustive, SearchKDTree} {
		g := BuildGraph(fg, bg, GraphOptions{K: 2, Search: search})
		if got := g.Neighbors(0); !slices.Equal(got, []int{2, 3}) {
			t.Errorf("%s: expected [2 3], got %v", search, got)
		}
	}
}

func TestSearchStrategiesAgree(t *testing.T) {
	for seed := range uint64(8) {
		rng := rand.New(rand.NewPCG(seed, seed+100))
		// Region centroids on a few tones produce many equal distances.
		fg := SegmentImage(randomImage(rng, 20+rng.IntN(20), 20+rng.IntN(20), []uint8{1, 2, 3}))
		bg := SegmentImage(randomImage(rng, 30+rng.IntN(30), 30+rng.IntN(30), []uint8{1, 2}))
		k := 1 + rng.IntN(10)

		ex := BuildGraph(fg, bg, GraphOptions{K: k, Search: SearchExhaustive})
		kd := BuildGraph(fg, bg, GraphOptions{K: k, Search: SearchKDTree})
		for i := range ex.Division() {
			if a, b := ex.Neighbors(i), kd.Neighbors(i); !slices.Equal(a, b) {
				t.Errorf("seed %d node %d: exhaustive %v, kdtree %v", seed, i, a, b)
			}
		}
	}

	// Pixel centroids on a small grid tie on exact integer distances.
	rng := rand.New(rand.NewPCG(9, 10))
	for iter := range 10 {
		fg := randomPixelSegments(rng, 25, 12)
		bg := randomPixelSegments(rng, 1+rng.IntN(120), 12)
		k := 1 + rng.IntN(8)

		ex := BuildGraph(fg, bg, GraphOptions{K: k, Search: SearchExhaustive})
		kd := BuildGraph(fg, bg, GraphOptions{K: k, Search: SearchKDTree})
		for i := range ex.Division() {
			if a, b := ex.Neighbors(i), kd.Neighbors(i); !slices.Equal(a, b) {
				t.Errorf("iter %d node %d: exhaustive %v, kdtree %v", iter, i, a, b)
			}
		}
	}
}

func TestKDTreeKeepsEarlierTiedNode(t *testing.T) {
	// Nodes 2 and 3 tie at the k-th place with node 1 closer.
	fg := pixelSegments(Point{10, 10})
	bg := pixelSegments(
		Point{10, 11}, // node 1, distance 1
		Point{12, 11}, // node 2, distance sqrt(5)
		Point{11, 12}, // node 3, distance sqrt(5)
		Point{8, 11},  // node 4, distance sqrt(5)
	)
	for k := 1; k <= 4; k++ {
		ex := BuildGraph(fg, bg, GraphOptions{K: k, Search: SearchExhaustive})
		kd := BuildGraph(fg, bg, GraphOptions{K: k, Search: SearchKDTree})
		if a, b := ex.Neighbors(0), kd.Neighbors(0); !slices.Equal(a, b) {
			t.Errorf("k=%d: exhaustive %v, kdtree %v", k, a, b)
		}
	}
	kd := BuildGraph(fg, bg, GraphOptions{K: 2, Search: SearchKDTree})
	if got := kd.Neighbors(0); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Expected [1 2], got %v", got)
	}
}

func TestParallelBuildMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	img := randomImage(rng, 30, 30, []uint8{1, 2, 3})
	fg := SegmentImage(img)
	bg := randomPixelSegments(rng, 80, 30)

	serial := BuildGraph(fg, bg, GraphOptions{K: DefaultK, Workers: 1})
	parallel := BuildGraph(fg, bg, GraphOptions{K: DefaultK, Workers: 4, Search: SearchKDTree})
	if serial.EdgeCount() != parallel.EdgeCount() {
		t.Errorf("Expected %d edges, got %d", serial.EdgeCount(), parallel.EdgeCount())
	}
	for i := range serial.Len() {
		if a, b := serial.Neighbors(i), parallel.Neighbors(i); !slices.Equal(a, b) {
			t.Errorf("Node %d: serial %v, parallel %v", i, a, b)
		}
	}
}

func TestParallelForVisitsEachIndexOnce(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 64} {
		counts := make([]atomic.Int32, 50)
		parallelFor(len(counts), workers, func(i int) {
			counts[i].Add(1)
		})
		for i := range counts {
			if c := counts[i].Load(); c != 1 {
				t.Errorf("workers=%d: index %d visited %d times", workers, i, c)
			}
		}
	}
}

func TestAdjacency(t *testing.T) {
	fg := pixelSegments(Point{0, 0}, Point{1, 0})
	bg := pixelSegments(Point{5, 5})
	g := BuildGraph(fg, bg, DefaultGraphOptions())

	a := g.Adjacency()
	r, c := a.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("Expected 3x3, got %dx%d", r, c)
	}
	var ones int
	for i := range 3 {
		for j := range 3 {
			if a.At(i, j) != a.At(j, i) {
				t.Errorf("Expected symmetry at (%d, %d)", i, j)
			}
			if a.At(i, j) == 1 {
				ones++
			}
		}
	}
	if ones != 2*g.EdgeCount() {
		t.Errorf("Expected %d entries, got %d", 2*g.EdgeCount(), ones)
	}
}

func TestMarshalDOT(t *testing.T) {
	fg := pixelSegments(Point{0, 0})
	bg := pixelSegments(Point{3, 4})
	b, err := BuildGraph(fg, bg, DefaultGraphOptions()).MarshalDOT("camouflage")
	if err != nil {
		t.Fatalf("MarshalDOT failed: %v", err)
	}
	out := string(b)
	for _, want := range []string{"graph camouflage {", "f0 -- b1", "block=background", "pos=\"3.000,4.000\""} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}
