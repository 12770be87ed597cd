package camouflage

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"
)

type Options struct {
	// Tone levels kept per image by the quantizer.
	// Fewer levels => larger regions => smaller graph.
	// Ideal start: 6-12. Zero disables quantization.
	Levels int
	// Level selection: evenly spaced bins, k-means or dominant colours.
	Quantizer QuantizeMethod
	// Clear background pixels outside the placed foreground's opaque
	// footprint before segmenting. Speeds up large backgrounds.
	MaskFootprint bool
	// Relation a background region needs with a foreground region to be
	// kept.
	Crop CropPredicate
	// Background neighbours linked to every foreground region.
	K int
	// Nearest-neighbour strategy. SearchKDTree pays off from a few thousand
	// background regions.
	Search NeighborSearch
	// Goroutines for the graph passes.
	Workers int
	// Print progress for every stage.
	Verbose bool
}

func DefaultOptions() Options {
	return Options{
		Levels:    8,
		Quantizer: QuantizeUniform,
		Crop:      CropOverlaps,
		K:         DefaultK,
		Search:    SearchExhaustive,
		Workers:   1,
	}
}

// OptionsFromSize adapts DefaultOptions to the background size: large
// backgrounds are masked to the footprint and searched with a k-d tree on
// all CPUs.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	pixels := size.X * size.Y
	if pixels > 512*512 {
		opt.Workers = runtime.NumCPU()
	}
	if pixels > 1920*1080 {
		opt.MaskFootprint = true
		opt.Search = SearchKDTree
	}
	return opt
}

func (opt Options) graphOptions() GraphOptions {
	return GraphOptions{K: opt.K, Search: opt.Search, Workers: opt.Workers}
}

// Analyzer runs the whole analysis of a foreground placed over a
// background at Position. The input images are not modified.
type Analyzer struct {
	Background *GrayAlpha
	Foreground *GrayAlpha
	Position   image.Point

	// Quantized working copies.
	QuantBackground *GrayAlpha
	QuantForeground *GrayAlpha
	// Foreground regions in background coordinates.
	ForegroundSegments ImageSegments
	// Background regions kept by the crop filter.
	BackgroundSegments ImageSegments
	Graph              *SpatialGraph
}

func NewAnalyzer(background, foreground *GrayAlpha, pos image.Point) *Analyzer {
	return &Analyzer{
		Background: background,
		Foreground: foreground,
		Position:   pos,
	}
}

func (a *Analyzer) Build(opt Options) error {
	logf := func(format string, args ...any) {
		if opt.Verbose {
			fmt.Printf(format, args...)
		}
	}

	start := time.Now()
	a.quantize(opt)
	logf("   quantized to %d levels (%s): background %d tones, foreground %d tones\n",
		opt.Levels, opt.Quantizer, len(a.QuantBackground.Tones()), len(a.QuantForeground.Tones()))

	if opt.MaskFootprint {
		a.QuantBackground = CropImage(a.QuantBackground, a.QuantForeground, a.Position)
		logf("   masked background to the foreground footprint at %v\n", a.Position)
	}

	bg, fg := a.segment()
	logf("   segmented background: %d regions, foreground: %d regions\n", len(bg), len(fg))

	fg, err := Translate(fg, a.Position.X, a.Position.Y)
	if err != nil {
		return fmt.Errorf("aligning foreground at %v: %w", a.Position, err)
	}
	a.ForegroundSegments = fg
	a.BackgroundSegments = Crop(fg, bg, opt.Crop)
	logf("   cropped background (%s): %d of %d regions kept\n", opt.Crop, len(a.BackgroundSegments), len(bg))

	a.Graph = BuildGraph(a.ForegroundSegments, a.BackgroundSegments, opt.graphOptions())
	logf("   graph: %d nodes, %d edges, division %d (%s, %d workers) in %v\n",
		a.Graph.Len(), a.Graph.EdgeCount(), a.Graph.Division(), opt.Search, max(1, opt.Workers),
		time.Since(start).Round(time.Millisecond))
	return nil
}

func (a *Analyzer) quantize(opt Options) {
	a.QuantBackground = a.Background.Clone()
	a.QuantForeground = a.Foreground.Clone()
	QuantizeWith(a.QuantBackground, opt.Levels, opt.Quantizer)
	QuantizeWith(a.QuantForeground, opt.Levels, opt.Quantizer)
}

// segment runs both segmentations concurrently; they share no state.
func (a *Analyzer) segment() (bg, fg ImageSegments) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		bg = SegmentImage(a.QuantBackground)
	}()
	go func() {
		defer wg.Done()
		fg = SegmentImage(a.QuantForeground)
	}()
	wg.Wait()
	return bg, fg
}
