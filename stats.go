package camouflage

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a segmentation.
type Stats struct {
	Regions    int
	Pixels     int
	Tones      int
	MeanArea   float64
	StdArea    float64
	MedianArea float64
	MaxArea    int
}

// Summarize computes region statistics of segs.
func Summarize(segs ImageSegments) Stats {
	s := Stats{Regions: len(segs)}
	if len(segs) == 0 {
		return s
	}

	areas := make([]float64, len(segs))
	var tones [256]bool
	for i, g := range segs {
		a := g.Seg.Area()
		areas[i] = float64(a)
		s.Pixels += a
		s.MaxArea = max(s.MaxArea, a)
		if !tones[g.Tone] {
			tones[g.Tone] = true
			s.Tones++
		}
	}

	s.MeanArea, s.StdArea = stat.MeanStdDev(areas, nil)
	if len(areas) == 1 {
		s.StdArea = 0
	}
	slices.Sort(areas)
	s.MedianArea = stat.Quantile(0.5, stat.Empirical, areas, nil)
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("%d regions, %d pixels, %d tones, area mean %.1f std %.1f median %.0f max %d",
		s.Regions, s.Pixels, s.Tones, s.MeanArea, s.StdArea, s.MedianArea, s.MaxArea)
}
