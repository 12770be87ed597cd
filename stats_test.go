package camouflage

import (
	"math"
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	segs := ImageSegments{
		geo(rectSegment(0, 0, 0, 0), 10),     // 1 pixel
		geo(rectSegment(0, 2, 2, 2), 20),     // 3 pixels
		geo(rectSegment(10, 10, 13, 13), 10), // 16 pixels
	}
	s := Summarize(segs)

	if s.Regions != 3 || s.Pixels != 20 || s.Tones != 2 || s.MaxArea != 16 {
		t.Errorf("Expected 3 regions 20 pixels 2 tones max 16, got %+v", s)
	}
	if math.Abs(s.MeanArea-20.0/3) > 1e-9 {
		t.Errorf("Expected mean %f, got %f", 20.0/3, s.MeanArea)
	}
	// Unbiased sample standard deviation of 1, 3, 16.
	wantStd := math.Sqrt((math.Pow(1-20.0/3, 2) + math.Pow(3-20.0/3, 2) + math.Pow(16-20.0/3, 2)) / 2)
	if math.Abs(s.StdArea-wantStd) > 1e-9 {
		t.Errorf("Expected std %f, got %f", wantStd, s.StdArea)
	}
	if s.MedianArea != 3 {
		t.Errorf("Expected median 3, got %f", s.MedianArea)
	}
	if !strings.Contains(s.String(), "3 regions") {
		t.Errorf("Expected a readable summary, got %q", s.String())
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	if s := Summarize(nil); s != (Stats{}) {
		t.Errorf("Expected zero stats, got %+v", s)
	}
	s := Summarize(ImageSegments{geo(rectSegment(0, 0, 1, 1), 5)})
	if s.StdArea != 0 || s.MeanArea != 4 || s.MedianArea != 4 {
		t.Errorf("Expected mean and median 4 with no spread, got %+v", s)
	}
}
