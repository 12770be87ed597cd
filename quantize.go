package camouflage

import (
	"image"
	"image/color"
	"log"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

type QuantizeMethod int

const (
	QuantizeUniform QuantizeMethod = iota
	QuantizeKMeans
	QuantizeDominant
)

func (m QuantizeMethod) String() string {
	switch m {
	case QuantizeKMeans:
		return "kmeans"
	case QuantizeDominant:
		return "dominantcolor"
	default:
		return "uniform"
	}
}

// ParseQuantizeMethod maps a method name to its value. Unknown names
// select QuantizeUniform and report false.
func ParseQuantizeMethod(s string) (QuantizeMethod, bool) {
	switch s {
	case "uniform", "":
		return QuantizeUniform, true
	case "kmeans":
		return QuantizeKMeans, true
	case "dominantcolor", "dominant":
		return QuantizeDominant, true
	}
	return QuantizeUniform, false
}

func toneBounds(img *GrayAlpha) (lo, hi uint8, distinct int) {
	var seen [256]bool
	lo, hi = 255, 0
	for i := 0; i < len(img.Pix); i += 2 {
		v := img.Pix[i]
		lo = min(lo, v)
		hi = max(hi, v)
		if !seen[v] {
			seen[v] = true
			distinct++
		}
	}
	return lo, hi, distinct
}

// reducible reports whether quantizing to n levels can change img: the
// tonal range must exceed n and more than n tones must be present.
func reducible(img *GrayAlpha, n int) (t1, t2 uint8, ok bool) {
	if img.Empty() || n <= 0 {
		return 0, 0, false
	}
	t1, t2, distinct := toneBounds(img)
	return t1, t2, int(t2)-int(t1) > n && distinct > n
}

// Quantize reduces the intensities of img to at most n evenly spaced
// levels in place. Alpha is left untouched. Nothing happens when the tonal
// range of the image is not larger than n or when it already holds at most
// n tones.
func Quantize(img *GrayAlpha, n int) {
	t1, t2, ok := reducible(img, n)
	if !ok {
		return
	}
	span := int(t2) - int(t1)

	tb := float64(span) / float64(n)
	step := int(math.Round(tb))
	offset := int(math.Round(tb / 2))

	bins := make([]uint8, 0, n+1)
	for v := int(t1); v < int(t2); v += step {
		bins = append(bins, uint8(min(255, v+offset)))
	}
	// Rounding the step can leave the top of the range uncovered.
	bins = append(bins, bins[len(bins)-1])

	for i := 0; i < len(img.Pix); i += 2 {
		idx := (int(img.Pix[i]) - int(t1)) / step
		img.Pix[i] = bins[min(idx, n-1, len(bins)-1)]
	}
}

// QuantizeWith reduces img to at most n tones using method. Clustering
// methods fall back to the uniform quantizer when they cannot produce
// levels.
func QuantizeWith(img *GrayAlpha, n int, method QuantizeMethod) {
	if _, _, ok := reducible(img, n); !ok {
		return
	}

	var levels []uint8
	switch method {
	case QuantizeKMeans:
		levels = kmeansLevels(img, n)
	case QuantizeDominant:
		levels = dominantLevels(img, n)
	default:
		Quantize(img, n)
		return
	}
	if len(levels) == 0 {
		log.Printf("quantize warning: %s returned no levels, falling back to uniform", method)
		Quantize(img, n)
		return
	}
	snapToLevels(img, levels)
}

// snapToLevels replaces every intensity by its nearest level; ties go to
// the darker level.
func snapToLevels(img *GrayAlpha, levels []uint8) {
	slices.Sort(levels)
	levels = slices.Compact(levels)

	var lut [256]uint8
	for t := range 256 {
		best := levels[0]
		bestD := math.MaxInt
		for _, l := range levels {
			d := t - int(l)
			if d < 0 {
				d = -d
			}
			if d < bestD {
				bestD = d
				best = l
			}
		}
		lut[t] = best
	}
	for i := 0; i < len(img.Pix); i += 2 {
		img.Pix[i] = lut[img.Pix[i]]
	}
}

// opaqueSamples returns intensities of opaque pixels, subsampled so that
// clustering stays tractable on large images.
func opaqueSamples(img *GrayAlpha, maxSamples int) []uint8 {
	step := 1
	if img.W*img.H > maxSamples {
		step = int(math.Sqrt(float64(img.W*img.H)/float64(maxSamples))) + 1
	}
	out := make([]uint8, 0, min(img.W*img.H, maxSamples))
	for y := 0; y < img.H; y += step {
		for x := 0; x < img.W; x += step {
			if img.Transparent(x, y) {
				continue
			}
			out = append(out, img.Tone(x, y))
		}
	}
	return out
}

func kmeansLevels(img *GrayAlpha, n int) []uint8 {
	samples := opaqueSamples(img, 12000)
	if len(samples) == 0 {
		return nil
	}
	dataset := make(clusters.Observations, 0, len(samples))
	for _, s := range samples {
		dataset = append(dataset, clusters.Coordinates{float64(s) / 255.0})
	}

	k := min(n, len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return nil
	}

	levels := make([]uint8, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) == 0 {
			continue
		}
		levels = append(levels, uint8(max(0, min(255, c.Center[0]*255+0.5))))
	}
	return levels
}

func dominantLevels(img *GrayAlpha, n int) []uint8 {
	samples := opaqueSamples(img, 12000)
	if len(samples) == 0 {
		return nil
	}

	// Lay the opaque samples out as a square opaque tile so the colour
	// extractor never sees void pixels.
	side := int(math.Ceil(math.Sqrt(float64(len(samples)))))
	tile := image.NewNRGBA(image.Rect(0, 0, side, side))
	for i := range side * side {
		t := samples[i%len(samples)]
		tile.SetNRGBA(i%side, i/side, color.NRGBA{R: t, G: t, B: t, A: 255})
	}

	candidates := dominantcolor.FindWeight(tile, n)
	levels := make([]uint8, 0, len(candidates))
	for _, c := range candidates {
		if c.Weight <= 0 {
			continue
		}
		r, g, b := float64(c.RGBA.R), float64(c.RGBA.G), float64(c.RGBA.B)
		levels = append(levels, uint8(max(0, min(255, 0.2126*r+0.7152*g+0.0722*b+0.5))))
	}
	if len(levels) > n {
		levels = levels[:n]
	}
	return levels
}
