package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/camouflage"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrEmptyImage = errors.New("utils: image has no pixels")

// goldenAngle spreads consecutive label hues around the colour wheel.
const goldenAngle = 137.50776405003785

func ReadImage(path string) image.Image {
	file, err := os.Open(path)
	if err != nil {
		panic(err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		panic(err)
	}
	return img
}

// LoadGrayAlpha decodes the file at path (png, jpeg, gif, bmp, tiff, webp)
// and converts it to a grey+alpha raster.
func LoadGrayAlpha(path string) (*camouflage.GrayAlpha, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyImage)
	}
	ga, err := camouflage.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ga, nil
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// ScaleToWidth resizes img to width w keeping the aspect ratio.
// Non-positive widths return img unchanged.
func ScaleToWidth(img image.Image, w int) image.Image {
	b := img.Bounds()
	if w <= 0 || b.Dx() == 0 || w == b.Dx() {
		return img
	}
	h := max(1, int(math.Round(float64(b.Dy())*float64(w)/float64(b.Dx()))))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// LabelColor returns the display colour of region i.
func LabelColor(i int) color.NRGBA {
	hue := math.Mod(float64(i)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.65, 0.95).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// LabelImage paints every region of segs with its own colour on a
// transparent w×h canvas and marks each centroid with a black pixel.
// Pixels outside the canvas are skipped.
func LabelImage(w, h int, segs camouflage.ImageSegments) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, g := range segs {
		c := LabelColor(i)
		for y, rl := range g.Seg {
			if int(y) >= h {
				continue
			}
			for _, r := range rl {
				for x := int(r.Lo); x <= min(int(r.Hi), w-1); x++ {
					img.SetNRGBA(x, int(y), c)
				}
			}
		}
	}
	for _, g := range segs {
		x := int(math.Round(g.Centroid.X))
		y := int(math.Round(g.Centroid.Y))
		if x >= 0 && y >= 0 && x < w && y < h {
			img.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	return img
}

// SaveGraphDOT writes g in Graphviz DOT format.
func SaveGraphDOT(g *camouflage.SpatialGraph, name, filename string) error {
	b, err := g.MarshalDOT(name)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
