package viamboard

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// FieldClassifier decides what stands on a field given the rectified board
// and the field's region of interest.
type FieldClassifier interface {
	Classify(img image.Image, roi image.Rectangle) FieldState
}

// ColorClassifier detects occupancy from gradient energy inside the ROI and
// picks the piece colour from the CIE-L*a*b* lightness of the pixels that
// stand out from the square.
type ColorClassifier struct {
	// EdgeMagnitude is the sobel magnitude a pixel needs to count as edge.
	EdgeMagnitude float64
	// MinEdgeFraction is the share of edge pixels that marks a field occupied.
	MinEdgeFraction float64
	// MinStdDev also marks a field occupied when grey values spread this much.
	MinStdDev float64
	// Deviation is the lightness distance from the bare square that counts a
	// pixel as part of the piece.
	Deviation float64
	// LightSplit separates white from black pieces on the L axis (0..1).
	LightSplit float64
}

// NewColorClassifier returns a classifier with the tuned defaults.
func NewColorClassifier() *ColorClassifier {
	return &ColorClassifier{
		EdgeMagnitude:   100,
		MinEdgeFraction: 0.05,
		MinStdDev:       25,
		Deviation:       0.1,
		LightSplit:      0.5,
	}
}

// Classify implements FieldClassifier.
func (cc *ColorClassifier) Classify(img image.Image, roi image.Rectangle) FieldState {
	roi = roi.Intersect(img.Bounds())
	if roi.Dx() < 3 || roi.Dy() < 3 {
		return Unknown
	}

	gray := makeGrayImage(imaging.Crop(img, roi))
	height, width := len(gray), len(gray[0])
	_, _, mag := sobelGradients(gray, width, height)

	values := make([]float64, 0, width*height)
	edgePixels, inner := 0, 0
	for y := range height {
		for x := range width {
			values = append(values, float64(gray[y][x]))
			if y == 0 || x == 0 || y == height-1 || x == width-1 {
				continue
			}
			inner++
			if mag[y][x] > cc.EdgeMagnitude {
				edgePixels++
			}
		}
	}

	_, std := stat.MeanStdDev(values, nil)
	edgeFraction := float64(edgePixels) / float64(max(inner, 1))
	if edgeFraction < cc.MinEdgeFraction && std < cc.MinStdDev {
		return Empty
	}
	return cc.pieceColor(img, roi)
}

func (cc *ColorClassifier) pieceColor(img image.Image, roi image.Rectangle) FieldState {
	const ring = 2

	var lightness, background []float64
	for y := roi.Min.Y; y < roi.Max.Y; y++ {
		for x := roi.Min.X; x < roi.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			lightness = append(lightness, l)
			if x < roi.Min.X+ring || y < roi.Min.Y+ring || x >= roi.Max.X-ring || y >= roi.Max.Y-ring {
				background = append(background, l)
			}
		}
	}
	if len(lightness) == 0 || len(background) == 0 {
		return Unknown
	}

	// the ROI border is almost always bare square
	sort.Float64s(background)
	square := stat.Quantile(0.5, stat.Empirical, background, nil)

	var piece []float64
	for _, l := range lightness {
		if math.Abs(l-square) > cc.Deviation {
			piece = append(piece, l)
		}
	}
	if len(piece) == 0 {
		return Unknown
	}
	if stat.Mean(piece, nil) > cc.LightSplit {
		return White
	}
	return Black
}
