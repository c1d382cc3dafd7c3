package viamboard

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"go.viam.com/test"
)

func TestHoughVerticalLine(t *testing.T) {
	edges := make([][]bool, 200)
	for y := range edges {
		edges[y] = make([]bool, 200)
		edges[y][50] = true
	}

	lines := houghLineDetection(edges, math.Pi/360, 70)
	test.That(t, len(lines), test.ShouldBeGreaterThan, 0)
	test.That(t, lines[0].rho, test.ShouldEqual, 50)
	test.That(t, lines[0].theta, test.ShouldEqual, 0)
	test.That(t, lines[0].votes, test.ShouldEqual, 200)

	for i := 1; i < len(lines); i++ {
		test.That(t, lines[i].votes, test.ShouldBeLessThanOrEqualTo, lines[i-1].votes)
	}

	seg := lines[0].segment(1000)
	test.That(t, seg, test.ShouldResemble, Line{50, 1000, 50, -1000})
	test.That(t, seg.Horizontal(), test.ShouldBeFalse)
}

func TestHoughBelowThreshold(t *testing.T) {
	edges := make([][]bool, 100)
	for y := range edges {
		edges[y] = make([]bool, 100)
	}
	for x := 0; x < 30; x++ {
		edges[40][x] = true
	}
	test.That(t, houghLineDetection(edges, math.Pi/360, 70), test.ShouldBeEmpty)
	test.That(t, houghLineDetection(nil, math.Pi/360, 70), test.ShouldBeEmpty)
}

func TestSegmentHorizontal(t *testing.T) {
	seg := houghLine{rho: 100, theta: math.Pi / 2}.segment(1000)
	test.That(t, seg.Horizontal(), test.ShouldBeTrue)
	// cos(pi/2) is not exactly zero, so truncation may land one pixel off
	test.That(t, seg.Y1, test.ShouldAlmostEqual, 100, 1)
	test.That(t, seg.Y2, test.ShouldAlmostEqual, 100, 1)
	test.That(t, seg.X1, test.ShouldAlmostEqual, -1000, 1)
}

func TestCannyStepEdge(t *testing.T) {
	gray := make([][]int, 200)
	for y := range gray {
		gray[y] = make([]int, 200)
		for x := 100; x < 200; x++ {
			gray[y][x] = 200
		}
	}

	edges := cannyEdges(gray, 70, 150)
	count := 0
	for y := range edges {
		for x := range edges[y] {
			if edges[y][x] {
				count++
				test.That(t, x, test.ShouldEqual, 99)
			}
		}
	}
	test.That(t, count, test.ShouldEqual, 198)
}

func TestExtractLinesBlank(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := range 100 {
		for x := range 100 {
			img.SetNRGBA(x, y, color.NRGBA{128, 128, 128, 255})
		}
	}
	_, err := extractLines(img, DefaultTunables())
	test.That(t, errors.Is(err, ErrNoLines), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrBoardNotFound), test.ShouldBeTrue)
}
