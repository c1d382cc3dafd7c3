package viamboard

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// houghLine is a line in the form rho = x*cos(theta) + y*sin(theta).
type houghLine struct {
	rho   float64
	theta float64
	votes int
}

// segment rebuilds a long segment through the foot point of the line,
// truncating the endpoints to whole pixels.
func (h houghLine) segment(reach float64) Line {
	a, b := math.Cos(h.theta), math.Sin(h.theta)
	x0, y0 := a*h.rho, b*h.rho
	return Line{
		X1: math.Trunc(x0 + reach*(-b)),
		Y1: math.Trunc(y0 + reach*a),
		X2: math.Trunc(x0 - reach*(-b)),
		Y2: math.Trunc(y0 - reach*a),
	}
}

type lineSet struct {
	horizontal []Line
	vertical   []Line
	edges      [][]bool
}

func extractLines(img image.Image, t Tunables) (*lineSet, error) {
	gray := makeGrayImage(imaging.Blur(imaging.Grayscale(img), 1.0))
	edges := cannyEdges(gray, t.CannyLow, t.CannyHigh)
	found := houghLineDetection(edges, t.HoughThetaStep, t.HoughVotes)
	if len(found) == 0 {
		return nil, ErrNoLines
	}

	ls := &lineSet{edges: edges}
	for _, h := range found {
		seg := h.segment(t.SegmentReach)
		if seg.Horizontal() {
			ls.horizontal = append(ls.horizontal, seg)
		} else {
			ls.vertical = append(ls.vertical, seg)
		}
	}
	return ls, nil
}

// sobelGradients computes the 3x3 Sobel derivatives and their L2 magnitude.
func sobelGradients(gray [][]int, width, height int) (gx, gy [][]int, mag [][]float64) {
	gx = make([][]int, height)
	gy = make([][]int, height)
	mag = make([][]float64, height)
	for y := range height {
		gx[y] = make([]int, width)
		gy[y] = make([]int, width)
		mag[y] = make([]float64, width)
	}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			dx := -gray[y-1][x-1] + gray[y-1][x+1] +
				-2*gray[y][x-1] + 2*gray[y][x+1] +
				-gray[y+1][x-1] + gray[y+1][x+1]

			dy := -gray[y-1][x-1] - 2*gray[y-1][x] - gray[y-1][x+1] +
				gray[y+1][x-1] + 2*gray[y+1][x] + gray[y+1][x+1]

			gx[y][x], gy[y][x] = dx, dy
			mag[y][x] = math.Sqrt(float64(dx*dx + dy*dy))
		}
	}
	return gx, gy, mag
}

// cannyEdges thins the gradient with non-maximum suppression and keeps weak
// edges only when they connect to a strong one.
func cannyEdges(gray [][]int, low, high float64) [][]bool {
	height := len(gray)
	if height == 0 {
		return nil
	}
	width := len(gray[0])
	gx, gy, mag := sobelGradients(gray, width, height)

	const (
		none = iota
		weak
		strong
	)
	class := make([][]uint8, height)
	for y := range height {
		class[y] = make([]uint8, width)
	}

	var stack []image.Point
	tan22 := math.Tan(math.Pi / 8)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			m := mag[y][x]
			if m < low {
				continue
			}

			// neighbours across the edge, quantized to 0/45/90/135 degrees
			ax, ay := math.Abs(float64(gx[y][x])), math.Abs(float64(gy[y][x]))
			var n1, n2 float64
			switch {
			case ay <= ax*tan22:
				n1, n2 = mag[y][x-1], mag[y][x+1]
			case ax <= ay*tan22:
				n1, n2 = mag[y-1][x], mag[y+1][x]
			case (gx[y][x] > 0) == (gy[y][x] > 0):
				n1, n2 = mag[y-1][x-1], mag[y+1][x+1]
			default:
				n1, n2 = mag[y-1][x+1], mag[y+1][x-1]
			}
			if m <= n1 || m < n2 {
				continue
			}

			if m >= high {
				class[y][x] = strong
				stack = append(stack, image.Point{x, y})
			} else {
				class[y][x] = weak
			}
		}
	}

	edges := make([][]bool, height)
	for y := range height {
		edges[y] = make([]bool, width)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if edges[p.Y][p.X] {
			continue
		}
		edges[p.Y][p.X] = true
		for _, d := range eightNeighbours {
			n := p.Add(d)
			if n.X < 0 || n.Y < 0 || n.X >= width || n.Y >= height {
				continue
			}
			if class[n.Y][n.X] != none && !edges[n.Y][n.X] {
				stack = append(stack, n)
			}
		}
	}
	return edges
}

// houghLineDetection votes every edge pixel into a (rho, theta) accumulator
// and returns the local maxima above the vote threshold, most voted first.
func houghLineDetection(edges [][]bool, thetaStep float64, voteThreshold int) []houghLine {
	height := len(edges)
	if height == 0 {
		return nil
	}
	width := len(edges[0])

	maxRho := int(math.Ceil(math.Hypot(float64(width), float64(height))))
	numThetas := int(math.Round(math.Pi / thetaStep))

	accumulator := make([][]int, 2*maxRho+1)
	for i := range accumulator {
		accumulator[i] = make([]int, numThetas)
	}

	cosTheta := make([]float64, numThetas)
	sinTheta := make([]float64, numThetas)
	for t := range numThetas {
		theta := float64(t) * thetaStep
		cosTheta[t] = math.Cos(theta)
		sinTheta[t] = math.Sin(theta)
	}

	for y := range height {
		for x := range width {
			if !edges[y][x] {
				continue
			}
			for t := range numThetas {
				rho := float64(x)*cosTheta[t] + float64(y)*sinTheta[t]
				rhoIdx := int(math.Round(rho)) + maxRho
				if rhoIdx >= 0 && rhoIdx < 2*maxRho+1 {
					accumulator[rhoIdx][t]++
				}
			}
		}
	}

	var lines []houghLine
	for rhoIdx := 0; rhoIdx < 2*maxRho+1; rhoIdx++ {
		for t := range numThetas {
			votes := accumulator[rhoIdx][t]
			if votes < voteThreshold {
				continue
			}

			// Local maximum check (5x5 neighborhood)
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nRho := rhoIdx + dr
					nT := (t + dt + numThetas) % numThetas
					if nRho >= 0 && nRho < 2*maxRho+1 && accumulator[nRho][nT] > votes {
						isMax = false
					}
				}
			}

			if isMax {
				lines = append(lines, houghLine{
					rho:   float64(rhoIdx - maxRho),
					theta: float64(t) * thetaStep,
					votes: votes,
				})
			}
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].votes > lines[j].votes
	})
	return lines
}
