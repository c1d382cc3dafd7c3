package viamboard

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/samber/lo"
)

var (
	fourNeighbours  = []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	eightNeighbours = []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1}}

	// clockwise on screen, starting east
	mooreDirs = [8]image.Point{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

	sentinelColor = color.NRGBA{125, 125, 125, 255}
	remapColor    = color.NRGBA{0, 0, 20, 255}
)

type contour struct {
	points    []Point
	area      float64
	perimeter float64
	hole      bool
}

func (c contour) compactness() float64 {
	if c.perimeter == 0 {
		return 0
	}
	return c.area / c.perimeter
}

// boundary is the output of the board boundary extractor.
type boundary struct {
	quad   Quad
	masked *image.NRGBA
}

func extractBoundary(n *normalized, t Tunables) (*boundary, error) {
	contours := findContours(n.binary)
	best, ok := selectBoardContour(contours)
	if !ok {
		return nil, fmt.Errorf("%w: no closed contour", ErrBoardNotFound)
	}

	approx := approxPolygon(best.points, t.ApproxEpsilon*best.perimeter)
	if len(approx) != 4 {
		return nil, fmt.Errorf("%w: board edge has %d vertices, want 4", ErrBoardNotFound, len(approx))
	}

	quad := orderQuad(approx)
	if err := quad.checkDegenerate(); err != nil {
		return nil, err
	}
	return &boundary{quad: quad, masked: maskBoard(n.working, quad)}, nil
}

// findContours labels 8-connected foreground and 4-connected background
// components and traces the outer boundary of every one that stays clear of
// the image frame.
func findContours(binary [][]bool) []contour {
	height := len(binary)
	if height == 0 {
		return nil
	}
	width := len(binary[0])

	labels := make([][]int, height)
	for y := range height {
		labels[y] = make([]int, width)
	}

	var contours []contour
	currentLabel := 0
	for y := range height {
		for x := range width {
			if labels[y][x] != 0 {
				continue
			}
			fg := binary[y][x]
			neighbours := fourNeighbours
			if fg {
				neighbours = eightNeighbours
			}
			currentLabel++
			_, touches := floodFill(binary, fg, labels, x, y, width, height, currentLabel, neighbours)
			if touches {
				continue
			}

			traced := traceContour(labels, currentLabel, image.Point{x, y})
			pts := lo.Map(traced, func(p image.Point, _ int) Point { return pointFrom(p) })
			contours = append(contours, contour{
				points:    pts,
				area:      polygonArea(pts),
				perimeter: arcLength(pts),
				hole:      !fg,
			})
		}
	}
	return contours
}

// floodFill labels the component of pixels equal to want that contains the
// start pixel. It reports the component size and whether it reaches the
// image frame.
func floodFill(mask [][]bool, want bool, labels [][]int, startX, startY, width, height, label int, neighbours []image.Point) (int, bool) {
	stack := []image.Point{{startX, startY}}
	size := 0
	touches := false

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if mask[p.Y][p.X] != want || labels[p.Y][p.X] != 0 {
			continue
		}

		labels[p.Y][p.X] = label
		size++
		if p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1 {
			touches = true
		}

		for _, d := range neighbours {
			stack = append(stack, p.Add(d))
		}
	}

	return size, touches
}

// traceContour walks the outer boundary of a labeled component with Moore
// neighbour tracing. start must be the component's first pixel in raster
// order, so its west neighbour is outside the component.
func traceContour(labels [][]int, label int, start image.Point) []image.Point {
	height := len(labels)
	width := len(labels[0])
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height && labels[p.Y][p.X] == label
	}

	points := []image.Point{start}
	cur := start
	back := 4 // direction from cur to the pixel we came from
	var second image.Point
	haveSecond := false

	for steps := 0; steps < 4*width*height; steps++ {
		next, nextBack, ok := mooreStep(cur, back, inside)
		if !ok {
			break // isolated pixel
		}
		if haveSecond && cur == start && next == second {
			break
		}
		if !haveSecond {
			second, haveSecond = next, true
		}
		cur, back = next, nextBack
		points = append(points, cur)
	}

	if len(points) > 1 && points[len(points)-1] == start {
		points = points[:len(points)-1]
	}
	return points
}

func mooreStep(cur image.Point, back int, inside func(image.Point) bool) (image.Point, int, bool) {
	for k := 1; k <= 8; k++ {
		i := (back + k) % 8
		n := cur.Add(mooreDirs[i])
		if !inside(n) {
			continue
		}
		prev := cur.Add(mooreDirs[(i+7)%8])
		return n, directionIndex(prev.Sub(n)), true
	}
	return image.Point{}, 0, false
}

func directionIndex(d image.Point) int {
	for i, m := range mooreDirs {
		if m == d {
			return i
		}
	}
	return 0
}

// selectBoardContour picks the contour with the largest area to perimeter
// ratio; the playing area is the most compact large shape in the frame.
func selectBoardContour(contours []contour) (contour, bool) {
	best := -1
	bestScore := 0.0
	for i, c := range contours {
		if c.perimeter == 0 {
			continue
		}
		if score := c.compactness(); best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return contour{}, false
	}
	return contours[best], true
}

// approxPolygon simplifies a closed polygon with Douglas-Peucker. The curve
// is split at its first point and the vertex farthest from it.
func approxPolygon(pts []Point, epsilon float64) []Point {
	if len(pts) < 3 {
		return pts
	}

	far := 0
	farDist := -1.0
	for i, p := range pts {
		if d := p.Dist(pts[0]); d > farDist {
			far, farDist = i, d
		}
	}
	if far == 0 {
		return pts[:1]
	}

	first := dpSimplify(pts[:far+1], epsilon)
	closing := append(append([]Point{}, pts[far:]...), pts[0])
	second := dpSimplify(closing, epsilon)

	out := append([]Point{}, first[:len(first)-1]...)
	return append(out, second[:len(second)-1]...)
}

func dpSimplify(pts []Point, epsilon float64) []Point {
	if len(pts) < 3 {
		return append([]Point{}, pts...)
	}

	maxDist := 0.0
	index := 0
	for i := 1; i < len(pts)-1; i++ {
		if d := perpendicularDistance(pts[i], pts[0], pts[len(pts)-1]); d > maxDist {
			maxDist, index = d, i
		}
	}

	if maxDist <= epsilon {
		return []Point{pts[0], pts[len(pts)-1]}
	}

	left := dpSimplify(pts[:index+1], epsilon)
	right := dpSimplify(pts[index:], epsilon)
	return append(left[:len(left)-1], right...)
}

func perpendicularDistance(p, a, b Point) float64 {
	length := a.Dist(b)
	if length == 0 {
		return p.Dist(a)
	}
	return math.Abs(cross(a, b, p)) / length
}

// orderQuad assigns top-left, top-right, bottom-right, bottom-left. The
// vertices are walked clockwise (on screen) around the centroid starting from
// the smallest x+y; on a board turned 45 degrees the topmost vertex wins the
// tie and becomes top-left.
func orderQuad(pts []Point) Quad {
	cx, cy := 0.0, 0.0
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	sorted := slices.Clone(pts)
	slices.SortStableFunc(sorted, func(a, b Point) int {
		return cmp.Compare(math.Atan2(a.Y-cy, a.X-cx), math.Atan2(b.Y-cy, b.X-cx))
	})

	first := 0
	for i, p := range sorted {
		if p.X+p.Y < sorted[first].X+sorted[first].Y {
			first = i
		}
	}

	var q Quad
	for i := range q {
		q[i] = sorted[(first+i)%len(sorted)]
	}
	return q
}

// maskBoard zeroes everything outside the quad and remaps the sentinel grey.
func maskBoard(img *image.NRGBA, q Quad) *image.NRGBA {
	b := img.Bounds()
	mask := convexMask(b.Dx(), b.Dy(), q[:])
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		for x := range b.Dx() {
			if !mask[y][x] {
				out.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
				continue
			}
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			if c == sentinelColor {
				c = remapColor
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}
