package viamboard

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrInvalidImage is returned for nil or empty input images.
	ErrInvalidImage = errors.New("invalid or empty image")
	// ErrBoardNotFound is the root of every fatal recognition failure.
	ErrBoardNotFound = errors.New("no chessboard found")
	// ErrDegenerateQuad means the board edge has duplicate or collinear points.
	ErrDegenerateQuad = fmt.Errorf("%w: degenerate board edge", ErrBoardNotFound)
	// ErrNoLines means the rectified board produced no hough lines.
	ErrNoLines = fmt.Errorf("%w: no lines detected", ErrBoardNotFound)
	// ErrNoCorners means no line intersection survived filtering.
	ErrNoCorners = fmt.Errorf("%w: no corners detected", ErrBoardNotFound)
	// ErrInconsistentGrid means corners were found but no field could be built.
	ErrInconsistentGrid = errors.New("inconsistent grid")
	// ErrNoDepthData is informational: a depth based query had no depth map.
	ErrNoDepthData = errors.New("no depth data")
)

// Point is a real valued pixel coordinate.
type Point struct {
	X, Y float64
}

func pointFrom(p image.Point) Point {
	return Point{float64(p.X), float64(p.Y)}
}

// ImagePoint rounds to the nearest pixel.
func (p Point) ImagePoint() image.Point {
	return image.Point{int(math.Round(p.X)), int(math.Round(p.Y))}
}

// Dist is the euclidean distance between two points.
func (p Point) Dist(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Scale multiplies each coordinate independently.
func (p Point) Scale(sx, sy float64) Point {
	return Point{p.X * sx, p.Y * sy}
}

// Line is a segment given by its two endpoints.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Degenerate reports whether both endpoints coincide.
func (l Line) Degenerate() bool {
	return l.X1 == l.X2 && l.Y1 == l.Y2
}

// Horizontal reports whether the line runs more along x than along y.
// A degenerate line is not horizontal.
func (l Line) Horizontal() bool {
	return math.Abs(l.X2-l.X1) > math.Abs(l.Y2-l.Y1)
}

// Angle returns the slope angle in radians. Degenerate lines have angle 0,
// lines with (numerically) equal x have exactly pi/2.
func (l Line) Angle() float64 {
	if l.Degenerate() {
		return 0
	}
	if isClose(l.X2, l.X1) {
		return math.Pi / 2
	}
	return math.Atan((l.Y2 - l.Y1) / (l.X2 - l.X1))
}

// Intersect computes where the infinite lines through l and o cross, truncated
// toward zero to integer pixels. Parallel or degenerate pairs never intersect.
func (l Line) Intersect(o Line) (image.Point, bool) {
	den := (l.X1-l.X2)*(o.Y1-o.Y2) - (l.Y1-l.Y2)*(o.X1-o.X2)
	if den == 0 {
		return image.Point{}, false
	}
	a := l.X1*l.Y2 - l.Y1*l.X2
	b := o.X1*o.Y2 - o.Y1*o.X2
	x := (a*(o.X1-o.X2) - (l.X1-l.X2)*b) / den
	y := (a*(o.Y1-o.Y2) - (l.Y1-l.Y2)*b) / den
	if math.Abs(x) > math.MaxInt32 || math.Abs(y) > math.MaxInt32 {
		return image.Point{}, false
	}
	return image.Point{int(x), int(y)}, true
}

func (l Line) String() string {
	return fmt.Sprintf("(%.0f,%.0f)-(%.0f,%.0f)", l.X1, l.Y1, l.X2, l.Y2)
}

// isClose mirrors the usual relative/absolute float comparison.
func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}

// Quad is a board edge: top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// Scale maps every vertex by independent x/y factors.
func (q Quad) Scale(sx, sy float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Scale(sx, sy)
	}
	return out
}

// Ceil rounds every coordinate up.
func (q Quad) Ceil() Quad {
	var out Quad
	for i, p := range q {
		out[i] = Point{math.Ceil(p.X), math.Ceil(p.Y)}
	}
	return out
}

// Offset moves each vertex outward by o pixels (inward for negative o).
func (q Quad) Offset(o float64) Quad {
	return Quad{
		{q[0].X - o, q[0].Y - o},
		{q[1].X + o, q[1].Y - o},
		{q[2].X + o, q[2].Y + o},
		{q[3].X - o, q[3].Y + o},
	}
}

// checkDegenerate rejects duplicate vertices and any three collinear ones.
func (q Quad) checkDegenerate() error {
	const eps = 1e-6
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i].Dist(q[j]) < eps {
				return fmt.Errorf("%w: vertices %d and %d coincide at %v", ErrDegenerateQuad, i, j, q[i])
			}
		}
	}
	for i := 0; i < 4; i++ {
		a, b, c := q[i], q[(i+1)%4], q[(i+2)%4]
		if math.Abs(cross(a, b, c)) < eps*math.Max(1, a.Dist(b)*b.Dist(c)) {
			return fmt.Errorf("%w: vertices %v %v %v are collinear", ErrDegenerateQuad, a, b, c)
		}
	}
	return nil
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// polygonArea is the absolute shoelace area.
func polygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// arcLength is the closed perimeter of a polygon.
func arcLength(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	total := 0.0
	for i := range pts {
		total += pts[i].Dist(pts[(i+1)%len(pts)])
	}
	return total
}

// insideConvex reports whether p lies inside or on a convex polygon of any
// winding.
func insideConvex(poly []Point, p Point) bool {
	if len(poly) < 3 {
		return false
	}
	sign := 0.0
	for i := range poly {
		c := cross(poly[i], poly[(i+1)%len(poly)], p)
		if math.Abs(c) < 1e-9 {
			continue
		}
		if sign == 0 {
			sign = c
			continue
		}
		if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// convexMask marks every pixel whose coordinate lies in poly.
func convexMask(width, height int, poly []Point) [][]bool {
	mask := make([][]bool, height)
	for y := range height {
		mask[y] = make([]bool, width)
	}
	bb := boundingBox(poly).Intersect(image.Rect(0, 0, width, height))
	for y := bb.Min.Y; y < bb.Max.Y; y++ {
		for x := bb.Min.X; x < bb.Max.X; x++ {
			mask[y][x] = insideConvex(poly, Point{float64(x), float64(y)})
		}
	}
	return mask
}

// boundingBox is the smallest pixel rectangle holding every point.
func boundingBox(pts []Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Floor(maxX))+1, int(math.Floor(maxY))+1)
}
