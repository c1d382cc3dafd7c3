package viamboard

import (
	"fmt"
	"image"
	"math"
)

// FieldState is what the classifier saw on a field.
type FieldState int

const (
	Unknown FieldState = iota
	Empty
	White
	Black
)

func (s FieldState) String() string {
	switch s {
	case Empty:
		return "empty"
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// Occupied reports whether a piece of either colour stands on the field.
func (s FieldState) Occupied() bool {
	return s == White || s == Black
}

// MarshalText implements encoding.TextMarshaler.
func (s FieldState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FieldState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*s = Empty
	case "white":
		*s = White
	case "black":
		*s = Black
	case "unknown", "":
		*s = Unknown
	default:
		return fmt.Errorf("unknown field state %q", string(b))
	}
	return nil
}

// Field is one playable square. Corners are in rectified coordinates in quad
// order: c1 top-left, c2 top-right, c3 bottom-left, c4 bottom-right.
// Camera holds the same corners projected back into the camera image.
type Field struct {
	Label   string         `json:"label"`
	Row     int            `json:"row"`
	Col     int            `json:"col"`
	Corners [4]image.Point `json:"corners"`
	Camera  [4]Point       `json:"camera"`
	State   FieldState     `json:"state"`
}

// Contour returns the rectified corners in winding order c1, c2, c4, c3.
func (f Field) Contour() []image.Point {
	return []image.Point{f.Corners[0], f.Corners[1], f.Corners[3], f.Corners[2]}
}

// CameraContour is Contour in camera image coordinates.
func (f Field) CameraContour() []Point {
	return []Point{f.Camera[0], f.Camera[1], f.Camera[3], f.Camera[2]}
}

// Center is the centroid of the camera contour.
func (f Field) Center() Point {
	var c Point
	for _, p := range f.Camera {
		c.X += p.X / 4
		c.Y += p.Y / 4
	}
	return c
}

// ROI is the bounding box of the contour shrunk by the default inset.
func (f Field) ROI() image.Rectangle {
	return f.roi(DefaultTunables().ROIInset)
}

func (f Field) roi(inset float64) image.Rectangle {
	pts := make([]Point, 0, 4)
	for _, c := range f.Contour() {
		pts = append(pts, pointFrom(c))
	}
	bb := boundingBox(pts)
	dx := int(math.Round(float64(bb.Dx()) * inset))
	dy := int(math.Round(float64(bb.Dy()) * inset))
	return image.Rect(bb.Min.X+dx, bb.Min.Y+dy, bb.Max.X-dx, bb.Max.Y-dy)
}

// FieldDiagnostic records a grid cell that could not become a field.
type FieldDiagnostic struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Reason string `json:"reason"`
}

func (d FieldDiagnostic) Error() string {
	return fmt.Sprintf("field at row %d col %d skipped: %s", d.Row, d.Col, d.Reason)
}
