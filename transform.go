package viamboard

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform is a 3x3 projective transform in row-major order, together with
// the size of the plane it maps into.
type Transform struct {
	M      [9]float64 `json:"m"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
}

// NewTransform solves the homography taking src (TL, TR, BR, BL) onto the
// corners of a width x height rectangle.
func NewTransform(src Quad, width, height int) (*Transform, error) {
	if err := src.checkDegenerate(); err != nil {
		return nil, err
	}
	dst := Quad{{0, 0}, {float64(width), 0}, {float64(width), float64(height)}, {0, float64(height)}}
	m, err := solveHomography(src, dst)
	if err != nil {
		return nil, err
	}
	return &Transform{M: m, Width: width, Height: height}, nil
}

func solveHomography(src, dst Quad) ([9]float64, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := range 4 {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return [9]float64{}, fmt.Errorf("%w: %w", ErrDegenerateQuad, err)
	}

	var m [9]float64
	for i := range 8 {
		m[i] = h.AtVec(i)
	}
	m[8] = 1
	return m, nil
}

// Apply maps a point through the transform.
func (t *Transform) Apply(p Point) Point {
	w := t.M[6]*p.X + t.M[7]*p.Y + t.M[8]
	if w == 0 {
		return Point{math.Inf(1), math.Inf(1)}
	}
	return Point{
		X: (t.M[0]*p.X + t.M[1]*p.Y + t.M[2]) / w,
		Y: (t.M[3]*p.X + t.M[4]*p.Y + t.M[5]) / w,
	}
}

// Inverse returns the transform mapping back into the source plane, whose
// size must be supplied by the caller.
func (t *Transform) Inverse(width, height int) (*Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(3, 3, t.M[:])); err != nil {
		return nil, fmt.Errorf("transform not invertible: %w", err)
	}
	out := &Transform{Width: width, Height: height}
	scale := inv.At(2, 2)
	if scale == 0 {
		scale = 1
	}
	for i := range 9 {
		out.M[i] = inv.At(i/3, i%3) / scale
	}
	return out, nil
}

// warpPerspective renders the destination plane of fwd by sampling src
// through the inverse mapping.
func warpPerspective(src image.Image, fwd *Transform) (*image.NRGBA, error) {
	b := src.Bounds()
	inv, err := fwd.Inverse(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	return warpInverse(src, inv, fwd.Width, fwd.Height), nil
}

// warpInverse fills a width x height image where each pixel is taken from
// src at inv(pixel).
func warpInverse(src image.Image, inv *Transform, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			p := inv.Apply(Point{float64(x), float64(y)})
			dst.SetNRGBA(x, y, bilinearSample(src, p.X, p.Y))
		}
	}
	return dst
}

func bilinearSample(img image.Image, x, y float64) color.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if math.IsInf(x, 0) || math.IsNaN(x) || x < 0 || y < 0 || x > float64(w-1) || y > float64(h-1) {
		return color.NRGBA{0, 0, 0, 255}
	}

	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := min(x0+1, w-1), min(y0+1, h-1)
	fx, fy := x-float64(x0), y-float64(y0)

	at := func(px, py int) [3]float64 {
		r, g, bl, _ := img.At(b.Min.X+px, b.Min.Y+py).RGBA()
		return [3]float64{float64(r >> 8), float64(g >> 8), float64(bl >> 8)}
	}
	c00, c10, c01, c11 := at(x0, y0), at(x1, y0), at(x0, y1), at(x1, y1)

	var out [3]uint8
	for i := range 3 {
		top := c00[i]*(1-fx) + c10[i]*fx
		bottom := c01[i]*(1-fx) + c11[i]*fx
		out[i] = clampByte(top*(1-fy) + bottom*fy)
	}
	return color.NRGBA{out[0], out[1], out[2], 255}
}
