package viamboard

import (
	"image"
	"image/color"
	"strconv"
	"testing"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"
)

const (
	darkGray  = 40
	lightGray = 220
)

// square identifies a checker square by image column and row, top-left (0,0).
type square struct{ col, row int }

// renderBoard draws a 400x400 frame: dark background, a light border from 20
// to 380 and an 8x8 checkerboard of 40 pixel squares from 40 to 360. Every
// entry of pieces puts a disc of that grey value on a square.
func renderBoard(pieces map[square]uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	fill := func(r image.Rectangle, v uint8) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
			}
		}
	}

	fill(img.Bounds(), darkGray)
	fill(image.Rect(20, 20, 380, 380), lightGray)
	for row := range 8 {
		for col := range 8 {
			v := uint8(lightGray)
			if (row+col)%2 == 1 {
				v = darkGray
			}
			fill(image.Rect(40+40*col, 40+40*row, 80+40*col, 80+40*row), v)
		}
	}

	for sq, v := range pieces {
		cx, cy := 60+40*sq.col, 60+40*sq.row
		for y := cy - 8; y <= cy+8; y++ {
			for x := cx - 8; x <= cx+8; x++ {
				if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= 64 {
					img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
				}
			}
		}
	}
	return img
}

// renderSkewed draws renderBoard(nil) in perspective onto a width x height
// frame, with the drawing's corners landing on quad. The returned transform
// maps drawing coordinates into the frame.
func renderSkewed(t *testing.T, quad Quad, width, height int) (*image.NRGBA, *Transform) {
	t.Helper()
	toDrawing, err := NewTransform(quad, 400, 400)
	test.That(t, err, test.ShouldBeNil)
	toFrame, err := toDrawing.Inverse(width, height)
	test.That(t, err, test.ShouldBeNil)
	return warpInverse(renderBoard(nil), toDrawing, width, height), toFrame
}

func recognizeEmptyBoard(t *testing.T) *Board {
	t.Helper()
	b, err := Recognize(renderBoard(nil), nil, WithLogger(logging.NewTestLogger(t)))
	test.That(t, err, test.ShouldBeNil)
	return b
}

func allLabels(cols, rows int) []string {
	var out []string
	for c := range cols {
		for r := range rows {
			out = append(out, string(fieldLetters[c])+strconv.Itoa(r+1))
		}
	}
	return out
}
