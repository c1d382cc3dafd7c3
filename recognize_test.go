package viamboard

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/samber/lo"
	"go.viam.com/rdk/logging"
	"go.viam.com/test"
)

func TestRecognizeSyntheticBoard(t *testing.T) {
	b := recognizeEmptyBoard(t)

	test.That(t, len(b.Fields), test.ShouldEqual, 64)
	test.That(t, b.Rows, test.ShouldEqual, 8)
	test.That(t, b.Cols, test.ShouldEqual, 8)
	test.That(t, b.Consistent(), test.ShouldBeTrue)
	test.That(t, b.GridErr(), test.ShouldBeNil)
	test.That(t, b.Labels(), test.ShouldResemble, allLabels(8, 8))
	test.That(t, len(b.Corners), test.ShouldEqual, 81)
	test.That(t, b.CameraSize, test.ShouldResemble, image.Point{400, 400})

	h8, ok := b.Field("h8")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, h8.Row, test.ShouldEqual, 0)
	test.That(t, h8.Col, test.ShouldEqual, 0)

	a1, ok := b.Field("a1")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, a1.Row, test.ShouldEqual, 7)
	test.That(t, a1.Col, test.ShouldEqual, 7)

	// h8 is the top left square of the drawing, a1 the bottom right
	c := h8.Center()
	test.That(t, c.X, test.ShouldAlmostEqual, 60, 3)
	test.That(t, c.Y, test.ShouldAlmostEqual, 60, 3)
	c = a1.Center()
	test.That(t, c.X, test.ShouldAlmostEqual, 340, 3)
	test.That(t, c.Y, test.ShouldAlmostEqual, 340, 3)

	for _, f := range b.Fields {
		test.That(t, f.State, test.ShouldEqual, Empty)
	}

	// the board edge is the light frame
	test.That(t, b.Edge[0].X, test.ShouldAlmostEqual, 20, 1)
	test.That(t, b.Edge[2].X, test.ShouldAlmostEqual, 379, 1)

	_, ok = b.Field("i9")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestBoardUnwarped(t *testing.T) {
	b := recognizeEmptyBoard(t)

	u := b.Unwarped()
	test.That(t, u, test.ShouldNotBeNil)
	test.That(t, u.Bounds(), test.ShouldResemble, image.Rect(0, 0, 400, 400))
	// h8 stays a light square, the background outside the board is dropped
	test.That(t, u.NRGBAAt(60, 60).R, test.ShouldBeGreaterThan, 150)
	test.That(t, u.NRGBAAt(100, 60).R, test.ShouldBeLessThan, 100)
	test.That(t, u.NRGBAAt(5, 5).R, test.ShouldBeLessThan, 30)

	b.Rectified = nil
	test.That(t, b.Unwarped(), test.ShouldBeNil)
}

func TestRecognizeScalesToCamera(t *testing.T) {
	small := renderBoard(nil)
	big := image.NewNRGBA(image.Rect(0, 0, 800, 800))
	for y := range 800 {
		for x := range 800 {
			big.SetNRGBA(x, y, small.NRGBAAt(x/2, y/2))
		}
	}

	b, err := Recognize(big, nil, WithLogger(logging.NewTestLogger(t)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(b.Fields), test.ShouldEqual, 64)
	test.That(t, b.ScaleX, test.ShouldEqual, 2)

	a1, _ := b.Field("a1")
	test.That(t, a1.Center().X, test.ShouldAlmostEqual, 680, 8)
	test.That(t, a1.Center().Y, test.ShouldAlmostEqual, 680, 8)
}

func TestRecognizePerspective(t *testing.T) {
	img, toFrame := renderSkewed(t, Quad{{60, 40}, {420, 55}, {440, 370}, {40, 350}}, 480, 420)

	// the masked edge of a skewed board leaves a line on the rectified
	// border unless the quad is pulled in
	tun := DefaultTunables()
	tun.EdgeOffset = -2
	b, err := Recognize(img, nil, WithLogger(logging.NewTestLogger(t)), WithTunables(tun))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(b.Fields), test.ShouldEqual, 64)
	test.That(t, b.Consistent(), test.ShouldBeTrue)
	test.That(t, b.Labels(), test.ShouldResemble, allLabels(8, 8))
	test.That(t, b.CameraSize, test.ShouldResemble, image.Point{480, 420})

	for label, sq := range map[string]square{
		"h8": {0, 0}, "a8": {7, 0}, "h1": {0, 7}, "a1": {7, 7}, "e4": e4, "d5": d5,
	} {
		f, ok := b.Field(label)
		test.That(t, ok, test.ShouldBeTrue)
		want := toFrame.Apply(Point{float64(60 + 40*sq.col), float64(60 + 40*sq.row)})
		got := f.Center()
		test.That(t, got.X, test.ShouldAlmostEqual, want.X, 5)
		test.That(t, got.Y, test.ShouldAlmostEqual, want.Y, 5)
	}
}

func TestRecognizeWithPieces(t *testing.T) {
	img := renderBoard(map[square]uint8{{3, 6}: 250, {4, 0}: 10})
	b, err := Recognize(img, nil, WithLogger(logging.NewTestLogger(t)))
	test.That(t, err, test.ShouldBeNil)

	for label, want := range map[string]FieldState{"e2": White, "d8": Black, "e4": Empty} {
		f, ok := b.Field(label)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, f.State, test.ShouldEqual, want)
	}

	m := b.CurrentMatrix()
	test.That(t, m[6][3], test.ShouldEqual, White)
	test.That(t, m[0][4], test.ShouldEqual, Black)
}

func TestRecognizeErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := Recognize(nil, nil, WithLogger(logger))
	test.That(t, errors.Is(err, ErrInvalidImage), test.ShouldBeTrue)

	uniform := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	for i := range uniform.Pix {
		uniform.Pix[i] = 128
	}
	_, err = Recognize(uniform, nil, WithLogger(logger))
	test.That(t, errors.Is(err, ErrBoardNotFound), test.ShouldBeTrue)

	// the frame of a board without any squares drawn on it
	plain := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	for y := range 400 {
		for x := range 400 {
			v := uint8(darkGray)
			if x >= 20 && x < 380 && y >= 20 && y < 380 {
				v = lightGray
			}
			plain.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	_, err = Recognize(plain, nil, WithLogger(logger))
	test.That(t, errors.Is(err, ErrNoLines), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrBoardNotFound), test.ShouldBeTrue)

	bad := DefaultTunables()
	bad.ThresholdBlockSize = 4
	_, err = Recognize(renderBoard(nil), nil, WithLogger(logger), WithTunables(bad))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTunables(t *testing.T) {
	d := DefaultTunables()
	test.That(t, d.Validate(), test.ShouldBeNil)
	test.That(t, Tunables{}.withDefaults(), test.ShouldResemble, d)

	partial := Tunables{DedupeRadius: 20}.withDefaults()
	test.That(t, partial.DedupeRadius, test.ShouldEqual, 20)
	test.That(t, partial.WorkingSize, test.ShouldEqual, 400)

	test.That(t, partial.sharpenAmount(), test.ShouldEqual, 5)
	test.That(t, partial.thresholdC(), test.ShouldEqual, 1)

	bad := d
	bad.ROIInset = 0.5
	test.That(t, bad.Validate(), test.ShouldNotBeNil)
	bad = d
	bad.CannyHigh = 10
	test.That(t, bad.Validate(), test.ShouldNotBeNil)
}

func TestTunablesExplicitZero(t *testing.T) {
	zero := Tunables{ThresholdC: lo.ToPtr(0.0), SharpenAmount: lo.ToPtr(0.0)}.withDefaults()
	test.That(t, zero.thresholdC(), test.ShouldEqual, 0)
	test.That(t, zero.sharpenAmount(), test.ShouldEqual, 0)
	test.That(t, zero.WorkingSize, test.ShouldEqual, 400)

	var o recognizeOptions
	WithTunables(zero)(&o)
	test.That(t, o.tunables.thresholdC(), test.ShouldEqual, 0)
	test.That(t, o.tunables.sharpenAmount(), test.ShouldEqual, 0)

	var decoded Tunables
	test.That(t, json.Unmarshal([]byte(`{"threshold_c": 0, "dedupe_radius": 12}`), &decoded), test.ShouldBeNil)
	decoded = decoded.withDefaults()
	test.That(t, decoded.thresholdC(), test.ShouldEqual, 0)
	test.That(t, decoded.sharpenAmount(), test.ShouldEqual, 5)
	test.That(t, decoded.DedupeRadius, test.ShouldEqual, 12)

	// no sharpening still finds the synthetic board
	b, err := Recognize(renderBoard(nil), nil, WithLogger(logging.NewTestLogger(t)),
		WithTunables(Tunables{SharpenAmount: lo.ToPtr(0.0)}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(b.Fields), test.ShouldEqual, 64)
}

type constClassifier FieldState

func (c constClassifier) Classify(image.Image, image.Rectangle) FieldState {
	return FieldState(c)
}

func TestRecognizeCustomClassifier(t *testing.T) {
	b, err := Recognize(renderBoard(nil), nil, WithLogger(logging.NewTestLogger(t)), WithClassifier(constClassifier(Black)))
	test.That(t, err, test.ShouldBeNil)
	for _, f := range b.Fields {
		test.That(t, f.State, test.ShouldEqual, Black)
	}
}
