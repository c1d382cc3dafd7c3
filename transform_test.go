package viamboard

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestTransformRoundTrip(t *testing.T) {
	src := Quad{{37, 52}, {341, 21}, {380, 360}, {15, 330}}
	fwd, err := NewTransform(src, 400, 400)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fwd.M[8], test.ShouldEqual, 1)

	want := []Point{{0, 0}, {400, 0}, {400, 400}, {0, 400}}
	for i, p := range src {
		got := fwd.Apply(p)
		test.That(t, got.X, test.ShouldAlmostEqual, want[i].X, 1e-6)
		test.That(t, got.Y, test.ShouldAlmostEqual, want[i].Y, 1e-6)
	}

	inv, err := fwd.Inverse(640, 480)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, inv.Width, test.ShouldEqual, 640)
	test.That(t, inv.M[8], test.ShouldAlmostEqual, 1)

	for _, p := range []Point{{100, 100}, {200, 250}, {55.5, 301.25}} {
		back := inv.Apply(fwd.Apply(p))
		test.That(t, back.X, test.ShouldAlmostEqual, p.X, 1e-3)
		test.That(t, back.Y, test.ShouldAlmostEqual, p.Y, 1e-3)
	}
}

func TestTransformDegenerate(t *testing.T) {
	_, err := NewTransform(Quad{{0, 0}, {50, 50}, {100, 100}, {0, 100}}, 400, 400)
	test.That(t, errors.Is(err, ErrDegenerateQuad), test.ShouldBeTrue)

	_, err = NewTransform(Quad{{10, 10}, {10, 10}, {100, 100}, {0, 100}}, 400, 400)
	test.That(t, errors.Is(err, ErrBoardNotFound), test.ShouldBeTrue)
}

func TestWarpPerspective(t *testing.T) {
	// left half red, right half blue
	src := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	for y := range 100 {
		for x := range 200 {
			c := color.NRGBA{255, 0, 0, 255}
			if x >= 100 {
				c = color.NRGBA{0, 0, 255, 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}

	// take the right half onto a 50x50 plane
	fwd, err := NewTransform(Quad{{100, 0}, {199, 0}, {199, 99}, {100, 99}}, 50, 50)
	test.That(t, err, test.ShouldBeNil)
	dst, err := warpPerspective(src, fwd)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dst.Bounds(), test.ShouldResemble, image.Rect(0, 0, 50, 50))
	test.That(t, dst.NRGBAAt(25, 25), test.ShouldResemble, color.NRGBA{0, 0, 255, 255})
	test.That(t, dst.NRGBAAt(1, 49), test.ShouldResemble, color.NRGBA{0, 0, 255, 255})
}

func TestBilinearSample(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{200, 100, 50, 255})

	test.That(t, bilinearSample(img, 0.5, 0), test.ShouldResemble, color.NRGBA{100, 50, 25, 255})
	test.That(t, bilinearSample(img, -0.1, 0), test.ShouldResemble, color.NRGBA{0, 0, 0, 255})
	test.That(t, bilinearSample(img, 1.5, 0), test.ShouldResemble, color.NRGBA{0, 0, 0, 255})
}
