package viamboard

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func TestDedupeCorners(t *testing.T) {
	kept := dedupeCorners([]image.Point{{100, 100}, {108, 100}}, 15)
	test.That(t, kept, test.ShouldResemble, []image.Point{{100, 100}})

	kept = dedupeCorners([]image.Point{{100, 100}, {120, 100}}, 15)
	test.That(t, len(kept), test.ShouldEqual, 2)

	// exactly the radius apart is kept
	kept = dedupeCorners([]image.Point{{100, 100}, {115, 100}}, 15)
	test.That(t, len(kept), test.ShouldEqual, 2)

	// first seen wins, and later points compare against every kept one
	kept = dedupeCorners([]image.Point{{50, 50}, {100, 100}, {55, 52}, {98, 103}, {200, 10}}, 15)
	test.That(t, kept, test.ShouldResemble, []image.Point{{50, 50}, {100, 100}, {200, 10}})
}

func TestResolveCornersBounds(t *testing.T) {
	horizontal := []Line{
		{-1000, 10, 1000, 10},
		{-1000, 500, 1000, 500}, // below the plane
	}
	vertical := []Line{
		{20, -1000, 20, 1000},
		{-30, -1000, -30, 1000}, // left of the plane
		{400, -1000, 400, 1000}, // on the far edge, still inside
	}
	corners := resolveCorners(horizontal, vertical, 400, 400, 15)
	test.That(t, corners, test.ShouldResemble, []image.Point{{20, 10}, {400, 10}})
}

func TestResolveCornersOrder(t *testing.T) {
	// two nearly identical vertical lines; the first one listed wins
	horizontal := []Line{{-1000, 100, 1000, 100}}
	vertical := []Line{{200, -1000, 200, 1000}, {203, -1000, 203, 1000}}
	test.That(t, resolveCorners(horizontal, vertical, 400, 400, 15), test.ShouldResemble, []image.Point{{200, 100}})
}
