package viamboard

import (
	"image"
)

// resolveCorners intersects every horizontal with every vertical line, keeps
// intersections inside the width x height plane and drops any point closer
// than radius to one already kept. Discovery order is horizontal-major, so
// the first seen point of a cluster wins.
func resolveCorners(horizontal, vertical []Line, width, height int, radius float64) []image.Point {
	var corners []image.Point
	for _, h := range horizontal {
		for _, v := range vertical {
			p, ok := h.Intersect(v)
			if !ok {
				continue
			}
			if p.X < 0 || p.X > width || p.Y < 0 || p.Y > height {
				continue
			}
			corners = append(corners, p)
		}
	}
	return dedupeCorners(corners, radius)
}

func dedupeCorners(corners []image.Point, radius float64) []image.Point {
	var kept []image.Point
	for _, c := range corners {
		dup := false
		for _, k := range kept {
			if pointFrom(c).Dist(pointFrom(k)) < radius {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}
