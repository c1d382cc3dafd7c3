package viamboard

import (
	"image"
)

type rectified struct {
	image   *image.NRGBA
	forward *Transform
	inverse *Transform
}

// rectify warps the masked working image so the board quad (moved outward by
// the configured edge offset) fills the whole working square.
func rectify(masked *image.NRGBA, q Quad, t Tunables) (*rectified, error) {
	fwd, err := NewTransform(q.Offset(t.EdgeOffset), t.WorkingSize, t.WorkingSize)
	if err != nil {
		return nil, err
	}
	b := masked.Bounds()
	inv, err := fwd.Inverse(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	return &rectified{
		image:   warpInverse(masked, inv, fwd.Width, fwd.Height),
		forward: fwd,
		inverse: inv,
	}, nil
}
