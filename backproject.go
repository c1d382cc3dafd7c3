package viamboard

import (
	"image"
)

// backProject maps every field's rectified corners into camera image
// coordinates: through the inverse transform into the working image, then
// by the camera/working scale factors.
func backProject(fields []Field, inv *Transform, scaleX, scaleY float64) {
	for i := range fields {
		for j, c := range fields[i].Corners {
			fields[i].Camera[j] = inv.Apply(pointFrom(c)).Scale(scaleX, scaleY)
		}
	}
}

// unwarp renders the rectified image back onto the working image plane.
func unwarp(rect image.Image, fwd *Transform, width, height int) *image.NRGBA {
	return warpInverse(rect, fwd, width, height)
}
