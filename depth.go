package viamboard

import (
	"go.viam.com/rdk/rimage"
)

// extractDepth copies the part of the depth map covered by the board quad
// into a new map of the same size. The quad is the camera space board edge;
// a depth map at another resolution than the camera gets the quad scaled
// (rounding up) by the depth/camera ratios.
func extractDepth(dm *rimage.DepthMap, cameraQuad Quad, cameraWidth, cameraHeight int) *rimage.DepthMap {
	w, h := dm.Width(), dm.Height()
	scaled := cameraQuad.Scale(float64(w)/float64(cameraWidth), float64(h)/float64(cameraHeight)).Ceil()
	mask := convexMask(w, h, scaled[:])

	out := rimage.NewEmptyDepthMap(w, h)
	for y := range h {
		for x := range w {
			if mask[y][x] {
				out.Set(x, y, dm.GetDepth(x, y))
			}
		}
	}
	return out
}
