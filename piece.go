package viamboard

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/erh/vmodutils/touch"
	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/rimage"
)

const (
	// zenithSamples is how many of the highest and lowest samples are averaged.
	zenithSamples = 10
	// pieceHeightBand bounds how far, in depth units, a sample may sit from
	// the field's median depth. Tall pieces stay well inside it.
	pieceHeightBand = 150
)

// ChessPiece is what is known about the contents of one field.
type ChessPiece struct {
	Label   string  `json:"label"`
	Contour []Point `json:"contour"`
	// Zenith is the depth spread inside the field: mean of the deepest
	// samples minus mean of the shallowest ones, in depth map units.
	Zenith float64 `json:"zenith"`
}

// PieceInfo measures the field with the given label against a depth map.
// An unknown label returns nil without error.
func (b *Board) PieceInfo(label string, dm *rimage.DepthMap) (*ChessPiece, error) {
	f, ok := b.Field(label)
	if !ok {
		return nil, nil
	}
	if dm == nil {
		return nil, ErrNoDepthData
	}

	zenith, err := fieldZenith(f.CameraContour(), dm, b.CameraSize.X, b.CameraSize.Y)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", label, err)
	}
	return &ChessPiece{Label: f.Label, Contour: f.CameraContour(), Zenith: zenith}, nil
}

// fieldZenith reduces the depth samples under a camera space contour to the
// spread between the top and bottom samples. The depth map becomes a point
// cloud that is cropped to the contour's box, then to a band of
// pieceHeightBand around the field's median depth, so holes, glare and
// anything hovering above the board do not count.
func fieldZenith(contour []Point, dm *rimage.DepthMap, cameraWidth, cameraHeight int) (float64, error) {
	w, h := dm.Width(), dm.Height()
	sx := float64(w) / float64(cameraWidth)
	sy := float64(h) / float64(cameraHeight)

	scaled := make([]Point, len(contour))
	for i, p := range contour {
		scaled[i] = p.Scale(sx, sy)
	}
	box := boundingBox(scaled).Intersect(image.Rect(0, 0, w, h))
	if box.Empty() {
		return 0, ErrNoDepthData
	}

	pc, err := depthCloud(dm)
	if err != nil {
		return 0, err
	}

	lo := r3.Vector{X: float64(box.Min.X), Y: float64(box.Min.Y), Z: 1}
	hi := r3.Vector{X: float64(box.Max.X - 1), Y: float64(box.Max.Y - 1), Z: math.MaxUint16}
	field := touch.PCCrop(pc, lo, hi)
	if field.Size() == 0 {
		return 0, ErrNoDepthData
	}

	surface, err := stats.Median(cloudDepths(field, nil))
	if err != nil {
		return 0, err
	}
	lo.Z = surface - pieceHeightBand
	hi.Z = surface + pieceHeightBand

	mask := convexMask(w, h, scaled)
	depths := cloudDepths(touch.PCCrop(field, lo, hi), func(p r3.Vector) bool {
		return mask[int(p.Y)][int(p.X)]
	})
	if len(depths) == 0 {
		return 0, ErrNoDepthData
	}
	sort.Float64s(depths)

	n := min(zenithSamples, len(depths))
	low, err := stats.Mean(depths[:n])
	if err != nil {
		return 0, err
	}
	high, err := stats.Mean(depths[len(depths)-n:])
	if err != nil {
		return 0, err
	}
	return high - low, nil
}

// depthCloud turns the non-zero samples of a depth map into points with the
// pixel position as X/Y and the depth as Z.
func depthCloud(dm *rimage.DepthMap) (pointcloud.PointCloud, error) {
	pc := pointcloud.NewBasicEmpty()
	for y := range dm.Height() {
		for x := range dm.Width() {
			z := dm.GetDepth(x, y)
			if z == 0 {
				continue
			}
			if err := pc.Set(r3.Vector{X: float64(x), Y: float64(y), Z: float64(z)}, nil); err != nil {
				return nil, err
			}
		}
	}
	return pc, nil
}

func cloudDepths(pc pointcloud.PointCloud, keep func(r3.Vector) bool) []float64 {
	depths := make([]float64, 0, pc.Size())
	pc.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		if keep == nil || keep(p) {
			depths = append(depths, p.Z)
		}
		return true
	})
	return depths
}
