package viamboard

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Tunables are the process-wide knobs of the recognition pipeline. The pixel
// valued ones (radii, tolerances, offsets) are absolute and tied to
// WorkingSize; changing the working size does not rescale them.
type Tunables struct {
	WorkingSize int `json:"working_size" mapstructure:"working_size"`

	// SharpenAmount and ThresholdC are pointers because zero is a real
	// setting for both (no sharpening, no offset); nil means the default.
	SharpenSigma     float64  `json:"sharpen_sigma" mapstructure:"sharpen_sigma"`
	SharpenAmount    *float64 `json:"sharpen_amount" mapstructure:"sharpen_amount"`
	SharpenThreshold float64  `json:"sharpen_threshold" mapstructure:"sharpen_threshold"`

	ThresholdBlockSize int      `json:"threshold_block_size" mapstructure:"threshold_block_size"`
	ThresholdC         *float64 `json:"threshold_c" mapstructure:"threshold_c"`

	ApproxEpsilon float64 `json:"approx_epsilon" mapstructure:"approx_epsilon"`
	EdgeOffset    float64 `json:"edge_offset" mapstructure:"edge_offset"`

	CannyLow  float64 `json:"canny_low" mapstructure:"canny_low"`
	CannyHigh float64 `json:"canny_high" mapstructure:"canny_high"`

	HoughThetaStep float64 `json:"hough_theta_step" mapstructure:"hough_theta_step"`
	HoughVotes     int     `json:"hough_votes" mapstructure:"hough_votes"`
	SegmentReach   float64 `json:"segment_reach" mapstructure:"segment_reach"`

	DedupeRadius float64 `json:"dedupe_radius" mapstructure:"dedupe_radius"`
	RowTolerance float64 `json:"row_tolerance" mapstructure:"row_tolerance"`

	// ROIInset is the fraction of a field's bounding box trimmed from every
	// side to get the region handed to the classifier.
	ROIInset float64 `json:"roi_inset" mapstructure:"roi_inset"`
}

// DefaultTunables returns the values the pipeline was tuned with.
func DefaultTunables() Tunables {
	return Tunables{
		WorkingSize:        400,
		SharpenSigma:       1.0,
		SharpenAmount:      lo.ToPtr(5.0),
		SharpenThreshold:   0,
		ThresholdBlockSize: 125,
		ThresholdC:         lo.ToPtr(1.0),
		ApproxEpsilon:      0.05,
		EdgeOffset:         0,
		CannyLow:           70,
		CannyHigh:          150,
		HoughThetaStep:     math.Pi / 360,
		HoughVotes:         70,
		SegmentReach:       1000,
		DedupeRadius:       15,
		RowTolerance:       10,
		ROIInset:           0.2,
	}
}

// Validate checks that the tunables describe a runnable pipeline.
func (t *Tunables) Validate() error {
	if t.WorkingSize < 16 {
		return fmt.Errorf("working_size too small: %d", t.WorkingSize)
	}
	if t.ThresholdBlockSize < 3 || t.ThresholdBlockSize%2 == 0 {
		return fmt.Errorf("threshold_block_size must be odd and >= 3, got %d", t.ThresholdBlockSize)
	}
	if t.ApproxEpsilon <= 0 || t.ApproxEpsilon >= 1 {
		return fmt.Errorf("approx_epsilon must be in (0, 1), got %v", t.ApproxEpsilon)
	}
	if t.CannyLow <= 0 || t.CannyHigh < t.CannyLow {
		return fmt.Errorf("bad canny thresholds %v/%v", t.CannyLow, t.CannyHigh)
	}
	if t.HoughThetaStep <= 0 || t.HoughThetaStep > math.Pi/4 {
		return fmt.Errorf("bad hough_theta_step %v", t.HoughThetaStep)
	}
	if t.HoughVotes <= 0 {
		return fmt.Errorf("hough_votes must be positive, got %d", t.HoughVotes)
	}
	if t.DedupeRadius < 0 || t.RowTolerance <= 0 {
		return fmt.Errorf("bad dedupe_radius/row_tolerance %v/%v", t.DedupeRadius, t.RowTolerance)
	}
	if t.ROIInset < 0 || t.ROIInset >= 0.5 {
		return fmt.Errorf("roi_inset must be in [0, 0.5), got %v", t.ROIInset)
	}
	return nil
}

// withDefaults fills zero values (nil for the pointer fields) from
// DefaultTunables, so partially specified configs behave.
func (t Tunables) withDefaults() Tunables {
	d := DefaultTunables()
	if t.WorkingSize == 0 {
		t.WorkingSize = d.WorkingSize
	}
	if t.SharpenSigma == 0 {
		t.SharpenSigma = d.SharpenSigma
	}
	if t.SharpenAmount == nil {
		t.SharpenAmount = d.SharpenAmount
	}
	if t.ThresholdBlockSize == 0 {
		t.ThresholdBlockSize = d.ThresholdBlockSize
	}
	if t.ThresholdC == nil {
		t.ThresholdC = d.ThresholdC
	}
	if t.ApproxEpsilon == 0 {
		t.ApproxEpsilon = d.ApproxEpsilon
	}
	if t.CannyLow == 0 {
		t.CannyLow = d.CannyLow
	}
	if t.CannyHigh == 0 {
		t.CannyHigh = d.CannyHigh
	}
	if t.HoughThetaStep == 0 {
		t.HoughThetaStep = d.HoughThetaStep
	}
	if t.HoughVotes == 0 {
		t.HoughVotes = d.HoughVotes
	}
	if t.SegmentReach == 0 {
		t.SegmentReach = d.SegmentReach
	}
	if t.DedupeRadius == 0 {
		t.DedupeRadius = d.DedupeRadius
	}
	if t.RowTolerance == 0 {
		t.RowTolerance = d.RowTolerance
	}
	if t.ROIInset == 0 {
		t.ROIInset = d.ROIInset
	}
	return t
}

func (t *Tunables) sharpenAmount() float64 {
	return lo.FromPtrOr(t.SharpenAmount, *DefaultTunables().SharpenAmount)
}

func (t *Tunables) thresholdC() float64 {
	return lo.FromPtrOr(t.ThresholdC, *DefaultTunables().ThresholdC)
}
