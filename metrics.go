package viamboard

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recognitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viamboard_recognitions_total",
			Help: "Board recognitions by result",
		},
		[]string{"result"},
	)

	recognitionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "viamboard_recognition_duration_seconds",
			Help:    "Time spent recognizing a board",
			Buckets: prometheus.DefBuckets,
		},
	)

	fieldsRecognized = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "viamboard_fields_recognized",
			Help:    "Fields built per successful recognition",
			Buckets: []float64{1, 4, 16, 36, 49, 64, 81, 100},
		},
	)
)

func observeRecognition(start time.Time, b *Board, err error) {
	recognitionDuration.Observe(time.Since(start).Seconds())
	recognitionsTotal.WithLabelValues(resultLabel(err)).Inc()
	if b != nil {
		fieldsRecognized.Observe(float64(len(b.Fields)))
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidImage):
		return "invalid_image"
	case errors.Is(err, ErrDegenerateQuad):
		return "degenerate_quad"
	case errors.Is(err, ErrNoLines):
		return "no_lines"
	case errors.Is(err, ErrNoCorners):
		return "no_corners"
	case errors.Is(err, ErrBoardNotFound):
		return "not_found"
	case errors.Is(err, ErrInconsistentGrid):
		return "inconsistent_grid"
	default:
		return "error"
	}
}
