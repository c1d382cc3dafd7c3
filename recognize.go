package viamboard

import (
	"fmt"
	"image"
	"time"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"
)

type recognizeOptions struct {
	tunables   Tunables
	classifier FieldClassifier
	logger     logging.Logger
}

// Option configures Recognize.
type Option func(*recognizeOptions)

// WithTunables replaces the default tunables. Zero fields keep their default.
func WithTunables(t Tunables) Option {
	return func(o *recognizeOptions) { o.tunables = t.withDefaults() }
}

// WithClassifier sets the classifier run on every field.
func WithClassifier(c FieldClassifier) Option {
	return func(o *recognizeOptions) { o.classifier = c }
}

// WithLogger sets the logger used by the pipeline and the resulting board.
func WithLogger(l logging.Logger) Option {
	return func(o *recognizeOptions) { o.logger = l }
}

// Recognize finds the chessboard in img and splits it into labeled fields.
// depth may be nil; when given, the part of it under the board is kept on
// the result.
func Recognize(img image.Image, depth *rimage.DepthMap, opts ...Option) (*Board, error) {
	o := recognizeOptions{tunables: DefaultTunables()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.classifier == nil {
		o.classifier = NewColorClassifier()
	}
	if o.logger == nil {
		o.logger = logging.NewLogger("viamboard")
	}
	if err := o.tunables.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	b, err := recognize(img, depth, o)
	observeRecognition(start, b, err)
	return b, err
}

func recognize(img image.Image, depth *rimage.DepthMap, o recognizeOptions) (*Board, error) {
	t, logger := o.tunables, o.logger

	n, err := normalize(img, t)
	if err != nil {
		return nil, err
	}
	logger.Debugf("normalized %v image to %dx%d", n.cameraSize, t.WorkingSize, t.WorkingSize)

	bd, err := extractBoundary(n, t)
	if err != nil {
		return nil, err
	}
	logger.Debugf("board edge: %v", bd.quad)

	rect, err := rectify(bd.masked, bd.quad, t)
	if err != nil {
		return nil, err
	}

	ls, err := extractLines(rect.image, t)
	if err != nil {
		return nil, err
	}
	logger.Debugf("lines: %d horizontal, %d vertical", len(ls.horizontal), len(ls.vertical))

	corners := resolveCorners(ls.horizontal, ls.vertical, t.WorkingSize, t.WorkingSize, t.DedupeRadius)
	if len(corners) == 0 {
		return nil, ErrNoCorners
	}
	logger.Debugf("corners: %d", len(corners))

	rows := groupRows(corners, t.RowTolerance)
	fields, skipped := buildFields(rows, logger)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %d corners in %d rows produced no field", ErrInconsistentGrid, len(corners), len(rows))
	}

	for i := range fields {
		fields[i].State = o.classifier.Classify(rect.image, fields[i].roi(t.ROIInset))
	}

	scaleX := float64(n.cameraSize.X) / float64(t.WorkingSize)
	scaleY := float64(n.cameraSize.Y) / float64(t.WorkingSize)
	backProject(fields, rect.inverse, scaleX, scaleY)

	b := newBoard(fields, t, o.classifier, logger)
	b.Skipped = skipped
	b.Edge = bd.quad
	b.CameraEdge = bd.quad.Scale(scaleX, scaleY)
	b.CameraSize = n.cameraSize
	b.ScaleX, b.ScaleY = scaleX, scaleY
	b.Transform = rect.forward
	b.Working = n.working
	b.Rectified = rect.image
	b.Lines = append(append([]Line{}, ls.horizontal...), ls.vertical...)
	b.Corners = corners

	if depth != nil {
		b.Depth = extractDepth(depth, b.CameraEdge, n.cameraSize.X, n.cameraSize.Y)
	}

	logger.Infof("recognized board with %d fields (%d skipped)", len(fields), len(skipped))
	return b, nil
}
