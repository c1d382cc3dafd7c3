package viamboard

import (
	"image"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"
)

// Board is a recognized chessboard: its fields, the transform that rectifies
// it and the state matrix kept up to date by DetermineChanges.
type Board struct {
	Fields  []Field
	Skipped []FieldDiagnostic
	Rows    int
	Cols    int

	// Edge is the board quad in working image coordinates, CameraEdge the
	// same quad in camera coordinates.
	Edge       Quad
	CameraEdge Quad
	CameraSize image.Point
	ScaleX     float64
	ScaleY     float64
	Transform  *Transform

	Working   *image.NRGBA
	Rectified *image.NRGBA
	Depth     *rimage.DepthMap

	// debug products of the line and corner stages
	Lines   []Line
	Corners []image.Point

	tunables   Tunables
	classifier FieldClassifier
	logger     logging.Logger
	index      map[string]int

	mu     sync.Mutex
	matrix [][]FieldState
}

func newBoard(fields []Field, t Tunables, classifier FieldClassifier, logger logging.Logger) *Board {
	b := &Board{Fields: fields, tunables: t, classifier: classifier, logger: logger}
	b.reindex()
	return b
}

func (b *Board) reindex() {
	b.index = make(map[string]int, len(b.Fields))
	for i, f := range b.Fields {
		b.index[f.Label] = i
		b.Rows = max(b.Rows, f.Row+1)
		b.Cols = max(b.Cols, f.Col+1)
	}
	b.matrix = make([][]FieldState, b.Rows)
	for r := range b.matrix {
		b.matrix[r] = make([]FieldState, b.Cols)
	}
	for _, f := range b.Fields {
		b.matrix[f.Row][f.Col] = f.State
	}
}

// Field looks a field up by label.
func (b *Board) Field(label string) (Field, bool) {
	i, ok := b.index[label]
	if !ok {
		return Field{}, false
	}
	return b.Fields[i], true
}

// Unwarped renders the rectified board back onto the working image plane,
// which shows how much of the working image the rectification kept. Nil for
// a board without a rectified image, such as one loaded from a descriptor.
func (b *Board) Unwarped() *image.NRGBA {
	if b.Rectified == nil || b.Transform == nil {
		return nil
	}
	return unwarp(b.Rectified, b.Transform, b.tunables.WorkingSize, b.tunables.WorkingSize)
}

// Labels returns every field label, sorted.
func (b *Board) Labels() []string {
	labels := make([]string, 0, len(b.Fields))
	for _, f := range b.Fields {
		labels = append(labels, f.Label)
	}
	sort.Strings(labels)
	return labels
}

// Consistent reports whether every grid cell became a field.
func (b *Board) Consistent() bool {
	return len(b.Skipped) == 0 && len(b.Fields) == b.Rows*b.Cols
}

// GridErr combines the reasons of every skipped cell, nil if none.
func (b *Board) GridErr() error {
	var err error
	for _, d := range b.Skipped {
		err = multierr.Append(err, d)
	}
	return err
}

// CurrentMatrix returns a copy of the latest field states indexed by grid
// row and column.
func (b *Board) CurrentMatrix() [][]FieldState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyMatrix(b.matrix)
}

func (b *Board) setMatrix(m [][]FieldState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matrix = copyMatrix(m)
}

func copyMatrix(m [][]FieldState) [][]FieldState {
	out := make([][]FieldState, len(m))
	for i, r := range m {
		out[i] = append([]FieldState{}, r...)
	}
	return out
}

// Logger returns the board's logger.
func (b *Board) Logger() logging.Logger {
	return b.logger
}
