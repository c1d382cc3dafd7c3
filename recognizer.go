package viamboard

import (
	"context"
	"fmt"
	"image"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"
)

// ObjectRecognizer answers board questions from a previously saved board
// descriptor.
type ObjectRecognizer struct {
	path   string
	store  BoardStore
	board  *Board
	logger logging.Logger
}

// NewObjectRecognizer loads the board descriptor at path.
func NewObjectRecognizer(path string, store BoardStore, logger logging.Logger) (*ObjectRecognizer, error) {
	logger.Infof("initializing object recognition from %s", path)
	b, err := store.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Infof("object recognition initialized with %d fields", len(b.Fields))
	return &ObjectRecognizer{path: path, store: store, board: b, logger: logger}, nil
}

// Start implements the lifecycle host contract.
func (r *ObjectRecognizer) Start(ctx context.Context) error {
	r.logger.Infof("object recognition started (%d fields)", len(r.board.Fields))
	return nil
}

// Stop implements the lifecycle host contract.
func (r *ObjectRecognizer) Stop(ctx context.Context) error {
	r.logger.Infof("object recognition stopped")
	return nil
}

// DetermineChanges compares two frames and returns the new state matrix.
func (r *ObjectRecognizer) DetermineChanges(prev, cur image.Image) ([][]FieldState, error) {
	if _, err := r.board.DetermineChanges(prev, cur); err != nil {
		return nil, err
	}
	return r.board.CurrentMatrix(), nil
}

// PieceInfo measures a field against a depth map; nil for unknown labels.
func (r *ObjectRecognizer) PieceInfo(label string, dm *rimage.DepthMap) (*ChessPiece, error) {
	return r.board.PieceInfo(label, dm)
}

// Fields returns the fields of the loaded board.
func (r *ObjectRecognizer) Fields() []Field {
	return r.board.Fields
}

// CurrentMatrix returns the latest state matrix.
func (r *ObjectRecognizer) CurrentMatrix() [][]FieldState {
	return r.board.CurrentMatrix()
}

// Board exposes the loaded board.
func (r *ObjectRecognizer) Board() *Board {
	return r.board
}

// CreateBoardData recognizes a board and saves its descriptor to path.
func CreateBoardData(img image.Image, depth *rimage.DepthMap, path string, store BoardStore, opts ...Option) (*Board, error) {
	b, err := Recognize(img, depth, opts...)
	if err != nil {
		return nil, err
	}
	if err := store.Save(b, path); err != nil {
		return nil, fmt.Errorf("board recognized but not saved: %w", err)
	}
	return b, nil
}
