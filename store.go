package viamboard

import (
	"encoding/json"
	"fmt"
	"image"
	"os"

	"go.viam.com/rdk/logging"
)

const descriptorVersion = 1

// BoardStore persists recognized boards.
type BoardStore interface {
	Save(b *Board, path string) error
	Load(path string) (*Board, error)
}

type boardDescriptor struct {
	Version    int               `json:"version"`
	Tunables   Tunables          `json:"tunables"`
	Fields     []Field           `json:"fields"`
	Skipped    []FieldDiagnostic `json:"skipped,omitempty"`
	Edge       Quad              `json:"edge"`
	CameraEdge Quad              `json:"camera_edge"`
	CameraSize image.Point       `json:"camera_size"`
	ScaleX     float64           `json:"scale_x"`
	ScaleY     float64           `json:"scale_y"`
	Transform  *Transform        `json:"transform"`
	Matrix     [][]FieldState    `json:"matrix"`
}

// FileStore keeps one JSON descriptor per board on disk.
type FileStore struct {
	Logger logging.Logger
	// Classifier is attached to loaded boards; defaults to a ColorClassifier.
	Classifier FieldClassifier
}

// NewFileStore returns a FileStore that logs to logger.
func NewFileStore(logger logging.Logger) *FileStore {
	return &FileStore{Logger: logger}
}

// Save implements BoardStore.
func (fs *FileStore) Save(b *Board, path string) error {
	d := boardDescriptor{
		Version:    descriptorVersion,
		Tunables:   b.tunables,
		Fields:     b.Fields,
		Skipped:    b.Skipped,
		Edge:       b.Edge,
		CameraEdge: b.CameraEdge,
		CameraSize: b.CameraSize,
		ScaleX:     b.ScaleX,
		ScaleY:     b.ScaleY,
		Transform:  b.Transform,
		Matrix:     b.CurrentMatrix(),
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write board descriptor: %w", err)
	}
	fs.logger().Infof("saved board with %d fields to %s", len(b.Fields), path)
	return nil
}

// Load implements BoardStore.
func (fs *FileStore) Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read board descriptor: %w", err)
	}
	var d boardDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("bad board descriptor %s: %w", path, err)
	}
	if d.Version != descriptorVersion {
		return nil, fmt.Errorf("board descriptor %s has version %d, want %d", path, d.Version, descriptorVersion)
	}
	if d.Transform == nil || len(d.Fields) == 0 {
		return nil, fmt.Errorf("board descriptor %s: %w", path, ErrInconsistentGrid)
	}

	classifier := fs.Classifier
	if classifier == nil {
		classifier = NewColorClassifier()
	}
	b := newBoard(d.Fields, d.Tunables.withDefaults(), classifier, fs.logger())
	b.Skipped = d.Skipped
	b.Edge = d.Edge
	b.CameraEdge = d.CameraEdge
	b.CameraSize = d.CameraSize
	b.ScaleX, b.ScaleY = d.ScaleX, d.ScaleY
	b.Transform = d.Transform
	if len(d.Matrix) == b.Rows {
		b.setMatrix(d.Matrix)
	}
	fs.logger().Debugf("loaded board with %d fields from %s", len(b.Fields), path)
	return b, nil
}

func (fs *FileStore) logger() logging.Logger {
	if fs.Logger == nil {
		fs.Logger = logging.NewLogger("viamboard-store")
	}
	return fs.Logger
}
