package viamboard

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage"
	generic "go.viam.com/rdk/services/generic"
	"go.viam.com/utils/trace"
)

var RecognizerModel = family.WithModel("board-recognizer")

func init() {
	resource.RegisterService(generic.API, RecognizerModel,
		resource.Registration[resource.Resource, *RecognizerConfig]{
			Constructor: newBoardRecognizer,
		},
	)
}

type RecognizerConfig struct {
	Camera      string   `json:"camera"`
	DepthCamera string   `json:"depth-camera,omitempty"`
	BoardPath   string   `json:"board-path,omitempty"`
	Tunables    Tunables `json:"tunables,omitempty"`
}

func (cfg *RecognizerConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Camera == "" {
		return nil, nil, fmt.Errorf("need a camera")
	}
	t := cfg.Tunables.withDefaults()
	if err := t.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s.tunables: %w", path, err)
	}
	deps := []string{cfg.Camera}
	if cfg.DepthCamera != "" {
		deps = append(deps, cfg.DepthCamera)
	}
	return deps, nil, nil
}

type boardRecognizer struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	conf   *RecognizerConfig
	logger logging.Logger

	cam   camera.Camera
	depth camera.Camera
	store BoardStore

	mu        sync.Mutex
	board     *Board
	lastFrame image.Image
}

func newBoardRecognizer(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (resource.Resource, error) {
	conf, err := resource.NativeConfig[*RecognizerConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewBoardRecognizer(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewBoardRecognizer(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *RecognizerConfig, logger logging.Logger) (resource.Resource, error) {
	var err error

	s := &boardRecognizer{
		name:   name,
		conf:   conf,
		logger: logger,
		store:  NewFileStore(logger),
	}

	s.cam, err = camera.FromProvider(deps, conf.Camera)
	if err != nil {
		return nil, err
	}

	if conf.DepthCamera != "" {
		s.depth, err = camera.FromProvider(deps, conf.DepthCamera)
		if err != nil {
			return nil, err
		}
	}

	if conf.BoardPath != "" {
		if _, statErr := os.Stat(conf.BoardPath); statErr == nil {
			r, err := NewObjectRecognizer(conf.BoardPath, s.store, logger)
			if err != nil {
				return nil, err
			}
			if err := r.Start(ctx); err != nil {
				return nil, err
			}
			s.board = r.Board()
		} else {
			logger.Infof("no board descriptor at %s yet, run the recognize command", conf.BoardPath)
		}
	}

	return s, nil
}

func (s *boardRecognizer) Name() resource.Name {
	return s.name
}

type recognizerCmd struct {
	Recognize bool
	Save      string
	Field     string
	Piece     string
	Changes   bool
}

func (s *boardRecognizer) DoCommand(ctx context.Context, cmdMap map[string]interface{}) (map[string]interface{}, error) {
	var cmd recognizerCmd
	err := mapstructure.Decode(cmdMap, &cmd)
	if err != nil {
		return nil, err
	}

	switch {
	case cmd.Recognize:
		return s.recognize(ctx)
	case cmd.Save != "":
		return s.save(cmd.Save)
	case cmd.Field != "":
		return s.field(cmd.Field)
	case cmd.Piece != "":
		return s.piece(ctx, cmd.Piece)
	case cmd.Changes:
		return s.changes(ctx)
	}

	return nil, fmt.Errorf("bad cmd %v", cmdMap)
}

func (s *boardRecognizer) recognize(ctx context.Context) (map[string]interface{}, error) {
	ctx, span := trace.StartSpan(ctx, "viamboard::recognize")
	defer span.End()

	img, err := s.frame(ctx)
	if err != nil {
		return nil, err
	}
	var dm *rimage.DepthMap
	if s.depth != nil {
		dm, err = s.depthMap(ctx)
		if err != nil {
			return nil, err
		}
	}

	b, err := recognizeTraced(ctx, img, dm, WithTunables(s.conf.Tunables), WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.board = b
	s.lastFrame = img
	s.mu.Unlock()

	if s.conf.BoardPath != "" {
		if err := s.store.Save(b, s.conf.BoardPath); err != nil {
			return nil, err
		}
	}

	return map[string]interface{}{
		"fields":     len(b.Fields),
		"skipped":    len(b.Skipped),
		"consistent": b.Consistent(),
		"labels":     lo.ToAnySlice(b.Labels()),
		"matrix":     matrixToAny(b.CurrentMatrix()),
	}, nil
}

func (s *boardRecognizer) save(path string) (map[string]interface{}, error) {
	b, err := s.currentBoard()
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(b, path); err != nil {
		return nil, err
	}
	return map[string]interface{}{"saved": path}, nil
}

func (s *boardRecognizer) field(label string) (map[string]interface{}, error) {
	b, err := s.currentBoard()
	if err != nil {
		return nil, err
	}
	f, ok := b.Field(label)
	if !ok {
		return nil, fmt.Errorf("no field %q", label)
	}
	return map[string]interface{}{
		"label":   f.Label,
		"row":     f.Row,
		"col":     f.Col,
		"state":   b.CurrentMatrix()[f.Row][f.Col].String(),
		"contour": pointsToAny(f.CameraContour()),
	}, nil
}

func (s *boardRecognizer) piece(ctx context.Context, label string) (map[string]interface{}, error) {
	b, err := s.currentBoard()
	if err != nil {
		return nil, err
	}
	if s.depth == nil {
		return nil, ErrNoDepthData
	}
	dm, err := s.depthMap(ctx)
	if err != nil {
		return nil, err
	}
	p, err := b.PieceInfo(label, dm)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("no field %q", label)
	}
	return map[string]interface{}{
		"label":   p.Label,
		"zenith":  p.Zenith,
		"contour": pointsToAny(p.Contour),
	}, nil
}

func (s *boardRecognizer) changes(ctx context.Context) (map[string]interface{}, error) {
	ctx, span := trace.StartSpan(ctx, "viamboard::changes")
	defer span.End()

	b, err := s.currentBoard()
	if err != nil {
		return nil, err
	}
	cur, err := s.frame(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	prev := s.lastFrame
	s.lastFrame = cur
	s.mu.Unlock()
	if prev == nil {
		prev = cur
	}

	ch, err := b.DetermineChanges(prev, cur)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{
		"changed": lo.ToAnySlice(ch.Changed),
		"matrix":  matrixToAny(ch.Matrix),
	}
	if ch.Move != nil {
		out["move"] = ch.Move.String()
	}
	return out, nil
}

func (s *boardRecognizer) currentBoard() (*Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return nil, errors.New("no board recognized yet")
	}
	return s.board, nil
}

func (s *boardRecognizer) frame(ctx context.Context) (image.Image, error) {
	return firstImage(ctx, s.cam)
}

func (s *boardRecognizer) depthMap(ctx context.Context) (*rimage.DepthMap, error) {
	img, err := firstImage(ctx, s.depth)
	if err != nil {
		return nil, err
	}
	return rimage.ConvertImageToDepthMap(ctx, img)
}

func firstImage(ctx context.Context, cam camera.Camera) (image.Image, error) {
	ni, _, err := cam.Images(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(ni) == 0 {
		return nil, fmt.Errorf("no images returned from camera")
	}
	return ni[0].Image(ctx)
}

func matrixToAny(m [][]FieldState) []interface{} {
	return lo.Map(m, func(row []FieldState, _ int) interface{} {
		return lo.Map(row, func(s FieldState, _ int) interface{} { return s.String() })
	})
}

func pointsToAny(pts []Point) []interface{} {
	return lo.Map(pts, func(p Point, _ int) interface{} {
		return map[string]interface{}{"x": p.X, "y": p.Y}
	})
}
