package viamboard

import (
	"context"
	"fmt"
	"sync"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/spatialmath"
	"go.viam.com/utils/trace"
)

var BoardCameraModel = family.WithModel("board-camera")

func init() {
	resource.RegisterComponent(camera.API, BoardCameraModel,
		resource.Registration[camera.Camera, *BoardCameraConfig]{
			Constructor: newBoardCamera,
		},
	)
}

type BoardCameraConfig struct {
	Input string `json:"input"`
	// BoardPath pins the overlay to a saved board instead of recognizing
	// every frame.
	BoardPath string   `json:"board-path,omitempty"`
	Rectified bool     `json:"rectified,omitempty"`
	Tunables  Tunables `json:"tunables,omitempty"`
}

func (cfg *BoardCameraConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Input == "" {
		return nil, nil, fmt.Errorf("need an input")
	}
	t := cfg.Tunables.withDefaults()
	if err := t.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s.tunables: %w", path, err)
	}
	return []string{cfg.Input}, nil, nil
}

func newBoardCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*BoardCameraConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewBoardCamera(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewBoardCamera(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *BoardCameraConfig, logger logging.Logger) (camera.Camera, error) {
	var err error

	bc := &BoardCamera{
		name:   name,
		conf:   conf,
		logger: logger,
	}

	bc.input, err = camera.FromProvider(deps, conf.Input)
	if err != nil {
		return nil, err
	}

	if conf.BoardPath != "" {
		bc.pinned, err = NewFileStore(logger).Load(conf.BoardPath)
		if err != nil {
			return nil, err
		}
	}

	return bc, nil
}

type BoardCamera struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	conf   *BoardCameraConfig
	logger logging.Logger

	input  camera.Camera
	pinned *Board

	mu   sync.Mutex
	last *Board
}

func (bc *BoardCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	return camera.GetImageFromGetImages(ctx, nil, bc, extra, nil)
}

func (bc *BoardCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	ctx, span := trace.StartSpan(ctx, "viamboard::BoardCamera::Images")
	defer span.End()

	ni, rm, err := bc.input.Images(ctx, nil, extra)
	if err != nil {
		return nil, rm, err
	}

	if len(ni) == 0 {
		return nil, rm, fmt.Errorf("no images returned from input camera")
	}

	srcImg, err := ni[0].Image(ctx)
	if err != nil {
		return nil, rm, err
	}

	b := bc.pinned
	if b == nil {
		b, err = recognizeTraced(ctx, srcImg, nil, WithTunables(bc.conf.Tunables), WithLogger(bc.logger))
		if err != nil {
			return nil, rm, err
		}
		bc.mu.Lock()
		bc.last = b
		bc.mu.Unlock()
	}

	dst := DrawFields(srcImg, b)
	if bc.conf.Rectified && b.Rectified != nil {
		dst = DrawRectified(b)
	}

	result, err := camera.NamedImageFromImage(dst, ni[0].SourceName, "", data.Annotations{})
	if err != nil {
		return nil, rm, err
	}
	return []camera.NamedImage{result}, rm, nil
}

func (bc *BoardCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	bc.mu.Lock()
	b := bc.last
	bc.mu.Unlock()
	if b == nil {
		b = bc.pinned
	}
	if b == nil {
		return nil, fmt.Errorf("no board seen yet")
	}
	return map[string]interface{}{
		"fields":     len(b.Fields),
		"consistent": b.Consistent(),
	}, nil
}

func (bc *BoardCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	return nil, fmt.Errorf("NextPointCloud not supported")
}

func (bc *BoardCamera) Properties(ctx context.Context) (camera.Properties, error) {
	return camera.Properties{}, nil
}

func (bc *BoardCamera) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}

func (bc *BoardCamera) Name() resource.Name {
	return bc.name
}
