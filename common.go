package viamboard

import (
	"context"
	"image"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"

	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage"
	"go.viam.com/utils/trace"
)

var family = resource.ModelNamespace("erh").WithFamily("viam-board")

func init() {
	exporter, err := otlptracegrpc.New(context.Background())
	if err == nil {
		trace.AddExporters(exporter)
	}
}

// recognizeTraced runs Recognize inside its own span.
func recognizeTraced(ctx context.Context, img image.Image, dm *rimage.DepthMap, opts ...Option) (*Board, error) {
	_, span := trace.StartSpan(ctx, "viamboard::Recognize")
	defer span.End()
	return Recognize(img, dm, opts...)
}
