package viamboard

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	edgeColor   = color.RGBA{0, 255, 0, 255}
	fieldColor  = color.RGBA{255, 0, 0, 255}
	cornerColor = color.RGBA{0, 0, 255, 255}
	lineColor   = color.RGBA{255, 255, 0, 255}
)

// DrawFields overlays the board edge and every field (label and state) on a
// camera image.
func DrawFields(img image.Image, b *Board) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(2)

	dc.SetColor(edgeColor)
	tracePolygon(dc, b.CameraEdge[:])
	dc.Stroke()

	states := b.CurrentMatrix()
	dc.SetFontFace(basicfont.Face7x13)
	for _, f := range b.Fields {
		dc.SetColor(fieldColor)
		tracePolygon(dc, f.CameraContour())
		dc.Stroke()

		text := f.Label
		if s := states[f.Row][f.Col]; s.Occupied() {
			text += "-" + s.String()[:1]
		}
		c := f.Center()
		dc.DrawStringAnchored(text, c.X, c.Y, 0.5, 0.5)
	}
	return dc.Image()
}

// DrawRectified renders the rectified board with the detected lines, corners
// and the classifier regions of every field.
func DrawRectified(b *Board) image.Image {
	if b.Rectified == nil {
		return nil
	}
	dc := gg.NewContextForImage(b.Rectified)

	dc.SetColor(lineColor)
	dc.SetLineWidth(1)
	for _, l := range b.Lines {
		dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()
	}

	dc.SetColor(cornerColor)
	for _, c := range b.Corners {
		dc.DrawCircle(float64(c.X), float64(c.Y), 3)
		dc.Fill()
	}

	dc.SetColor(fieldColor)
	for _, f := range b.Fields {
		roi := f.roi(b.tunables.ROIInset)
		dc.DrawRectangle(float64(roi.Min.X), float64(roi.Min.Y), float64(roi.Dx()), float64(roi.Dy()))
		dc.Stroke()
	}

	out := image.NewRGBA(dc.Image().Bounds())
	draw.Draw(out, out.Bounds(), dc.Image(), out.Bounds().Min, draw.Src)
	for _, f := range b.Fields {
		c := f.Corners[0]
		drawString(out, c.X+3, c.Y+13, f.Label, fieldColor)
	}
	return out
}

func tracePolygon(dc *gg.Context, pts []Point) {
	for i, p := range pts {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
		} else {
			dc.LineTo(p.X, p.Y)
		}
	}
	dc.ClosePath()
}

func drawString(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}
