package viamboard

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// normalized holds every intermediate product of the normalizer that later
// stages need.
type normalized struct {
	cameraSize image.Point
	working    *image.NRGBA // sharpened and resized
	gray       [][]int
	binary     [][]bool
}

func normalize(img image.Image, t Tunables) (*normalized, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrInvalidImage
	}

	sharpened := unsharpMask(img, t.SharpenSigma, t.sharpenAmount(), t.SharpenThreshold)
	working := resizeToWorking(sharpened, t.WorkingSize)
	gray := makeGrayImage(working)

	return &normalized{
		cameraSize: img.Bounds().Size(),
		working:    working,
		gray:       gray,
		binary:     adaptiveThreshold(gray, t.ThresholdBlockSize, t.thresholdC()),
	}, nil
}

// unsharpMask computes (amount+1)*orig - amount*blur per channel, clipped to
// [0,255]. Where |orig-blur| is below threshold the original value is kept.
func unsharpMask(img image.Image, sigma, amount, threshold float64) *image.NRGBA {
	orig := imaging.Clone(img)
	blurred := imaging.Blur(orig, sigma)
	out := image.NewNRGBA(orig.Bounds())

	for i := 0; i < len(orig.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			o := float64(orig.Pix[i+ch])
			b := float64(blurred.Pix[i+ch])
			if threshold > 0 && math.Abs(o-b) < threshold {
				out.Pix[i+ch] = orig.Pix[i+ch]
				continue
			}
			out.Pix[i+ch] = clampByte((amount+1)*o - amount*b)
		}
		out.Pix[i+3] = 255
	}
	return out
}

func resizeToWorking(img *image.NRGBA, size int) *image.NRGBA {
	if img.Bounds().Dx() == size && img.Bounds().Dy() == size {
		return img
	}
	return imaging.Resize(img, size, size, imaging.Lanczos)
}

// adaptiveThreshold marks a pixel as foreground when it is brighter than the
// gaussian weighted mean of its block minus c.
func adaptiveThreshold(gray [][]int, blockSize int, c float64) [][]bool {
	height := len(gray)
	if height == 0 {
		return nil
	}
	width := len(gray[0])

	sigma := 0.3*((float64(blockSize)-1)*0.5-1) + 0.8
	mean := imaging.Blur(grayToImage(gray), sigma)

	binary := make([][]bool, height)
	for y := range height {
		binary[y] = make([]bool, width)
		for x := range width {
			m := float64(mean.Pix[y*mean.Stride+x*4])
			binary[y][x] = float64(gray[y][x]) > m-c
		}
	}
	return binary
}

func makeGrayImage(img image.Image) [][]int {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	gray := make([][]int, height)
	for y := range height {
		gray[y] = make([]int, width)
		for x := range width {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			gray[y][x] = (int(r>>8) + int(g>>8) + int(b>>8)) / 3
		}
	}
	return gray
}

func grayToImage(gray [][]int) *image.Gray {
	height := len(gray)
	width := 0
	if height > 0 {
		width = len(gray[0])
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetGray(x, y, color.Gray{Y: clampByte(float64(gray[y][x]))})
		}
	}
	return img
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
