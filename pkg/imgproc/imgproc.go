// Package imgproc prepares raster images for tracing: grayscale, contrast,
// histogram normalization and binary thresholding.
package imgproc

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"go.uber.org/zap"
)

type Processor struct {
	log *zap.Logger
}

func NewProcessor(log *zap.Logger) *Processor {
	return &Processor{log: log}
}

// Prepare converts img to grayscale, applies the given contrast adjustment
// (skipped when zero) and stretches the tonal range to the full 0-255 span.
func (p *Processor) Prepare(img image.Image, contrast float64) *image.RGBA {
	gray := effect.Grayscale(img)
	if contrast != 0 {
		gray = adjust.Contrast(gray, contrast)
	}
	out := normalize(gray)

	bounds := out.Bounds()
	p.log.Debug("Image prepared",
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
		zap.Float64("contrast", contrast))

	return out
}

// Binarize maps every pixel at or above level to white and the rest to black.
func (p *Processor) Binarize(img image.Image, level uint8) *image.Gray {
	return segment.Threshold(img, level)
}

// normalize linearly stretches pixel intensities so the darkest pixel maps
// to 0 and the brightest to 255. The input is already grayscale, so the red
// channel stands in for luminance.
func normalize(img *image.RGBA) *image.RGBA {
	bounds := img.Bounds()
	min, max := uint8(255), uint8(0)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := img.RGBAAt(x, y).R
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	if min == 0 && max == 255 {
		return img
	}
	if min >= max {
		// Flat image, nothing to stretch.
		return img
	}

	span := int(max) - int(min)
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := img.RGBAAt(x, y)
			v := uint8((int(px.R) - int(min)) * 255 / span)
			px.R, px.G, px.B = v, v, v
			out.SetRGBA(x, y, px)
		}
	}

	return out
}
