package imgproc

import (
	"image"
	"image/color"
	"testing"

	"go.uber.org/zap"
)

func gradientImage(lo, hi uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	step := (int(hi) - int(lo)) / 3
	for x := 0; x < 4; x++ {
		v := uint8(int(lo) + step*x)
		img.SetRGBA(x, 0, color.RGBA{R: v, G: v, B: v, A: 255})
	}
	return img
}

func TestPrepareGrayscales(t *testing.T) {
	p := NewProcessor(zap.NewNop())

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 200, G: 30, B: 90, A: 255})
	img.SetRGBA(1, 1, color.RGBA{R: 10, G: 240, B: 55, A: 255})

	out := p.Prepare(img, 0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			px := out.RGBAAt(x, y)
			if px.R != px.G || px.G != px.B {
				t.Fatalf("pixel (%d,%d) not gray: %+v", x, y, px)
			}
		}
	}
}

func TestNormalizeStretchesRange(t *testing.T) {
	out := normalize(gradientImage(100, 160))

	min, max := uint8(255), uint8(0)
	for x := 0; x < 4; x++ {
		v := out.RGBAAt(x, 0).R
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min != 0 {
		t.Errorf("min after normalize = %d, want 0", min)
	}
	if max != 255 {
		t.Errorf("max after normalize = %d, want 255", max)
	}
}

func TestNormalizeFlatImageUnchanged(t *testing.T) {
	img := gradientImage(77, 77)
	out := normalize(img)
	for x := 0; x < 4; x++ {
		if out.RGBAAt(x, 0).R != 77 {
			t.Fatalf("flat image pixel changed: %d", out.RGBAAt(x, 0).R)
		}
	}
}

func TestBinarize(t *testing.T) {
	p := NewProcessor(zap.NewNop())
	img := gradientImage(0, 255)

	out := p.Binarize(img, 128)
	for x := 0; x < 4; x++ {
		v := out.GrayAt(x, 0).Y
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d not binary: %d", x, v)
		}
	}
	if out.GrayAt(0, 0).Y != 0 {
		t.Errorf("dark pixel should threshold to black, got %d", out.GrayAt(0, 0).Y)
	}
	if out.GrayAt(3, 0).Y != 255 {
		t.Errorf("bright pixel should threshold to white, got %d", out.GrayAt(3, 0).Y)
	}
}
