// Package converter chains the bitmap preprocessor and the gotrace adapter
// into a PNG to SVG conversion facade.
package converter

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"go.uber.org/zap"

	"github.com/roshanlimbu/png-to-svg/internal/tracer"
	"github.com/roshanlimbu/png-to-svg/pkg/imgproc"
)

// contrastAmount is the fixed contrast boost applied before a plain trace.
// Posterize skips it to keep the tonal bands honest.
const contrastAmount = 0.3

type Converter struct {
	log     *zap.Logger
	proc    *imgproc.Processor
	tempDir string
}

// New creates a converter that stages scratch files in tempDir; an empty
// tempDir means the system default.
func New(tempDir string, log *zap.Logger) *Converter {
	return &Converter{
		log:     log,
		proc:    imgproc.NewProcessor(log),
		tempDir: tempDir,
	}
}

// ConvertFile traces the PNG at inputPath and writes the SVG to outputPath.
// The output file is only written on success.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string, opts Options) error {
	img, err := loadPNG(inputPath)
	if err != nil {
		return err
	}

	svg, err := c.convert(ctx, img, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, svg, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	c.log.Info("Image converted",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("svg_bytes", len(svg)))

	return nil
}

// ConvertBuffer traces an in-memory PNG and returns the SVG document.
func (c *Converter) ConvertBuffer(ctx context.Context, data []byte, opts Options) ([]byte, error) {
	img, err := decodePNG(data)
	if err != nil {
		return nil, err
	}
	return c.convert(ctx, img, opts)
}

// ConvertToPosterized traces the PNG at inputPath at several threshold
// levels and writes the layered SVG to outputPath. steps <= 0 selects the
// default step count.
func (c *Converter) ConvertToPosterized(ctx context.Context, inputPath, outputPath string, steps int, opts Options) error {
	img, err := loadPNG(inputPath)
	if err != nil {
		return err
	}

	svg, err := c.posterize(ctx, img, steps, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, svg, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	c.log.Info("Image posterized",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("steps", normalizeSteps(steps)))

	return nil
}

// PosterizeBuffer is the in-memory variant of ConvertToPosterized.
func (c *Converter) PosterizeBuffer(ctx context.Context, data []byte, steps int, opts Options) ([]byte, error) {
	img, err := decodePNG(data)
	if err != nil {
		return nil, err
	}
	return c.posterize(ctx, img, steps, opts)
}

func (c *Converter) convert(ctx context.Context, img image.Image, opts Options) ([]byte, error) {
	cfg, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	var prepared image.Image = c.proc.Prepare(img, contrastAmount)
	if opts.Threshold != nil {
		prepared = c.proc.Binarize(prepared, uint8(*opts.Threshold))
	}

	scratch, cleanup, err := c.writeScratch(prepared)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return tracer.Trace(ctx, scratch, cfg)
}

func (c *Converter) posterize(ctx context.Context, img image.Image, steps int, opts Options) ([]byte, error) {
	cfg, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	// Without an explicit threshold the bands cover the full tonal range
	// instead of stopping at the single-trace default.
	if opts.Threshold == nil {
		cfg.Threshold = 255
	}

	prepared := c.proc.Prepare(img, 0)

	scratch, cleanup, err := c.writeScratch(prepared)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return tracer.Posterize(ctx, scratch, normalizeSteps(steps), cfg)
}

// writeScratch stages the preprocessed bitmap in a uniquely named temp file
// for the tracer. The cleanup func removes it on every exit path; a failed
// removal is logged, never raised.
func (c *Converter) writeScratch(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp(c.tempDir, "png-to-svg-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	path := f.Name()

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.log.Warn("Failed to remove scratch file",
				zap.String("path", path),
				zap.Error(err))
		}
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close scratch file: %w", err)
	}

	return path, cleanup, nil
}

func normalizeSteps(steps int) int {
	if steps <= 0 {
		return DefaultSteps
	}
	return steps
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input image: %w", err)
	}
	return img, nil
}

func decodePNG(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode input image: %w", err)
	}
	return img, nil
}
