// Package tracer adapts the gotrace bitmap tracer to the conversion
// pipeline. It consumes preprocessed PNG scratch files and produces SVG
// documents; the curve extraction itself is entirely gotrace's.
package tracer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"strings"

	"github.com/dennwc/gotrace"
)

// Config carries the resolved tracing tunables. All fields are concrete;
// defaulting happens in the converter layer.
type Config struct {
	Threshold    uint8
	TurdSize     int
	AlphaMax     float64
	OptCurve     bool
	OptTolerance float64
	TurnPolicy   string
	BlackOnWhite bool
}

var turnPolicies = map[string]gotrace.TurnPolicy{
	"black":    gotrace.TurnBlack,
	"white":    gotrace.TurnWhite,
	"left":     gotrace.TurnLeft,
	"right":    gotrace.TurnRight,
	"minority": gotrace.TurnMinority,
	"majority": gotrace.TurnMajority,
}

// TurnPolicies lists the accepted turn policy names.
func TurnPolicies() []string {
	return []string{"black", "white", "left", "right", "minority", "majority"}
}

func (c Config) params() (*gotrace.Params, error) {
	policy, ok := turnPolicies[c.TurnPolicy]
	if !ok {
		return nil, fmt.Errorf("unknown turn policy %q", c.TurnPolicy)
	}
	return &gotrace.Params{
		TurdSize:     c.TurdSize,
		TurnPolicy:   policy,
		AlphaMax:     c.AlphaMax,
		OptiCurve:    c.OptCurve,
		OptTolerance: c.OptTolerance,
	}, nil
}

// threshold returns the pixel classifier for one trace pass. A pixel is
// part of a path when its luminance falls on the dark side of level; the
// polarity flag flips the test for white-on-black sources.
func threshold(level uint8, blackOnWhite bool) func(x, y int, cl color.Color) bool {
	return func(x, y int, cl color.Color) bool {
		r, g, b, _ := cl.RGBA()
		lum := uint8((299*r + 587*g + 114*b) / 1000 >> 8)
		if blackOnWhite {
			return lum < level
		}
		return lum >= level
	}
}

func (c Config) fill() string {
	if c.BlackOnWhite {
		return "#000000"
	}
	return "#ffffff"
}

// Trace vectorizes the PNG at path into a standalone SVG document.
func Trace(ctx context.Context, path string, cfg Config) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}

	params, err := cfg.params()
	if err != nil {
		return nil, err
	}

	bm := gotrace.NewBitmapFromImage(img, threshold(cfg.Threshold, cfg.BlackOnWhite))
	paths, err := gotrace.Trace(bm, params)
	if err != nil {
		return nil, fmt.Errorf("trace failed: %w", err)
	}

	var buf bytes.Buffer
	if err := gotrace.WriteSvg(&buf, img.Bounds(), paths, cfg.fill()); err != nil {
		return nil, fmt.Errorf("svg serialization failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Posterize runs one trace pass per threshold level and layers the results
// into a single document, lightest (widest) band first. Levels are spread
// evenly over (0, cfg.Threshold].
func Posterize(ctx context.Context, path string, steps int, cfg Config) ([]byte, error) {
	if steps < 2 {
		return nil, fmt.Errorf("posterize needs at least 2 steps, got %d", steps)
	}

	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}

	params, err := cfg.params()
	if err != nil {
		return nil, err
	}

	ceiling := int(cfg.Threshold)
	band := ceiling / steps

	var shellPrefix, shellSuffix string
	var layers []string

	for i := steps; i >= 1; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		level := uint8(ceiling * i / steps)
		bm := gotrace.NewBitmapFromImage(img, threshold(level, cfg.BlackOnWhite))
		paths, err := gotrace.Trace(bm, params)
		if err != nil {
			return nil, fmt.Errorf("trace failed at level %d: %w", level, err)
		}

		var buf bytes.Buffer
		if err := gotrace.WriteSvg(&buf, img.Bounds(), paths, layerFill(level, band, cfg.BlackOnWhite)); err != nil {
			return nil, fmt.Errorf("svg serialization failed at level %d: %w", level, err)
		}

		prefix, inner, suffix, err := splitSvg(buf.String())
		if err != nil {
			return nil, err
		}
		if shellPrefix == "" {
			shellPrefix, shellSuffix = prefix, suffix
		}
		layers = append(layers, inner)
	}

	var out bytes.Buffer
	out.WriteString(shellPrefix)
	for _, layer := range layers {
		out.WriteString(layer)
	}
	out.WriteString(shellSuffix)
	return out.Bytes(), nil
}

// layerFill picks a flat tone for the band traced at level. The band holds
// pixels darker than level, so its representative tone sits one band width
// below it.
func layerFill(level uint8, band int, blackOnWhite bool) string {
	tone := int(level) - band
	if tone < 0 {
		tone = 0
	}
	if !blackOnWhite {
		tone = 255 - tone
	}
	return fmt.Sprintf("#%02x%02x%02x", tone, tone, tone)
}

// splitSvg cuts a document this package just generated into the shell
// around the root element and the drawable content inside it.
func splitSvg(doc string) (prefix, inner, suffix string, err error) {
	start := strings.Index(doc, "<svg")
	if start < 0 {
		return "", "", "", fmt.Errorf("generated document has no svg root")
	}
	open := strings.Index(doc[start:], ">")
	if open < 0 {
		return "", "", "", fmt.Errorf("generated document has an unterminated svg tag")
	}
	end := strings.LastIndex(doc, "</svg>")
	if end < 0 {
		return "", "", "", fmt.Errorf("generated document has no closing svg tag")
	}

	bodyStart := start + open + 1
	return doc[:bodyStart], doc[bodyStart:end], doc[end:], nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}
	return img, nil
}
