// Package cli implements the png-to-svg command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roshanlimbu/png-to-svg/internal/converter"
	"github.com/roshanlimbu/png-to-svg/pkg/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "png-to-svg",
	Short: "Convert PNG raster images to SVG vector paths",
	Long: "png-to-svg chains a bitmap preprocessor and the potrace tracing\n" +
		"algorithm to turn PNG images into scalable SVG documents.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() (*zap.Logger, error) {
	return logger.NewConsole(verbose)
}

// optionFlags holds the shared conversion flags. Values are only applied
// when the flag was set on the command line, so unset flags keep preset or
// default values.
type optionFlags struct {
	preset       string
	threshold    int
	turdSize     int
	alphaMax     float64
	optCurve     bool
	optTolerance float64
	turnPolicy   string
	blackOnWhite bool
}

func (f *optionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.preset, "preset", "", "preset options bundle (logo, photo, drawing, text)")
	flags.IntVar(&f.threshold, "threshold", converter.DefaultThreshold, "luminance cutoff, 0-255")
	flags.IntVar(&f.turdSize, "turd-size", converter.DefaultTurdSize, "suppress speckles up to this size")
	flags.Float64Var(&f.alphaMax, "alpha-max", converter.DefaultAlphaMax, "corner smoothness parameter")
	flags.BoolVar(&f.optCurve, "opt-curve", true, "enable curve optimization")
	flags.Float64Var(&f.optTolerance, "opt-tolerance", converter.DefaultOptTolerance, "curve optimization tolerance")
	flags.StringVar(&f.turnPolicy, "turn-policy", string(converter.DefaultTurnPolicy), "ambiguity resolution policy (black, white, left, right, minority, majority)")
	flags.BoolVar(&f.blackOnWhite, "black-on-white", true, "trace dark shapes on a light background")
}

// options assembles the conversion options: the preset first, then every
// explicitly set flag on top.
func (f *optionFlags) options(cmd *cobra.Command) (converter.Options, error) {
	var opts converter.Options

	if f.preset != "" {
		preset, err := converter.PresetOptions(f.preset)
		if err != nil {
			return opts, fmt.Errorf("%w: %q", err, f.preset)
		}
		opts = preset
	}

	var overlay converter.Options
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		overlay.Threshold = converter.Int(f.threshold)
	}
	if flags.Changed("turd-size") {
		overlay.TurdSize = converter.Int(f.turdSize)
	}
	if flags.Changed("alpha-max") {
		overlay.AlphaMax = converter.Float(f.alphaMax)
	}
	if flags.Changed("opt-curve") {
		overlay.OptCurve = converter.Bool(f.optCurve)
	}
	if flags.Changed("opt-tolerance") {
		overlay.OptTolerance = converter.Float(f.optTolerance)
	}
	if flags.Changed("turn-policy") {
		overlay.TurnPolicy = converter.TurnPolicy(f.turnPolicy)
	}
	if flags.Changed("black-on-white") {
		overlay.BlackOnWhite = converter.Bool(f.blackOnWhite)
	}

	return opts.Merge(overlay), nil
}
