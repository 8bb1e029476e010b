package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roshanlimbu/png-to-svg/internal/converter"
)

var (
	posterizeFlags optionFlags
	posterizeSteps int
)

var posterizeCmd = &cobra.Command{
	Use:   "posterize <input.png> <output.svg>",
	Short: "Trace a PNG at several threshold levels into a layered SVG",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]

		if _, err := os.Stat(input); err != nil {
			return fmt.Errorf("input file %s: %w", input, err)
		}
		if posterizeSteps < 2 {
			return fmt.Errorf("--steps must be at least 2, got %d", posterizeSteps)
		}

		opts, err := posterizeFlags.options(cmd)
		if err != nil {
			return err
		}

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		conv := converter.New("", log)
		if err := conv.ConvertToPosterized(context.Background(), input, output, posterizeSteps, opts); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Posterized %s -> %s (%d steps)\n", input, output, posterizeSteps)
		return nil
	},
}

func init() {
	posterizeFlags.register(posterizeCmd)
	posterizeCmd.Flags().IntVar(&posterizeSteps, "steps", converter.DefaultSteps, "number of threshold levels")
	rootCmd.AddCommand(posterizeCmd)
}
