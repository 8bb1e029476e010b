package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roshanlimbu/png-to-svg/internal/converter"
)

var convertFlags optionFlags

var convertCmd = &cobra.Command{
	Use:   "convert <input.png> <output.svg>",
	Short: "Trace a single PNG into an SVG",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]

		if _, err := os.Stat(input); err != nil {
			return fmt.Errorf("input file %s: %w", input, err)
		}

		opts, err := convertFlags.options(cmd)
		if err != nil {
			return err
		}

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		conv := converter.New("", log)
		if err := conv.ConvertFile(context.Background(), input, output, opts); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Converted %s -> %s\n", input, output)
		return nil
	},
}

func init() {
	convertFlags.register(convertCmd)
	rootCmd.AddCommand(convertCmd)
}
