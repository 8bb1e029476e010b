package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roshanlimbu/png-to-svg/internal/bulk"
	"github.com/roshanlimbu/png-to-svg/internal/converter"
)

var (
	batchFlags     optionFlags
	batchParallel  bool
	batchWorkers   int
	batchRecursive bool
	batchOverwrite bool
	batchMinSizeKB int64
	batchMaxSizeKB int64
)

var batchCmd = &cobra.Command{
	Use:   "batch <input-dir> <output-dir>",
	Short: "Convert every PNG under a directory into a mirrored SVG tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir, outputDir := args[0], args[1]

		info, err := os.Stat(inputDir)
		if err != nil {
			return fmt.Errorf("input directory %s: %w", inputDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input path %s is not a directory", inputDir)
		}
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("output directory %s: %w", outputDir, err)
		}

		opts, err := batchFlags.options(cmd)
		if err != nil {
			return err
		}

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		driver := bulk.NewDriver(converter.New("", log), log)
		report, err := driver.Run(context.Background(), inputDir, outputDir, bulk.Options{
			Options:   opts,
			Parallel:  batchParallel,
			Workers:   batchWorkers,
			Recursive: batchRecursive,
			Overwrite: batchOverwrite,
			MinSizeKB: batchMinSizeKB,
			MaxSizeKB: batchMaxSizeKB,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Converted %d/%d files (%d failed, %d skipped) in %s\n",
			report.Successful, report.Total, report.Failed, report.Skipped, report.Duration().Round(time.Millisecond))
		return nil
	},
}

func init() {
	batchFlags.register(batchCmd)
	flags := batchCmd.Flags()
	flags.BoolVar(&batchParallel, "parallel", false, "process files in concurrent chunks")
	flags.IntVar(&batchWorkers, "workers", bulk.DefaultWorkers, "maximum concurrent chunks")
	flags.BoolVarP(&batchRecursive, "recursive", "r", false, "descend into subdirectories")
	flags.BoolVar(&batchOverwrite, "overwrite", false, "reconvert files whose output already exists")
	flags.Int64Var(&batchMinSizeKB, "min-size", 0, "skip files smaller than this many kilobytes")
	flags.Int64Var(&batchMaxSizeKB, "max-size", 0, "skip files larger than this many kilobytes")
	rootCmd.AddCommand(batchCmd)
}
