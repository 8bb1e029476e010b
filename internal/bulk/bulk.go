// Package bulk converts every PNG under a directory tree into a mirrored
// SVG tree, sequentially or split across parallel chunk workers.
package bulk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/roshanlimbu/png-to-svg/internal/converter"
)

// DefaultWorkers caps parallel chunk count when no worker count is given.
const DefaultWorkers = 4

// Options controls one bulk run. The embedded conversion options apply to
// every file.
type Options struct {
	converter.Options

	Parallel  bool
	Workers   int
	Recursive bool
	Overwrite bool
	MinSizeKB int64
	MaxSizeKB int64
}

// Report summarizes a finished bulk run.
type Report struct {
	Total      int
	Successful int
	Failed     int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// AvgSecondsPerFile reports wall-clock seconds per successfully converted
// file; zero when nothing succeeded.
func (r Report) AvgSecondsPerFile() float64 {
	if r.Successful == 0 {
		return 0
	}
	return r.Duration().Seconds() / float64(r.Successful)
}

// stats counters are shared across chunk goroutines, hence atomic.
type stats struct {
	successful atomic.Int64
	failed     atomic.Int64
	skipped    atomic.Int64
}

type Driver struct {
	conv *converter.Converter
	log  *zap.Logger
}

func NewDriver(conv *converter.Converter, log *zap.Logger) *Driver {
	return &Driver{conv: conv, log: log}
}

// Run converts every matching PNG under inputDir into outputDir, mirroring
// the relative layout with a .svg extension.
func (d *Driver) Run(ctx context.Context, inputDir, outputDir string, opts Options) (Report, error) {
	report := Report{StartedAt: time.Now()}

	info, err := os.Stat(inputDir)
	if err != nil {
		return report, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return report, fmt.Errorf("input path %s is not a directory", inputDir)
	}

	files, err := d.discover(inputDir, opts)
	if err != nil {
		return report, err
	}
	report.Total = len(files)

	d.log.Info("Bulk conversion started",
		zap.String("input", inputDir),
		zap.String("output", outputDir),
		zap.Int("files", len(files)),
		zap.Bool("parallel", opts.Parallel))

	var st stats
	if opts.Parallel && len(files) > 1 {
		d.runChunks(ctx, files, inputDir, outputDir, opts, &st)
	} else {
		d.runChunk(ctx, files, inputDir, outputDir, opts, &st)
	}

	report.Successful = int(st.successful.Load())
	report.Failed = int(st.failed.Load())
	report.Skipped = int(st.skipped.Load())
	report.FinishedAt = time.Now()

	d.log.Info("Bulk conversion finished",
		zap.Int("total", report.Total),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Duration("duration", report.Duration()),
		zap.Float64("avg_seconds_per_file", report.AvgSecondsPerFile()))

	return report, ctx.Err()
}

// discover collects PNG paths under root, honoring the recursion flag and
// the size bounds. Each bound is evaluated on its own; boundary values pass.
func (d *Driver) discover(root string, opts Options) ([]string, error) {
	var files []string

	consider := func(path string, size int64) {
		if !strings.EqualFold(filepath.Ext(path), ".png") {
			return
		}
		if opts.MinSizeKB > 0 && size < opts.MinSizeKB*1024 {
			return
		}
		if opts.MaxSizeKB > 0 && size > opts.MaxSizeKB*1024 {
			return
		}
		files = append(files, path)
	}

	if opts.Recursive {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() || !entry.Type().IsRegular() {
				return nil
			}
			info, err := entry.Info()
			if err != nil {
				return err
			}
			consider(path, info.Size())
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("directory walk failed: %w", err)
		}
		return files, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		consider(filepath.Join(root, entry.Name()), info.Size())
	}
	return files, nil
}

// runChunks splits files into contiguous chunks and processes them
// concurrently. Order is preserved within a chunk, not across chunks.
func (d *Driver) runChunks(ctx context.Context, files []string, inputDir, outputDir string, opts Options, st *stats) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(files) {
		workers = len(files)
	}

	chunkSize := (len(files) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(files); start += chunkSize {
		end := start + chunkSize
		if end > len(files) {
			end = len(files)
		}
		chunk := files[start:end]

		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runChunk(ctx, chunk, inputDir, outputDir, opts, st)
		}()
	}
	wg.Wait()
}

func (d *Driver) runChunk(ctx context.Context, files []string, inputDir, outputDir string, opts Options, st *stats) {
	for _, path := range files {
		if ctx.Err() != nil {
			return
		}
		d.processFile(ctx, path, inputDir, outputDir, opts, st)
	}
}

func (d *Driver) processFile(ctx context.Context, path, inputDir, outputDir string, opts Options, st *stats) {
	rel, err := filepath.Rel(inputDir, path)
	if err != nil {
		st.failed.Add(1)
		d.log.Error("Failed to resolve relative path", zap.String("file", path), zap.Error(err))
		return
	}

	dest := filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".svg")

	if !opts.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			st.skipped.Add(1)
			d.log.Info("Skipping existing output", zap.String("file", rel))
			return
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		st.failed.Add(1)
		d.log.Error("Failed to create output directory", zap.String("file", rel), zap.Error(err))
		return
	}

	start := time.Now()
	if err := d.conv.ConvertFile(ctx, path, dest, opts.Options); err != nil {
		st.failed.Add(1)
		d.log.Error("Conversion failed", zap.String("file", rel), zap.Error(err))
		return
	}

	st.successful.Add(1)
	d.log.Info("File converted",
		zap.String("file", rel),
		zap.Duration("took", time.Since(start)))
}
