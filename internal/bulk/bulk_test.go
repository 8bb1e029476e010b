package bulk

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/roshanlimbu/png-to-svg/internal/converter"
)

func newDriver(t *testing.T) *Driver {
	t.Helper()
	return NewDriver(converter.New(t.TempDir(), zap.NewNop()), zap.NewNop())
}

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
}

func writeFileOfSize(t *testing.T, path string, size int64) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestDiscoverSizeFilterBoundaries(t *testing.T) {
	dir := t.TempDir()
	writeFileOfSize(t, filepath.Join(dir, "tiny.png"), 1023)
	writeFileOfSize(t, filepath.Join(dir, "exact-min.png"), 1024)
	writeFileOfSize(t, filepath.Join(dir, "exact-max.png"), 4096)
	writeFileOfSize(t, filepath.Join(dir, "huge.png"), 4097)
	writeFileOfSize(t, filepath.Join(dir, "not-an-image.txt"), 2048)

	d := newDriver(t)
	files, err := d.discover(dir, Options{MinSizeKB: 1, MaxSizeKB: 4})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	got := map[string]bool{}
	for _, f := range files {
		got[filepath.Base(f)] = true
	}
	if got["tiny.png"] {
		t.Error("file below min must be excluded")
	}
	if got["huge.png"] {
		t.Error("file above max must be excluded")
	}
	if !got["exact-min.png"] || !got["exact-max.png"] {
		t.Errorf("boundary files must be included, got %v", got)
	}
	if got["not-an-image.txt"] {
		t.Error("non-png must be excluded")
	}
}

func TestDiscoverCaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	writeFileOfSize(t, filepath.Join(dir, "upper.PNG"), 100)

	d := newDriver(t)
	files, err := d.discover(dir, Options{})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
}

func TestDiscoverRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFileOfSize(t, filepath.Join(dir, "top.png"), 10)
	writePNG(t, filepath.Join(dir, "nested", "deep.png"))

	d := newDriver(t)

	flat, err := d.discover(dir, Options{})
	if err != nil {
		t.Fatalf("discover flat: %v", err)
	}
	if len(flat) != 1 {
		t.Errorf("flat discovery found %d files, want 1", len(flat))
	}

	deep, err := d.discover(dir, Options{Recursive: true})
	if err != nil {
		t.Fatalf("discover recursive: %v", err)
	}
	if len(deep) != 2 {
		t.Errorf("recursive discovery found %d files, want 2", len(deep))
	}
}

func TestRunMirrorsTree(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writePNG(t, filepath.Join(inDir, "a.png"))
	writePNG(t, filepath.Join(inDir, "sub", "b.png"))

	d := newDriver(t)
	report, err := d.Run(context.Background(), inDir, outDir, Options{Recursive: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Total != 2 || report.Successful != 2 || report.Failed != 0 {
		t.Errorf("report = %+v, want 2/2/0", report)
	}
	for _, rel := range []string{"a.svg", filepath.Join("sub", "b.svg")} {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("missing output %s: %v", rel, err)
		}
	}
}

func TestRunCountsCorruptFiles(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writePNG(t, filepath.Join(inDir, "a.png"))
	writePNG(t, filepath.Join(inDir, "b.png"))
	writePNG(t, filepath.Join(inDir, "c.png"))
	writeFileOfSize(t, filepath.Join(inDir, "corrupt.png"), 64)

	d := newDriver(t)
	report, err := d.Run(context.Background(), inDir, outDir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Total != 4 {
		t.Errorf("total = %d, want 4", report.Total)
	}
	if report.Successful != 3 {
		t.Errorf("successful = %d, want 3", report.Successful)
	}
	if report.Failed != 1 {
		t.Errorf("failed = %d, want 1", report.Failed)
	}
}

func TestRunSkipsExistingUnlessOverwrite(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writePNG(t, filepath.Join(inDir, "a.png"))
	if err := os.WriteFile(filepath.Join(outDir, "a.svg"), []byte("<svg/>"), 0644); err != nil {
		t.Fatalf("seed existing output: %v", err)
	}

	d := newDriver(t)

	report, err := d.Run(context.Background(), inDir, outDir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Skipped != 1 || report.Successful != 0 {
		t.Errorf("without overwrite: skipped=%d successful=%d, want 1/0", report.Skipped, report.Successful)
	}
	seeded, err := os.ReadFile(filepath.Join(outDir, "a.svg"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(seeded) != "<svg/>" {
		t.Error("existing output must not be touched without overwrite")
	}

	report, err = d.Run(context.Background(), inDir, outDir, Options{Overwrite: true})
	if err != nil {
		t.Fatalf("Run with overwrite: %v", err)
	}
	if report.Successful != 1 || report.Skipped != 0 {
		t.Errorf("with overwrite: successful=%d skipped=%d, want 1/0", report.Successful, report.Skipped)
	}
	replaced, err := os.ReadFile(filepath.Join(outDir, "a.svg"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(replaced) == "<svg/>" {
		t.Error("output must be reconverted with overwrite")
	}
}

func TestRunParallel(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		writePNG(t, filepath.Join(inDir, name+".png"))
	}

	d := newDriver(t)
	report, err := d.Run(context.Background(), inDir, outDir, Options{Parallel: true, Workers: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 6 || report.Successful != 6 {
		t.Errorf("report = %+v, want 6 successful", report)
	}
}

func TestRunMissingInputDir(t *testing.T) {
	d := newDriver(t)
	if _, err := d.Run(context.Background(), filepath.Join(t.TempDir(), "absent"), t.TempDir(), Options{}); err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestRunCanceledContext(t *testing.T) {
	inDir := t.TempDir()
	writePNG(t, filepath.Join(inDir, "a.png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newDriver(t)
	report, err := d.Run(ctx, inDir, t.TempDir(), Options{})
	if err == nil {
		t.Fatal("expected context error")
	}
	if report.Successful != 0 {
		t.Errorf("canceled run converted %d files", report.Successful)
	}
}
