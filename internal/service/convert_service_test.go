package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/roshanlimbu/png-to-svg/internal/converter"
)

type memArchive struct {
	objects map[string][]byte
}

func newMemArchive() *memArchive {
	return &memArchive{objects: map[string][]byte{}}
}

func (m *memArchive) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memArchive) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memArchive) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newService(t *testing.T, archive *memArchive) ConvertService {
	t.Helper()
	log := zap.NewNop()
	conv := converter.New(t.TempDir(), log)
	if archive == nil {
		return NewConvertService(conv, nil, log)
	}
	return NewConvertService(conv, archive, log)
}

func TestConvertArchivesResult(t *testing.T) {
	archive := newMemArchive()
	svc := newService(t, archive)

	svg, err := svc.Convert(context.Background(), pngBytes(t), converter.Options{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(svg) == 0 {
		t.Fatal("empty SVG")
	}

	if len(archive.objects) != 1 {
		t.Fatalf("archive holds %d objects, want 1", len(archive.objects))
	}
	for key, data := range archive.objects {
		if !strings.HasPrefix(key, "svg/") || !strings.HasSuffix(key, ".svg") {
			t.Errorf("unexpected archive key %q", key)
		}
		if string(data) != string(svg) {
			t.Error("archived bytes differ from returned SVG")
		}
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	archive := newMemArchive()
	svc := newService(t, archive)

	svg, err := svc.Convert(context.Background(), pngBytes(t), converter.Options{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	entries, err := svc.ListArchive(context.Background())
	if err != nil {
		t.Fatalf("ListArchive: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	stored, err := svc.GetArchived(context.Background(), entries[0].ID)
	if err != nil {
		t.Fatalf("GetArchived: %v", err)
	}
	if string(stored) != string(svg) {
		t.Error("round-tripped SVG differs")
	}
}

func TestGetArchivedRejectsPathTraversal(t *testing.T) {
	svc := newService(t, newMemArchive())

	if _, err := svc.GetArchived(context.Background(), "../secrets"); err == nil {
		t.Fatal("expected error for id containing a path separator")
	}
}

func TestArchiveDisabled(t *testing.T) {
	svc := newService(t, nil)

	if svc.ArchiveEnabled() {
		t.Error("archive should be disabled with a nil backend")
	}
	if _, err := svc.ListArchive(context.Background()); err == nil {
		t.Error("ListArchive should fail when disabled")
	}

	// Conversion still works without an archive.
	if _, err := svc.Convert(context.Background(), pngBytes(t), converter.Options{}); err != nil {
		t.Errorf("Convert without archive: %v", err)
	}
}

func TestBulkConvertReport(t *testing.T) {
	svc := newService(t, nil)

	files := []UploadedFile{
		{Name: "a.png", Data: pngBytes(t)},
		{Name: "b.png", Data: pngBytes(t)},
		{Name: "broken.png", Data: []byte("garbage")},
	}

	report := svc.BulkConvert(context.Background(), files, converter.Options{})

	if report.Summary.Total != 3 {
		t.Errorf("total = %d, want 3", report.Summary.Total)
	}
	if report.Summary.Successful != 2 {
		t.Errorf("successful = %d, want 2", report.Summary.Successful)
	}
	if report.Summary.Failed != 1 {
		t.Errorf("failed = %d, want 1", report.Summary.Failed)
	}
	if report.Summary.ProcessingTime < 0 {
		t.Errorf("processing_time = %f, want >= 0", report.Summary.ProcessingTime)
	}

	if report.Results[0].SVGFilename != "a.svg" {
		t.Errorf("svgFilename = %q, want a.svg", report.Results[0].SVGFilename)
	}
	if report.Results[2].Success || report.Results[2].Error == "" {
		t.Error("broken file must carry an error")
	}
	if report.Results[0].SVG == "" {
		t.Error("successful result must carry the SVG text")
	}
}
