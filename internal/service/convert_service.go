package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roshanlimbu/png-to-svg/internal/converter"
	"github.com/roshanlimbu/png-to-svg/internal/domain"
	"github.com/roshanlimbu/png-to-svg/internal/storage"
)

const archivePrefix = "svg/"

// UploadedFile is one multipart part handed down from the handler.
type UploadedFile struct {
	Name string
	Data []byte
}

type ConvertService interface {
	Convert(ctx context.Context, data []byte, opts converter.Options) ([]byte, error)
	Posterize(ctx context.Context, data []byte, steps int, opts converter.Options) ([]byte, error)
	BulkConvert(ctx context.Context, files []UploadedFile, opts converter.Options) *domain.BulkReport
	Presets() map[string]converter.Options
	ArchiveEnabled() bool
	ListArchive(ctx context.Context) ([]domain.ArchiveEntry, error)
	GetArchived(ctx context.Context, id string) ([]byte, error)
}

type convertService struct {
	conv    *converter.Converter
	archive storage.Archive
	log     *zap.Logger
}

// NewConvertService wires the converter facade and an optional archive; a
// nil archive disables the archive endpoints.
func NewConvertService(conv *converter.Converter, archive storage.Archive, log *zap.Logger) ConvertService {
	return &convertService{
		conv:    conv,
		archive: archive,
		log:     log,
	}
}

func (s *convertService) Convert(ctx context.Context, data []byte, opts converter.Options) ([]byte, error) {
	svg, err := s.conv.ConvertBuffer(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	s.archiveSVG(ctx, svg)
	return svg, nil
}

func (s *convertService) Posterize(ctx context.Context, data []byte, steps int, opts converter.Options) ([]byte, error) {
	svg, err := s.conv.PosterizeBuffer(ctx, data, steps, opts)
	if err != nil {
		return nil, err
	}
	s.archiveSVG(ctx, svg)
	return svg, nil
}

func (s *convertService) BulkConvert(ctx context.Context, files []UploadedFile, opts converter.Options) *domain.BulkReport {
	start := time.Now()
	report := &domain.BulkReport{
		Results: make([]domain.ConversionResult, 0, len(files)),
	}

	for _, file := range files {
		result := domain.ConversionResult{
			Filename:    file.Name,
			SVGFilename: svgName(file.Name),
		}

		svg, err := s.conv.ConvertBuffer(ctx, file.Data, opts)
		if err != nil {
			result.Error = err.Error()
			report.Summary.Failed++
			s.log.Error("Bulk conversion failed for file",
				zap.String("filename", file.Name),
				zap.Error(err))
		} else {
			result.Success = true
			result.SVG = string(svg)
			report.Summary.Successful++
		}

		report.Results = append(report.Results, result)
	}

	report.Summary.Total = len(files)
	report.Summary.ProcessingTime = math.Round(time.Since(start).Seconds()*1000) / 1000

	s.log.Info("Bulk upload converted",
		zap.Int("total", report.Summary.Total),
		zap.Int("successful", report.Summary.Successful),
		zap.Int("failed", report.Summary.Failed),
		zap.Float64("processing_time", report.Summary.ProcessingTime))

	return report
}

func (s *convertService) Presets() map[string]converter.Options {
	return converter.Presets()
}

func (s *convertService) ArchiveEnabled() bool {
	return s.archive != nil
}

func (s *convertService) ListArchive(ctx context.Context) ([]domain.ArchiveEntry, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("archive storage is not configured")
	}

	keys, err := s.archive.List(ctx, archivePrefix)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ArchiveEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, domain.ArchiveEntry{
			ID:  filepath.Base(key),
			Key: key,
		})
	}
	return entries, nil
}

func (s *convertService) GetArchived(ctx context.Context, id string) ([]byte, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("archive storage is not configured")
	}
	if strings.ContainsAny(id, "/\\") {
		return nil, fmt.Errorf("invalid archive id %q", id)
	}

	body, err := s.archive.Get(ctx, archivePrefix+id)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return io.ReadAll(body)
}

// archiveSVG stores a produced document best-effort; archive failures never
// fail the conversion that produced it.
func (s *convertService) archiveSVG(ctx context.Context, svg []byte) {
	if s.archive == nil {
		return
	}

	key := archivePrefix + uuid.New().String() + ".svg"
	if err := s.archive.Put(ctx, key, bytes.NewReader(svg), int64(len(svg)), "image/svg+xml"); err != nil {
		s.log.Warn("Failed to archive SVG", zap.String("key", key), zap.Error(err))
	}
}

func svgName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".svg"
}
