package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/config"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/pipeline"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/source"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/storage"
	"go.uber.org/zap"
)

// Runner is the part of the orchestrator the service drives
type Runner interface {
	Run(ctx context.Context, trigger string) (*pipeline.Report, error)
	State() pipeline.State
	LastReport() *pipeline.Report
}

// SourceUpload describes a stored source file
type SourceUpload struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Size int64  `json:"size"`
}

// PipelineStatus is the current state and the last finished report
type PipelineStatus struct {
	State      pipeline.State   `json:"state"`
	LastReport *pipeline.Report `json:"lastReport,omitempty"`
}

// PipelineService triggers repopulation and manages its source files
type PipelineService struct {
	runner   Runner
	storage  storage.Storage
	cfg      config.PipelineConfig
	maxBytes int64
	logger   *zap.Logger
}

func NewPipelineService(
	runner Runner,
	store storage.Storage,
	cfg config.PipelineConfig,
	maxUploadSizeMB int64,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		runner:   runner,
		storage:  store,
		cfg:      cfg,
		maxBytes: maxUploadSizeMB * 1024 * 1024,
		logger:   logger,
	}
}

// Run executes a full purge-then-repopulate. A run already in progress
// yields ErrConflict.
func (s *PipelineService) Run(ctx context.Context, trigger string) (*pipeline.Report, error) {
	report, err := s.runner.Run(ctx, trigger)
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return report, err
	}
	return report, nil
}

func (s *PipelineService) Status() PipelineStatus {
	return PipelineStatus{
		State:      s.runner.State(),
		LastReport: s.runner.LastReport(),
	}
}

// targetName maps a file kind to its configured name in source storage
func (s *PipelineService) targetName(kind string) (source.Schema, string, error) {
	schema, ok := source.SchemaFor(kind)
	if !ok {
		return source.Schema{}, "", fmt.Errorf("%w: %q", ErrUnknownSourceKind, kind)
	}
	switch schema.Kind {
	case source.CatalogSchema.Kind:
		return schema, s.cfg.CatalogFile, nil
	case source.RosterSchema.Kind:
		return schema, s.cfg.RosterFile, nil
	default:
		return schema, s.cfg.SalesFile, nil
	}
}

// UploadSource replaces the source file of the given kind. The content is
// parsed with the kind's schema first so a file with missing columns never
// reaches storage.
func (s *PipelineService) UploadSource(ctx context.Context, kind string, r io.Reader) (*SourceUpload, error) {
	schema, name, err := s.targetName(kind)
	if err != nil {
		return nil, err
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = 10 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, limit)
	}

	table, err := source.Read(bytes.NewReader(data), source.FormatFromName(name), schema, source.Options{Delimiter: s.cfg.Delimiter})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	written, err := s.storage.Put(ctx, name, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store %s source: %w", schema.Kind, err)
	}

	s.logger.Info("Source file uploaded",
		zap.String("kind", schema.Kind),
		zap.String("name", name),
		zap.Int("rows", table.Len()),
		zap.Int64("size", written),
	)

	return &SourceUpload{Kind: schema.Kind, Name: name, Rows: table.Len(), Size: written}, nil
}
