package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/cache"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/metrics"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/pipeline"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/pipeline/inventory_csv"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultMaxUploadBytes = 50 << 20

type InventoryService struct {
	repo           repository.InventoryRepository
	runs           pipeline.RunRecorder
	cache          cache.AnalyticsCache
	archiver       storage.Archiver
	parser         *inventory_csv.Parser
	writer         *pipeline.BatchWriter
	maxUploadBytes int64
	now            func() time.Time
}

func NewInventoryService(
	repo repository.InventoryRepository,
	runs pipeline.RunRecorder,
	cacheImpl cache.AnalyticsCache,
	archiver storage.Archiver,
	ingestCfg config.IngestConfig,
	maxUploadBytes int64,
) *InventoryService {
	if runs == nil {
		runs = pipeline.NewMemoryRecorder()
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	if archiver == nil {
		archiver = storage.NoopArchiver{}
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}

	parser := inventory_csv.NewParser(inventory_csv.Options{
		MaxRows:     ingestCfg.MaxRows,
		Timeout:     time.Duration(ingestCfg.TimeoutMs) * time.Millisecond,
		DefaultDate: ingestCfg.DefaultDate,
	})

	return &InventoryService{
		repo:           repo,
		runs:           runs,
		cache:          cacheImpl,
		archiver:       archiver,
		parser:         parser,
		writer:         pipeline.NewBatchWriter(repo, ingestCfg.BatchSize),
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// MaxUploadBytes is the largest accepted upload.
func (s *InventoryService) MaxUploadBytes() int64 { return s.maxUploadBytes }

// ValidateUpload rejects a file by name and declared size before any byte
// of it is read.
func (s *InventoryService) ValidateUpload(filename string, size int64) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return domain.ErrInvalidFileType
	}
	if size > s.maxUploadBytes {
		return domain.ErrFileTooLarge
	}
	if size == 0 {
		return domain.ErrEmptyFile
	}
	return nil
}

// Upload validates, archives and ingests one uploaded CSV file.
func (s *InventoryService) Upload(ctx context.Context, file domain.UploadedFile, r io.Reader) (*domain.IngestResult, error) {
	if err := s.ValidateUpload(file.Filename, file.Size); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", file.Filename, err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.ErrEmptyFile
	}

	return s.ingest(ctx, file.Filename, bytes.NewReader(data), func(runID string) {
		key, err := s.archiver.Archive(ctx, runID, file.Filename, data)
		if err != nil {
			log.Warn().Err(err).Str("run_id", runID).Str("file", file.Filename).Msg("Failed to archive upload")
			return
		}
		if key != "" {
			log.Info().Str("run_id", runID).Str("key", key).Msg("Archived upload")
		}
	})
}

// Import ingests a CSV stream from a trusted source such as the CLI. No
// file name or size checks apply.
func (s *InventoryService) Import(ctx context.Context, source string, r io.Reader) (*domain.IngestResult, error) {
	return s.ingest(ctx, source, r, nil)
}

func (s *InventoryService) ingest(ctx context.Context, source string, r io.Reader, onStart func(runID string)) (*domain.IngestResult, error) {
	started := s.now()
	run := &pipeline.IngestRun{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    pipeline.StatusProcessing,
		StartedAt: started,
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to record ingest run")
	}
	if onStart != nil {
		onStart(run.ID)
	}

	logger := log.With().Str("run_id", run.ID).Str("source", source).Logger()
	logger.Info().Msg("Starting inventory ingestion")

	parsed, err := s.parser.Parse(ctx, r)
	if err != nil {
		s.finish(ctx, run, err)
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	run.RowsRead = parsed.RowsRead
	run.RowsSkipped = len(parsed.Skipped)
	run.Truncated = parsed.Truncated
	for reason, n := range parsed.SkipCounts() {
		metrics.RowsSkipped.WithLabelValues(reason).Add(float64(n))
	}
	if parsed.Truncated {
		logger.Warn().Str("stop_reason", parsed.StopReason).Int("rows_read", parsed.RowsRead).Msg("Ingestion stopped early")
	}

	saved, err := s.writer.WriteAll(ctx, parsed.Records)
	run.RecordsSaved = saved
	metrics.RowsAccepted.Add(float64(saved))
	// Batches written before a failure stay committed.
	if saved > 0 {
		s.invalidate(ctx, logger)
	}
	if err != nil {
		s.finish(ctx, run, err)
		return nil, err
	}

	s.finish(ctx, run, nil)

	result := &domain.IngestResult{
		RunID:       run.ID,
		Source:      source,
		Processed:   saved,
		Skipped:     len(parsed.Skipped),
		SkipReasons: parsed.SkipCounts(),
		Truncated:   parsed.Truncated,
		Duration:    s.now().Sub(started),
	}

	logger.Info().
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Inventory ingestion completed")

	return result, nil
}

func (s *InventoryService) invalidate(ctx context.Context, logger zerolog.Logger) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate analytics cache")
	}
}

func (s *InventoryService) finish(ctx context.Context, run *pipeline.IngestRun, err error) {
	run.Finish(err, s.now())
	metrics.IngestRuns.WithLabelValues(string(run.Status)).Inc()
	if updateErr := s.runs.UpdateRun(ctx, run); updateErr != nil {
		log.Warn().Err(updateErr).Str("run_id", run.ID).Msg("Failed to update ingest run")
	}
}

// GetAll returns every stored record.
func (s *InventoryService) GetAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = make([]domain.InventoryRecord, 0)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *InventoryService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// ListRuns returns the most recent ingest runs, newest first.
func (s *InventoryService) ListRuns(ctx context.Context, limit int) ([]pipeline.IngestRun, error) {
	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = make([]pipeline.IngestRun, 0)
	}
	return runs, nil
}
