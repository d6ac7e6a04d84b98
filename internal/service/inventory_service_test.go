package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/pipeline"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository/memory"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kaggleCSV = "date,storeId,productId,category,region,inventoryLevel,unitsSold,unitsOrdered,demandForecast,price,discount,weatherCondition,holidayOrPromotion,competitorPricing,seasonality\n" +
	"2024-01-01,S1,P1,Electronics,East,5,2,3,20,100.0,0.0,Sunny,None,90.0,Winter\n" +
	"2024-01-02,S2,P2,Toys,West,150,1,0,10,2.0,0.0,Rainy,None,2.5,Summer\n" +
	"only-one-cell\n"

var ingestCfg = config.IngestConfig{MaxRows: 100, TimeoutMs: 10000, BatchSize: 1, DefaultDate: "2024-01-01"}

type spyCache struct {
	invalidations int
	store         map[string]interface{}
}

func newSpyCache() *spyCache { return &spyCache{store: map[string]interface{}{}} }

func (c *spyCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (c *spyCache) Set(_ context.Context, name string, value interface{}) error {
	c.store[name] = value
	return nil
}

func (c *spyCache) InvalidateAll(context.Context) error {
	c.invalidations++
	return nil
}

func (c *spyCache) Close() error { return nil }

// jsonCache keeps values the way the redis cache does, as JSON.
type jsonCache struct {
	data map[string][]byte
}

func (c *jsonCache) Get(_ context.Context, name string, dest interface{}) (bool, error) {
	raw, ok := c.data[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *jsonCache) Set(_ context.Context, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[name] = raw
	return nil
}

func (c *jsonCache) InvalidateAll(context.Context) error {
	c.data = map[string][]byte{}
	return nil
}

func (c *jsonCache) Close() error { return nil }

type spyArchiver struct {
	files map[string][]byte
	err   error
}

func (a *spyArchiver) Archive(_ context.Context, runID, filename string, data []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.files[runID+"/"+filename] = data
	return runID + "/" + filename, nil
}

type failingRepo struct {
	*memory.InventoryRepository
	failOnCall int
	calls      int
}

func (r *failingRepo) SaveBatch(ctx context.Context, records []domain.InventoryRecord) error {
	r.calls++
	if r.calls == r.failOnCall {
		return errors.New("disk full")
	}
	return r.InventoryRepository.SaveBatch(ctx, records)
}

func TestInventoryService_Upload(t *testing.T) {
	repo := memory.NewInventoryRepository()
	runs := pipeline.NewMemoryRecorder()
	spy := newSpyCache()
	archive := &spyArchiver{files: map[string][]byte{}}
	svc := service.NewInventoryService(repo, runs, spy, archive, ingestCfg, 1<<20)

	res, err := svc.Upload(context.Background(), domain.UploadedFile{Filename: "retail.CSV", Size: int64(len(kaggleCSV))}, strings.NewReader(kaggleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, map[string]int{"too_few_cells": 1}, res.SkipReasons)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "retail.CSV", res.Source)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "P1", all[0].ProductID)
	assert.Equal(t, 5, all[0].InventoryLevel)

	assert.Equal(t, 1, spy.invalidations)
	assert.Equal(t, []byte(kaggleCSV), archive.files[res.RunID+"/retail.CSV"])

	history, err := svc.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, pipeline.StatusCompleted, history[0].Status)
	assert.Equal(t, 2, history[0].RecordsSaved)
	assert.Equal(t, 1, history[0].RowsSkipped)
	assert.NotNil(t, history[0].CompletedAt)
}

func TestInventoryService_UploadValidation(t *testing.T) {
	svc := service.NewInventoryService(memory.NewInventoryRepository(), nil, nil, nil, ingestCfg, 64)

	tests := []struct {
		name string
		file domain.UploadedFile
		body string
		want error
	}{
		{"wrong extension", domain.UploadedFile{Filename: "data.xlsx", Size: 10}, "a,b", domain.ErrInvalidFileType},
		{"no extension", domain.UploadedFile{Filename: "csv", Size: 10}, "a,b", domain.ErrInvalidFileType},
		{"declared too large", domain.UploadedFile{Filename: "a.csv", Size: 65}, "a,b", domain.ErrFileTooLarge},
		{"body too large", domain.UploadedFile{Filename: "a.csv", Size: 10}, strings.Repeat("x", 65), domain.ErrFileTooLarge},
		{"empty", domain.UploadedFile{Filename: "a.csv", Size: 0}, "", domain.ErrEmptyFile},
		{"blank body", domain.UploadedFile{Filename: "a.csv", Size: 3}, " \n ", domain.ErrEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tt.file, strings.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInventoryService_ArchiveFailureDoesNotFailUpload(t *testing.T) {
	archive := &spyArchiver{err: errors.New("bucket unreachable")}
	svc := service.NewInventoryService(memory.NewInventoryRepository(), nil, nil, archive, ingestCfg, 1<<20)

	res, err := svc.Upload(context.Background(), domain.UploadedFile{Filename: "a.csv", Size: int64(len(kaggleCSV))}, strings.NewReader(kaggleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
}

func TestInventoryService_BatchFailureKeepsCommittedBatches(t *testing.T) {
	repo := &failingRepo{InventoryRepository: memory.NewInventoryRepository(), failOnCall: 2}
	runs := pipeline.NewMemoryRecorder()
	spy := newSpyCache()
	svc := service.NewInventoryService(repo, runs, spy, nil, ingestCfg, 1<<20)

	_, err := svc.Import(context.Background(), "cli", strings.NewReader(kaggleCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, spy.invalidations)

	history, err := runs.ListRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, pipeline.StatusFailed, history[0].Status)
	assert.Equal(t, 1, history[0].RecordsSaved)
	assert.Contains(t, history[0].ErrorMessage, "disk full")
}

func TestInventoryService_FirstBatchFailureLeavesCache(t *testing.T) {
	repo := &failingRepo{InventoryRepository: memory.NewInventoryRepository(), failOnCall: 1}
	spy := newSpyCache()
	svc := service.NewInventoryService(repo, nil, spy, nil, ingestCfg, 1<<20)

	_, err := svc.Import(context.Background(), "cli", strings.NewReader(kaggleCSV))
	require.Error(t, err)
	assert.Zero(t, spy.invalidations)
}

func TestInventoryService_PartialImportRefreshesDashboard(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{InventoryRepository: memory.NewInventoryRepository(), failOnCall: 4}
	shared := &jsonCache{data: map[string][]byte{}}
	inventory := service.NewInventoryService(repo, nil, shared, nil, ingestCfg, 1<<20)
	analytics := service.NewAnalyticsService(repo, shared)

	_, err := inventory.Import(ctx, "first", strings.NewReader(kaggleCSV))
	require.NoError(t, err)

	before, err := analytics.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, before.AIInsights)

	second := "productId,inventoryLevel\nP3,4\nP4,9\n"
	_, err = inventory.Import(ctx, "second", strings.NewReader(second))
	require.Error(t, err)

	after, err := analytics.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, after.AIInsights)
	assert.Equal(t, 3, after.TotalProducts)
}

func TestInventoryService_ImportHeaderOnly(t *testing.T) {
	svc := service.NewInventoryService(memory.NewInventoryRepository(), nil, nil, nil, ingestCfg, 0)

	res, err := svc.Import(context.Background(), "empty.csv", strings.NewReader("productId,inventoryLevel\n"))
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
	assert.Nil(t, res.SkipReasons)
	assert.Equal(t, int64(50<<20), svc.MaxUploadBytes())
}
