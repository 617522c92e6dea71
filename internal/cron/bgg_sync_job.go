package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ahonkala/meepledex-backend/internal/bggimport"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

const defaultSyncBatchSize = 50

type staleRefresher interface {
	RefreshStale(ctx context.Context, staleAfter time.Duration, limit int) (bggimport.RefreshSummary, error)
}

// BGGSyncJobParams configure the stale-data sync job.
type BGGSyncJobParams struct {
	Logger     *logger.Logger
	Importer   staleRefresher
	StaleAfter time.Duration
	BatchSize  int
}

// NewBGGSyncJob builds the job that refreshes ratings for stale imports.
func NewBGGSyncJob(params BGGSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Importer == nil {
		return nil, fmt.Errorf("importer required")
	}
	if params.StaleAfter <= 0 {
		return nil, fmt.Errorf("stale-after duration required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultSyncBatchSize
	}
	return &bggSyncJob{
		logg:       params.Logger,
		importer:   params.Importer,
		staleAfter: params.StaleAfter,
		batchSize:  batch,
	}, nil
}

type bggSyncJob struct {
	logg       *logger.Logger
	importer   staleRefresher
	staleAfter time.Duration
	batchSize  int
}

func (j *bggSyncJob) Name() string { return "bgg-sync" }

func (j *bggSyncJob) Run(ctx context.Context) error {
	summary, err := j.importer.RefreshStale(ctx, j.staleAfter, j.batchSize)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"refreshed": summary.Refreshed,
		"failed":    summary.Failed,
	})
	if err != nil {
		return fmt.Errorf("bgg sync: %w", err)
	}
	j.logg.Info(logCtx, "bgg sync complete")
	return nil
}
