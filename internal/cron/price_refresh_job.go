package cron

import (
	"context"
	"fmt"

	"github.com/ahonkala/meepledex-backend/internal/buylist"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

type priceRefresher interface {
	RefreshPrices(ctx context.Context) (buylist.RefreshSummary, error)
}

// PriceRefreshJobParams configure the buy-list price refresh job.
type PriceRefreshJobParams struct {
	Logger  *logger.Logger
	BuyList priceRefresher
}

// NewPriceRefreshJob builds the job that re-quotes watched buy-list items.
func NewPriceRefreshJob(params PriceRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.BuyList == nil {
		return nil, fmt.Errorf("buy list service required")
	}
	return &priceRefreshJob{
		logg:    params.Logger,
		buyList: params.BuyList,
	}, nil
}

type priceRefreshJob struct {
	logg    *logger.Logger
	buyList priceRefresher
}

func (j *priceRefreshJob) Name() string { return "buylist-price-refresh" }

func (j *priceRefreshJob) Run(ctx context.Context) error {
	summary, err := j.buyList.RefreshPrices(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"checked": summary.Checked,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	})
	if err != nil {
		return fmt.Errorf("price refresh: %w", err)
	}
	j.logg.Info(logCtx, "price refresh complete")
	return nil
}
