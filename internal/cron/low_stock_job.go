package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
	"github.com/rmoralesp/fieldstock-backend/pkg/metrics"
)

// lowStockReader is the slice of the stock repository the scan needs.
type lowStockReader interface {
	ListBranches(ctx context.Context) ([]models.Branch, error)
	CountLowStock(ctx context.Context, branchID uuid.UUID) (int64, error)
}

// LowStockScanJobParams configure the scheduled low-stock scan.
type LowStockScanJobParams struct {
	Logger  *logger.Logger
	Repo    lowStockReader
	Metrics *metrics.StockMetrics
}

type lowStockScanJob struct {
	logg    *logger.Logger
	repo    lowStockReader
	metrics *metrics.StockMetrics
}

// NewLowStockScanJob constructs the job that refreshes the low-stock gauge
// per branch and surfaces depleted branches in the log.
func NewLowStockScanJob(params LowStockScanJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &lowStockScanJob{
		logg:    params.Logger,
		repo:    params.Repo,
		metrics: params.Metrics,
	}, nil
}

func (j *lowStockScanJob) Name() string {
	return "low_stock_scan"
}

// Run counts balances at or below their alert threshold for every branch.
// A failing branch does not stop the scan; errors are aggregated.
func (j *lowStockScanJob) Run(ctx context.Context) error {
	branches, err := j.repo.ListBranches(ctx)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	var errs error
	for _, branch := range branches {
		count, err := j.repo.CountLowStock(ctx, branch.ID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s: %w", branch.ID, err))
			continue
		}

		j.metrics.SetLowStock(branch.ID.String(), float64(count))
		if count > 0 {
			lctx := j.logg.WithFields(ctx, map[string]any{
				"branch_id":   branch.ID.String(),
				"branch_name": branch.Name,
				"low_items":   count,
			})
			j.logg.Warn(lctx, "branch has items at or below the alert threshold")
		}
	}
	return errs
}
