package stock

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
)

// balanceReads tallies every balance access made through the repository, split
// by whether the locked read ran on the transaction-scoped repository.
type balanceReads struct {
	lockedInTx int
	lockedNoTx int
	plain      int
	saves      int
	movements  int
}

// lockTrackingRepo satisfies Repository in memory so the read each write path
// uses for the balance row can be observed directly.
type lockTrackingRepo struct {
	reads    *balanceReads
	branch   *models.Branch
	product  *models.Product
	balance  *models.BranchStock
	txScoped bool
}

func (r *lockTrackingRepo) WithTx(_ *gorm.DB) Repository {
	scoped := *r
	scoped.txScoped = true
	return &scoped
}

func (r *lockTrackingRepo) FindBranch(_ context.Context, _ uuid.UUID) (*models.Branch, error) {
	return r.branch, nil
}

func (r *lockTrackingRepo) FindProduct(_ context.Context, _ uuid.UUID) (*models.Product, error) {
	return r.product, nil
}

func (r *lockTrackingRepo) FindBalance(_ context.Context, _, _ uuid.UUID) (*models.BranchStock, error) {
	r.reads.plain++
	balance := *r.balance
	return &balance, nil
}

func (r *lockTrackingRepo) FindBalanceForUpdate(_ context.Context, _, _ uuid.UUID) (*models.BranchStock, error) {
	if r.txScoped {
		r.reads.lockedInTx++
	} else {
		r.reads.lockedNoTx++
	}
	balance := *r.balance
	return &balance, nil
}

func (r *lockTrackingRepo) SaveBalance(_ context.Context, balance *models.BranchStock) error {
	r.reads.saves++
	*r.balance = *balance
	return nil
}

func (r *lockTrackingRepo) CreateMovement(_ context.Context, _ *models.StockMovement) error {
	r.reads.movements++
	return nil
}

func (r *lockTrackingRepo) ListBranches(_ context.Context) ([]models.Branch, error) {
	panic("unimplemented")
}

func (r *lockTrackingRepo) ListMovements(_ context.Context, _, _ uuid.UUID, _ MovementQuery) (*MovementList, error) {
	panic("unimplemented")
}

func (r *lockTrackingRepo) ListLowStock(_ context.Context, _ uuid.UUID) ([]LowStockEntry, error) {
	panic("unimplemented")
}

func (r *lockTrackingRepo) CountLowStock(_ context.Context, _ uuid.UUID) (int64, error) {
	panic("unimplemented")
}

func (r *lockTrackingRepo) FindUserNames(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]string, error) {
	panic("unimplemented")
}

// passthroughTx runs the transactional closure immediately, standing in for
// the database client.
type passthroughTx struct {
	runs int
}

func (p *passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	p.runs++
	return fn(&gorm.DB{})
}

// Concurrent movements for the same pair serialize on the locked balance row,
// so every write path must read the balance with FindBalanceForUpdate on the
// transaction-scoped repository and never through the unlocked read.
func TestWritePathsLockBalanceRow(t *testing.T) {
	branchID, productID := uuid.New(), uuid.New()

	input := MovementInput{
		BranchID:  branchID,
		ProductID: productID,
		Quantity:  decimal.NewFromInt(3),
	}

	cases := []struct {
		name string
		run  func(t *testing.T, svc Service)
	}{
		{"add", func(t *testing.T, svc Service) {
			_, err := svc.AddStock(context.Background(), input)
			require.NoError(t, err)
		}},
		{"remove", func(t *testing.T, svc Service) {
			_, err := svc.RemoveStock(context.Background(), input)
			require.NoError(t, err)
		}},
		{"adjust", func(t *testing.T, svc Service) {
			_, err := svc.AdjustStock(context.Background(), AdjustInput{
				BranchID:  branchID,
				ProductID: productID,
				Target:    decimal.NewFromInt(1),
			})
			require.NoError(t, err)
		}},
		{"add in caller tx", func(t *testing.T, svc Service) {
			_, err := svc.AddStockTx(context.Background(), &gorm.DB{}, input)
			require.NoError(t, err)
		}},
		{"remove in caller tx", func(t *testing.T, svc Service) {
			_, err := svc.RemoveStockTx(context.Background(), &gorm.DB{}, input)
			require.NoError(t, err)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reads := &balanceReads{}
			repo := &lockTrackingRepo{
				reads:   reads,
				branch:  &models.Branch{ID: branchID, Name: "Centro"},
				product: &models.Product{ID: productID, SKU: "CP-15", Name: "Copper Pipe 15mm"},
				balance: &models.BranchStock{
					ID:            uuid.New(),
					BranchID:      branchID,
					ProductID:     productID,
					CurrentStock:  decimal.NewFromInt(10),
					MinStockAlert: decimal.NewFromInt(5),
				},
			}
			logg := logger.New(logger.Options{Output: io.Discard})
			svc, err := NewService(repo, &passthroughTx{}, logg, nil, decimal.NewFromInt(5))
			require.NoError(t, err)

			tc.run(t, svc)

			assert.Equal(t, 1, reads.lockedInTx, "balance must be read under lock inside the transaction")
			assert.Zero(t, reads.lockedNoTx, "locked read must run on the tx-scoped repository")
			assert.Zero(t, reads.plain, "write paths must not use the unlocked read")
			assert.Equal(t, 1, reads.saves)
			assert.Equal(t, 1, reads.movements)
		})
	}
}

// Two removals applied back to back both land on the same balance row; the
// second must observe the first's result, never the starting balance.
func TestSequentialRemovalsCompound(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.AddStock(ctx, f.movementInput(20))
	require.NoError(t, err)

	first, err := f.service.RemoveStock(ctx, f.movementInput(6))
	require.NoError(t, err)
	second, err := f.service.RemoveStock(ctx, f.movementInput(6))
	require.NoError(t, err)

	assert.True(t, first.Balance.CurrentStock.Equal(decimal.NewFromInt(14)))
	assert.True(t, second.Balance.CurrentStock.Equal(decimal.NewFromInt(8)))
	assert.True(t, f.balance(t).CurrentStock.Equal(decimal.NewFromInt(8)))
}
