package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgdb "github.com/rmoralesp/fieldstock-backend/pkg/db"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	pkgerrors "github.com/rmoralesp/fieldstock-backend/pkg/errors"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
	"github.com/rmoralesp/fieldstock-backend/pkg/metrics"
	"github.com/rmoralesp/fieldstock-backend/pkg/pagination"
)

// SystemUserName is shown in the history when a movement has no acting user.
const SystemUserName = "System"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo         Repository
	tx           txRunner
	logger       *logger.Logger
	metrics      *metrics.StockMetrics
	defaultAlert decimal.Decimal
}

// NewService builds the stock service with the required dependencies.
// Metrics may be nil; instrumentation then becomes a no-op.
func NewService(repo Repository, tx txRunner, logg *logger.Logger, stockMetrics *metrics.StockMetrics, defaultMinAlert decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		logger:       logg,
		metrics:      stockMetrics,
		defaultAlert: defaultMinAlert,
	}, nil
}

func (s *service) AddStock(ctx context.Context, input MovementInput) (*MovementResult, error) {
	return s.recordMovement(ctx, nil, input, enums.MovementTypeEntry)
}

func (s *service) RemoveStock(ctx context.Context, input MovementInput) (*MovementResult, error) {
	return s.recordMovement(ctx, nil, input, enums.MovementTypeExit)
}

// AddStockTx records an entry inside the caller's transaction. Document flows
// use it so the status change and its stock effect commit atomically.
func (s *service) AddStockTx(ctx context.Context, tx *gorm.DB, input MovementInput) (*MovementResult, error) {
	return s.recordMovement(ctx, tx, input, enums.MovementTypeEntry)
}

// RemoveStockTx records an exit inside the caller's transaction.
func (s *service) RemoveStockTx(ctx context.Context, tx *gorm.DB, input MovementInput) (*MovementResult, error) {
	return s.recordMovement(ctx, tx, input, enums.MovementTypeExit)
}

// recordMovement is the single write path for entries and exits. It locks the
// balance row, applies the delta, floors the result at zero and appends the
// ledger row inside one transaction. When tx is nil a fresh transaction wraps
// the write; otherwise the caller's transaction is used as-is.
func (s *service) recordMovement(ctx context.Context, tx *gorm.DB, input MovementInput, movementType enums.MovementType) (*MovementResult, error) {
	if err := s.validatePair(input.BranchID, input.ProductID); err != nil {
		return nil, err
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if err := input.Reference.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reference")
	}

	var result *MovementResult
	run := func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensurePairExists(ctx, repo, input.BranchID, input.ProductID); err != nil {
			return err
		}

		balance, err := s.lockOrInitBalance(ctx, repo, input.BranchID, input.ProductID)
		if err != nil {
			return err
		}

		newStock := balance.CurrentStock.Add(input.Quantity)
		clamped := false
		if movementType == enums.MovementTypeExit {
			newStock = balance.CurrentStock.Sub(input.Quantity)
			if newStock.IsNegative() {
				clamped = true
				newStock = decimal.Zero
			}
		}

		balance.CurrentStock = newStock
		if err := repo.SaveBalance(ctx, balance); err != nil {
			return wrapSaveBalance(err)
		}

		movement := s.buildMovement(input, movementType, input.Quantity, newStock)
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append movement")
		}

		result = &MovementResult{Movement: movement, Balance: balance, Clamped: clamped}
		return nil
	}

	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = s.tx.WithTx(ctx, run)
	}
	if err != nil {
		return nil, err
	}

	if result.Clamped {
		lctx := s.logger.WithFields(ctx, map[string]any{
			"branch_id":  input.BranchID.String(),
			"product_id": input.ProductID.String(),
			"requested":  input.Quantity.String(),
		})
		s.logger.Warn(lctx, "stock removal exceeded balance, clamped to zero")
		s.metrics.IncClamp()
	}
	s.metrics.IncMovement(string(movementType))
	return result, nil
}

// AdjustStock sets the balance to an absolute target. Matching the current
// balance is an idempotent no-op; otherwise one adjustment movement records
// the absolute difference with stock_after equal to the target.
func (s *service) AdjustStock(ctx context.Context, input AdjustInput) (*MovementResult, error) {
	if err := s.validatePair(input.BranchID, input.ProductID); err != nil {
		return nil, err
	}
	if input.Target.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target stock cannot be negative")
	}
	if err := input.Reference.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reference")
	}

	var result *MovementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.ensurePairExists(ctx, repo, input.BranchID, input.ProductID); err != nil {
			return err
		}

		balance, err := s.lockOrInitBalance(ctx, repo, input.BranchID, input.ProductID)
		if err != nil {
			return err
		}

		if balance.CurrentStock.Equal(input.Target) {
			result = &MovementResult{Balance: balance}
			return nil
		}

		diff := input.Target.Sub(balance.CurrentStock).Abs()
		balance.CurrentStock = input.Target
		if err := repo.SaveBalance(ctx, balance); err != nil {
			return wrapSaveBalance(err)
		}

		movement := s.buildMovement(MovementInput{
			BranchID:  input.BranchID,
			ProductID: input.ProductID,
			UserID:    input.UserID,
			Reference: input.Reference,
			Notes:     input.Notes,
		}, enums.MovementTypeAdjustment, diff, input.Target)
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append movement")
		}

		result = &MovementResult{Movement: movement, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.NoOp() {
		s.metrics.IncMovement(string(enums.MovementTypeAdjustment))
	}
	return result, nil
}

// GetBalance returns the stored balance, or a zero balance with the default
// alert threshold when the pair has never moved. Reading never creates rows.
func (s *service) GetBalance(ctx context.Context, branchID, productID uuid.UUID) (*models.BranchStock, error) {
	if err := s.validatePair(branchID, productID); err != nil {
		return nil, err
	}
	if err := s.ensurePairExists(ctx, s.repo, branchID, productID); err != nil {
		return nil, err
	}

	balance, err := s.repo.FindBalance(ctx, branchID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.initBalance(branchID, productID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
	}
	return balance, nil
}

func (s *service) History(ctx context.Context, branchID, productID uuid.UUID, params pagination.Params) (*HistoryList, error) {
	if err := s.validatePair(branchID, productID); err != nil {
		return nil, err
	}
	if err := s.ensurePairExists(ctx, s.repo, branchID, productID); err != nil {
		return nil, err
	}

	query := MovementQuery{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	page, err := s.repo.ListMovements(ctx, branchID, productID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements")
	}

	userIDs := make([]uuid.UUID, 0, len(page.Movements))
	seen := map[uuid.UUID]bool{}
	for _, m := range page.Movements {
		if m.UserID != nil && !seen[*m.UserID] {
			seen[*m.UserID] = true
			userIDs = append(userIDs, *m.UserID)
		}
	}
	names, err := s.repo.FindUserNames(ctx, userIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user names")
	}

	entries := make([]HistoryEntry, 0, len(page.Movements))
	for _, m := range page.Movements {
		userName := SystemUserName
		if m.UserID != nil {
			if name, ok := names[*m.UserID]; ok {
				userName = name
			}
		}
		entries = append(entries, HistoryEntry{
			ID:             m.ID,
			Type:           m.Type,
			Quantity:       m.Quantity,
			StockAfter:     m.StockAfter,
			UserName:       userName,
			ReferenceKind:  m.ReferenceKind,
			ReferenceID:    m.ReferenceID,
			ReferenceLabel: ReferenceFrom(m.ReferenceKind, m.ReferenceID).Label(),
			Notes:          m.Notes,
			CreatedAt:      m.CreatedAt,
		})
	}
	return &HistoryList{Movements: entries, NextCursor: page.NextCursor}, nil
}

func (s *service) LowStock(ctx context.Context, branchID uuid.UUID) ([]LowStockEntry, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if _, err := s.repo.FindBranch(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}

	entries, err := s.repo.ListLowStock(ctx, branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return entries, nil
}

func (s *service) validatePair(branchID, productID uuid.UUID) error {
	if branchID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return nil
}

func (s *service) ensurePairExists(ctx context.Context, repo Repository, branchID, productID uuid.UUID) error {
	if _, err := repo.FindBranch(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	if _, err := repo.FindProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return nil
}

// lockOrInitBalance locks the existing balance row, or initializes a fresh
// zero balance when the pair has never been stocked. The fresh row is not
// persisted until the caller saves it with the new stock applied.
func (s *service) lockOrInitBalance(ctx context.Context, repo Repository, branchID, productID uuid.UUID) (*models.BranchStock, error) {
	balance, err := repo.FindBalanceForUpdate(ctx, branchID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.initBalance(branchID, productID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock balance")
	}
	return balance, nil
}

func (s *service) initBalance(branchID, productID uuid.UUID) *models.BranchStock {
	return &models.BranchStock{
		ID:            uuid.New(),
		BranchID:      branchID,
		ProductID:     productID,
		CurrentStock:  decimal.Zero,
		MinStockAlert: s.defaultAlert,
	}
}

func (s *service) buildMovement(input MovementInput, movementType enums.MovementType, quantity, stockAfter decimal.Decimal) *models.StockMovement {
	movement := &models.StockMovement{
		ID:         uuid.New(),
		BranchID:   input.BranchID,
		ProductID:  input.ProductID,
		UserID:     input.UserID,
		Type:       movementType,
		Quantity:   quantity,
		StockAfter: stockAfter,
		Notes:      input.Notes,
	}
	if input.Reference != nil {
		kind := input.Reference.Kind
		refID := input.Reference.ID
		movement.ReferenceKind = &kind
		movement.ReferenceID = &refID
	}
	return movement
}

// wrapSaveBalance distinguishes the pair-uniqueness race from other write
// failures: two first movements for the same pair can both miss the locked
// read and race on the insert.
func wrapSaveBalance(err error) error {
	if pkgdb.IsUniqueViolation(err, "idx_branch_stocks_pair") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "balance already initialized concurrently, retry the movement")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save balance")
}
