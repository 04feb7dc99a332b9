package fieldops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesp/fieldstock-backend/internal/stock"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	pkgerrors "github.com/rmoralesp/fieldstock-backend/pkg/errors"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	tx     txRunner
	stock  stockMover
	logger *logger.Logger
}

// NewService builds the fieldops service with the required dependencies.
func NewService(repo Repository, tx txRunner, stockSvc stockMover, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fieldops repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock mover required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, stock: stockSvc, logger: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.ServiceOrder, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if strings.TrimSpace(input.ClientName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name required")
	}
	if _, err := s.repo.FindBranch(ctx, input.BranchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}

	order := &models.ServiceOrder{
		ID:            uuid.New(),
		BranchID:      input.BranchID,
		ClientName:    strings.TrimSpace(input.ClientName),
		Status:        enums.ServiceOrderStatusScheduled,
		ScheduledDate: input.ScheduledDate,
	}
	if err := s.repo.CreateServiceOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ServiceOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service order id required")
	}
	order, err := s.repo.FindServiceOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service order")
	}
	return order, nil
}

func (s *service) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.ServiceOrder, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	orders, err := s.repo.ListServiceOrders(ctx, branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list service orders")
	}
	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.ServiceOrderStatus) (*models.ServiceOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service order id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service order status")
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.ServiceOrderStatusCanceled && status != enums.ServiceOrderStatusCanceled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "canceled service order cannot change status")
	}

	if err := s.repo.UpdateServiceOrder(ctx, orderID, map[string]any{"status": status}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service order")
	}
	order.Status = status
	return order, nil
}

// AssignMaterial consumes stock from the order's branch and attaches the
// material line to the job, both inside one transaction.
func (s *service) AssignMaterial(ctx context.Context, input AssignInput) (*models.ServiceOrderItem, error) {
	if input.ServiceOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service order id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	var created *models.ServiceOrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindServiceOrder(ctx, input.ServiceOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service order")
		}
		if order.Status == enums.ServiceOrderStatusCompleted || order.Status == enums.ServiceOrderStatusCanceled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "service order is closed")
		}

		item := &models.ServiceOrderItem{
			ID:             uuid.New(),
			ServiceOrderID: order.ID,
			ProductID:      input.ProductID,
			Quantity:       input.Quantity,
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service order item")
		}

		_, err = s.stock.RemoveStockTx(ctx, tx, stock.MovementInput{
			BranchID:  order.BranchID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			UserID:    input.UserID,
			Reference: &stock.Reference{Kind: enums.ReferenceKindServiceOrder, ID: order.ID},
		})
		if err != nil {
			return err
		}

		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReturnMaterial marks the line as returned and restores its quantity to the
// branch balance. Returning the same line twice is a state conflict.
func (s *service) ReturnMaterial(ctx context.Context, input ReturnInput) (*models.ServiceOrderItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	var returned *models.ServiceOrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service order item")
		}
		if item.Returned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "material already returned")
		}

		order, err := repo.FindServiceOrder(ctx, item.ServiceOrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service order")
		}

		if err := repo.UpdateItem(ctx, item.ID, map[string]any{"returned": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service order item")
		}

		_, err = s.stock.AddStockTx(ctx, tx, stock.MovementInput{
			BranchID:  order.BranchID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UserID:    input.UserID,
			Reference: &stock.Reference{Kind: enums.ReferenceKindServiceOrder, ID: order.ID},
		})
		if err != nil {
			return err
		}

		item.Returned = true
		returned = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}
