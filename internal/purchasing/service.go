package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

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
	stock  stockRecorder
	logger *logger.Logger
}

// NewService builds the purchasing service with the required dependencies.
func NewService(repo Repository, tx txRunner, stockSvc stockRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchasing repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, stock: stockSvc, logger: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PurchaseOrder, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if !item.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be greater than zero")
		}
	}

	if _, err := s.repo.FindBranch(ctx, input.BranchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	if _, err := s.repo.FindSupplier(ctx, input.SupplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}

	order := &models.PurchaseOrder{
		ID:         uuid.New(),
		BranchID:   input.BranchID,
		SupplierID: input.SupplierID,
		Status:     enums.PurchaseOrderStatusDraft,
		Notes:      input.Notes,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.PurchaseOrderItem{
			ID:              uuid.New(),
			PurchaseOrderID: order.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitCost:        item.UnitCost,
		})
	}

	if err := s.repo.CreatePurchaseOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	order, err := s.repo.FindPurchaseOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	return order, nil
}

func (s *service) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.PurchaseOrder, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	orders, err := s.repo.ListPurchaseOrders(ctx, branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase orders")
	}
	return orders, nil
}

// UpdateStatus moves the order through its lifecycle. Transitioning into
// received stamps the received date and adds every item to the branch
// balance in the same transaction; moving back to draft clears the stamp.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.PurchaseOrder, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase order status")
	}

	var updated *models.PurchaseOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindPurchaseOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
		}

		if input.Status == enums.PurchaseOrderStatusReceived {
			if order.Status == enums.PurchaseOrderStatusReceived {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order already received")
			}
			if order.Status == enums.PurchaseOrderStatusCanceled {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "canceled purchase order cannot be received")
			}
		}

		updates := map[string]any{"status": input.Status}
		switch input.Status {
		case enums.PurchaseOrderStatusReceived:
			now := time.Now().UTC()
			updates["received_date"] = &now
			order.ReceivedDate = &now
		case enums.PurchaseOrderStatusDraft:
			updates["received_date"] = nil
			order.ReceivedDate = nil
		}

		if err := repo.UpdatePurchaseOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase order")
		}
		order.Status = input.Status

		if input.Status == enums.PurchaseOrderStatusReceived {
			for _, item := range order.Items {
				_, err := s.stock.AddStockTx(ctx, tx, stock.MovementInput{
					BranchID:  order.BranchID,
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					UserID:    input.UserID,
					Reference: &stock.Reference{Kind: enums.ReferenceKindPurchaseOrder, ID: order.ID},
				})
				if err != nil {
					return err
				}
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(
		s.logger.WithFields(ctx, map[string]any{
			"purchase_order_id": updated.ID.String(),
			"status":            string(updated.Status),
		}),
		"purchase order status updated",
	)
	return updated, nil
}
