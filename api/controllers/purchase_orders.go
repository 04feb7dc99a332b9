package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmoralesp/fieldstock-backend/api/responses"
	"github.com/rmoralesp/fieldstock-backend/api/validators"
	"github.com/rmoralesp/fieldstock-backend/internal/purchasing"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	pkgerrors "github.com/rmoralesp/fieldstock-backend/pkg/errors"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
)

type purchaseOrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type purchaseOrderCreateRequest struct {
	SupplierID uuid.UUID                  `json:"supplier_id" validate:"required"`
	Notes      *string                    `json:"notes,omitempty"`
	Items      []purchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func PurchaseOrderCreate(svc purchasing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := validators.ParseURLUUID(r, "branchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req purchaseOrderCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := purchasing.CreateInput{
			BranchID:   branchID,
			SupplierID: req.SupplierID,
			Notes:      req.Notes,
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, purchasing.ItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitCost:  item.UnitCost,
			})
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func PurchaseOrderList(svc purchasing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := validators.ParseURLUUID(r, "branchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListByBranch(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"purchase_orders": orders})
	}
}

func PurchaseOrderGet(svc purchasing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := branchScopedPurchaseOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PurchaseOrderReceive marks the order received, adding every item to the
// branch balance.
func PurchaseOrderReceive(svc purchasing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := branchScopedPurchaseOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateStatus(r.Context(), purchasing.UpdateStatusInput{
			OrderID: order.ID,
			Status:  enums.PurchaseOrderStatusReceived,
			UserID:  actingUserID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type purchaseOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func PurchaseOrderStatus(svc purchasing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := branchScopedPurchaseOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req purchaseOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePurchaseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		updated, err := svc.UpdateStatus(r.Context(), purchasing.UpdateStatusInput{
			OrderID: order.ID,
			Status:  status,
			UserID:  actingUserID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// branchScopedPurchaseOrder loads the order and hides it when it belongs to
// a different branch than the one in the path.
func branchScopedPurchaseOrder(r *http.Request, svc purchasing.Service) (*models.PurchaseOrder, error) {
	branchID, err := validators.ParseURLUUID(r, "branchID")
	if err != nil {
		return nil, err
	}
	orderID, err := validators.ParseURLUUID(r, "orderID")
	if err != nil {
		return nil, err
	}

	order, err := svc.Get(r.Context(), orderID)
	if err != nil {
		return nil, err
	}
	if order.BranchID != branchID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
	}
	return order, nil
}
