package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmoralesp/fieldstock-backend/api/responses"
	"github.com/rmoralesp/fieldstock-backend/api/validators"
	"github.com/rmoralesp/fieldstock-backend/internal/fieldops"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	pkgerrors "github.com/rmoralesp/fieldstock-backend/pkg/errors"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
)

type serviceOrderCreateRequest struct {
	ClientName    string     `json:"client_name" validate:"required"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
}

func ServiceOrderCreate(svc fieldops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := validators.ParseURLUUID(r, "branchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req serviceOrderCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), fieldops.CreateInput{
			BranchID:      branchID,
			ClientName:    req.ClientName,
			ScheduledDate: req.ScheduledDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func ServiceOrderList(svc fieldops.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, map[string]any{"service_orders": orders})
	}
}

func ServiceOrderGet(svc fieldops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := branchScopedServiceOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type serviceOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func ServiceOrderStatus(svc fieldops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := branchScopedServiceOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req serviceOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseServiceOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		updated, err := svc.UpdateStatus(r.Context(), order.ID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

type materialAssignRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

// MaterialAssign attaches material to the job and consumes it from the
// branch balance.
func MaterialAssign(svc fieldops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := branchScopedServiceOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req materialAssignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AssignMaterial(r.Context(), fieldops.AssignInput{
			ServiceOrderID: order.ID,
			ProductID:      req.ProductID,
			Quantity:       req.Quantity,
			UserID:         actingUserID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// MaterialReturn sends an assigned line back to the shelf.
func MaterialReturn(svc fieldops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := branchScopedServiceOrder(r, svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseURLUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.ReturnMaterial(r.Context(), fieldops.ReturnInput{
			ItemID: itemID,
			UserID: actingUserID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func branchScopedServiceOrder(r *http.Request, svc fieldops.Service) (*models.ServiceOrder, error) {
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
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service order not found")
	}
	return order, nil
}
