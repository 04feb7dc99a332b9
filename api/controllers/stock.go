package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmoralesp/fieldstock-backend/api/middleware"
	"github.com/rmoralesp/fieldstock-backend/api/responses"
	"github.com/rmoralesp/fieldstock-backend/api/validators"
	"github.com/rmoralesp/fieldstock-backend/internal/stock"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
	"github.com/rmoralesp/fieldstock-backend/pkg/pagination"
)

type balanceResponse struct {
	BranchID      uuid.UUID       `json:"branch_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockAlert decimal.Decimal `json:"min_stock_alert"`
	Low           bool            `json:"low"`
}

type movementResponse struct {
	MovementID *uuid.UUID      `json:"movement_id,omitempty"`
	Type       string          `json:"type,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	StockAfter decimal.Decimal `json:"stock_after"`
	Clamped    bool            `json:"clamped"`
	NoOp       bool            `json:"no_op"`
}

func newBalanceResponse(balance *models.BranchStock) balanceResponse {
	return balanceResponse{
		BranchID:      balance.BranchID,
		ProductID:     balance.ProductID,
		CurrentStock:  balance.CurrentStock,
		MinStockAlert: balance.MinStockAlert,
		Low:           balance.IsLow(),
	}
}

func newMovementResponse(result *stock.MovementResult) movementResponse {
	resp := movementResponse{
		StockAfter: result.Balance.CurrentStock,
		Clamped:    result.Clamped,
		NoOp:       result.NoOp(),
	}
	if result.Movement != nil {
		id := result.Movement.ID
		resp.MovementID = &id
		resp.Type = string(result.Movement.Type)
		resp.Quantity = result.Movement.Quantity
	}
	return resp
}

// StockGet returns the current balance for a (branch, product) pair.
func StockGet(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, productID, err := pairFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.GetBalance(r.Context(), branchID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBalanceResponse(balance))
	}
}

// StockMovements returns the movement history, newest first.
func StockMovements(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, productID, err := pairFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), branchID, productID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

type stockMoveRequest struct {
	Type     string          `json:"type" validate:"required,oneof=entry exit"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Notes    *string         `json:"notes,omitempty"`
}

// StockMove records a manual entry or exit for the pair.
func StockMove(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, productID, err := pairFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req stockMoveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := stock.MovementInput{
			BranchID:  branchID,
			ProductID: productID,
			Quantity:  req.Quantity,
			UserID:    actingUserID(r),
			Notes:     req.Notes,
		}

		var result *stock.MovementResult
		if req.Type == string(enums.MovementTypeEntry) {
			result, err = svc.AddStock(r.Context(), input)
		} else {
			result, err = svc.RemoveStock(r.Context(), input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newMovementResponse(result))
	}
}

type stockAdjustRequest struct {
	TargetStock decimal.Decimal `json:"target_stock"`
	Notes       *string         `json:"notes,omitempty"`
}

// StockAdjust sets the balance to an absolute target after a physical count.
func StockAdjust(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, productID, err := pairFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req stockAdjustRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdjustStock(r.Context(), stock.AdjustInput{
			BranchID:  branchID,
			ProductID: productID,
			Target:    req.TargetStock,
			UserID:    actingUserID(r),
			Notes:     req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.NoOp() {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, newMovementResponse(result))
	}
}

// StockLow lists the branch's balances at or below their alert threshold.
func StockLow(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := validators.ParseURLUUID(r, "branchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.LowStock(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": entries})
	}
}

func pairFromURL(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	branchID, err := validators.ParseURLUUID(r, "branchID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	productID, err := validators.ParseURLUUID(r, "productID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return branchID, productID, nil
}

// actingUserID resolves the authenticated user, if any. Movements recorded
// without one show up as "System" in the history.
func actingUserID(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
