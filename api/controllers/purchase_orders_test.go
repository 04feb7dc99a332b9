package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rmoralesp/fieldstock-backend/internal/purchasing"
	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
	pkgerrors "github.com/rmoralesp/fieldstock-backend/pkg/errors"
)

func orderRequest(method, target string, branchID, orderID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("branchID", branchID.String())
	routeCtx.URLParams.Add("orderID", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestPurchaseOrderReceive(t *testing.T) {
	logg := stockTestLogger()
	branchID := uuid.New()
	orderID := uuid.New()

	t.Run("marks the order received", func(t *testing.T) {
		stub := &stubPurchasingService{
			order: &models.PurchaseOrder{ID: orderID, BranchID: branchID, Status: enums.PurchaseOrderStatusDraft},
		}
		req := orderRequest(http.MethodPost, "/purchase-orders/"+orderID.String()+"/receive", branchID, orderID)
		rec := httptest.NewRecorder()
		PurchaseOrderReceive(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastStatus != enums.PurchaseOrderStatusReceived {
			t.Fatalf("expected received status, got %q", stub.lastStatus)
		}
	})

	t.Run("hides orders from other branches", func(t *testing.T) {
		stub := &stubPurchasingService{
			order: &models.PurchaseOrder{ID: orderID, BranchID: uuid.New(), Status: enums.PurchaseOrderStatusDraft},
		}
		req := orderRequest(http.MethodPost, "/purchase-orders/"+orderID.String()+"/receive", branchID, orderID)
		rec := httptest.NewRecorder()
		PurchaseOrderReceive(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for cross-branch order, got %d", rec.Code)
		}
		if stub.lastStatus != "" {
			t.Fatalf("status must not change for a hidden order")
		}
	})

	t.Run("propagates state conflicts", func(t *testing.T) {
		stub := &stubPurchasingService{
			order:     &models.PurchaseOrder{ID: orderID, BranchID: branchID, Status: enums.PurchaseOrderStatusReceived},
			updateErr: pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order already received"),
		}
		req := orderRequest(http.MethodPost, "/purchase-orders/"+orderID.String()+"/receive", branchID, orderID)
		rec := httptest.NewRecorder()
		PurchaseOrderReceive(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 on double receive, got %d", rec.Code)
		}
	})
}

type stubPurchasingService struct {
	order      *models.PurchaseOrder
	updateErr  error
	lastStatus enums.PurchaseOrderStatus
}

func (s *stubPurchasingService) Create(ctx context.Context, input purchasing.CreateInput) (*models.PurchaseOrder, error) {
	panic("unimplemented")
}

func (s *stubPurchasingService) Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	if s.order == nil || s.order.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
	}
	return s.order, nil
}

func (s *stubPurchasingService) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.PurchaseOrder, error) {
	panic("unimplemented")
}

func (s *stubPurchasingService) UpdateStatus(ctx context.Context, input purchasing.UpdateStatusInput) (*models.PurchaseOrder, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.lastStatus = input.Status
	order := *s.order
	order.Status = input.Status
	return &order, nil
}
