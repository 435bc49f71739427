package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prajwalbasnet/kinbech-backend/internal/payments"
)

type stubPaymentsService struct {
	overviewFn func(ctx context.Context, from, to time.Time) ([]payments.VendorPaymentsRow, error)
}

func (s stubPaymentsService) Overview(ctx context.Context, from, to time.Time) ([]payments.VendorPaymentsRow, error) {
	if s.overviewFn != nil {
		return s.overviewFn(ctx, from, to)
	}
	return nil, nil
}

func TestAdminPaymentsOverview(t *testing.T) {
	vendorID := uuid.New()
	svc := stubPaymentsService{
		overviewFn: func(ctx context.Context, from, to time.Time) ([]payments.VendorPaymentsRow, error) {
			wantFrom := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			if !from.Equal(wantFrom) {
				t.Fatalf("unexpected from %s", from)
			}
			// The `to` day itself is included, so the bound moves one day forward.
			wantTo := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
			if !to.Equal(wantTo) {
				t.Fatalf("unexpected to %s", to)
			}
			return []payments.VendorPaymentsRow{{
				VendorID:        vendorID,
				GrossSales:      decimal.RequireFromString("1000.00"),
				AdminCommission: decimal.RequireFromString("100.00"),
				VendorEarning:   decimal.RequireFromString("900.00"),
			}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/?from=2026-01-01&to=2026-01-31", nil)
	resp := httptest.NewRecorder()
	AdminPaymentsOverview(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []payments.VendorPaymentsRow `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].VendorID != vendorID {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
}

func TestAdminPaymentsOverview_MissingRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=2026-01-01", nil)
	resp := httptest.NewRecorder()
	AdminPaymentsOverview(stubPaymentsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminPaymentsOverview_BadDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=01/01/2026&to=2026-01-31", nil)
	resp := httptest.NewRecorder()
	AdminPaymentsOverview(stubPaymentsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
