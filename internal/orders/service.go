package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prajwalbasnet/kinbech-backend/internal/earnings"
	"github.com/prajwalbasnet/kinbech-backend/internal/invoices"
	"github.com/prajwalbasnet/kinbech-backend/pkg/config"
	"github.com/prajwalbasnet/kinbech-backend/pkg/db/models"
	"github.com/prajwalbasnet/kinbech-backend/pkg/enums"
	apperrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
	"github.com/prajwalbasnet/kinbech-backend/pkg/logger"
	"github.com/prajwalbasnet/kinbech-backend/pkg/money"
	"github.com/prajwalbasnet/kinbech-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives orders through the fulfillment lifecycle.
type Service interface {
	ChangeStatus(ctx context.Context, input ChangeStatusInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, input ListInput) (*OrderPage, error)
	ItemsBreakdown(ctx context.Context, orderNumber string) ([]ItemBreakdown, error)
	DeleteOrder(ctx context.Context, orderNumber string) error
}

// ChangeStatusInput carries a requested transition. Nil fields are left as-is.
type ChangeStatusInput struct {
	OrderNumber   string
	Status        *string
	PaymentStatus *string
	AdminNote     *string
}

// ListInput narrows and pages the order listing.
type ListInput struct {
	Status        *string
	PaymentStatus *string
	Limit         int
	Cursor        string
}

// OrderPage is one cursor page of orders.
type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ItemBreakdown is one order line with its derived totals.
type ItemBreakdown struct {
	Product       string          `json:"product"`
	Variant       *string         `json:"variant,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	EstimatedDays *string         `json:"estimated_days,omitempty"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

type service struct {
	repo     Repository
	tx       txRunner
	invoices invoices.Service
	earnings earnings.Service
	ledger   config.LedgerConfig
	logger   *logger.Logger
}

// NewService wires an orders service with its collaborators.
func NewService(
	repo Repository,
	tx txRunner,
	invoiceSvc invoices.Service,
	earningsSvc earnings.Service,
	ledger config.LedgerConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if invoiceSvc == nil {
		return nil, fmt.Errorf("invoice service required")
	}
	if earningsSvc == nil {
		return nil, fmt.Errorf("earnings service required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		invoices: invoiceSvc,
		earnings: earningsSvc,
		ledger:   ledger,
		logger:   logg,
	}, nil
}

// ChangeStatus runs the transition pipeline in one transaction: validate the
// requested values, apply the status rules, recompute totals from the items,
// sync invoices, and post earnings once the order is delivered and paid.
func (s *service) ChangeStatus(ctx context.Context, input ChangeStatusInput) (*models.Order, error) {
	if strings.TrimSpace(input.OrderNumber) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "order number is required")
	}
	if input.Status == nil && input.PaymentStatus == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "nothing to change: provide status and/or payment_status")
	}

	var status *enums.OrderStatus
	if input.Status != nil {
		parsed, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid order status")
		}
		status = &parsed
	}

	var paymentStatus *enums.PaymentStatus
	if input.PaymentStatus != nil {
		parsed, err := enums.ParsePaymentStatus(*input.PaymentStatus)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid payment status")
		}
		paymentStatus = &parsed
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByOrderNumber(ctx, input.OrderNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "order not found")
			}
			return apperrors.Wrap(apperrors.CodeDependency, err, "load order")
		}

		applyTransition(order, status, paymentStatus, time.Now().UTC())
		if input.AdminNote != nil {
			order.AdminNotes = input.AdminNote
		}
		recomputeTotals(order, s.ledger.TaxRate())

		if err := repo.Save(ctx, order); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "save order")
		}

		synced, err := s.invoices.WithTx(tx).SyncPaymentStatus(ctx, order.ID, order.PaymentStatus)
		if err != nil {
			return err
		}
		if synced == 0 && s.logger != nil {
			s.logger.Debug(ctx, "no invoices attached to order")
		}

		if _, err := s.earnings.WithTx(tx).PostOrder(ctx, order); err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) GetOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "order number is required")
	}

	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, input ListInput) (*OrderPage, error) {
	filter := ListFilter{}
	if input.Status != nil {
		parsed, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid order status")
		}
		filter.Status = &parsed
	}
	if input.PaymentStatus != nil {
		parsed, err := enums.ParsePaymentStatus(*input.PaymentStatus)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid payment status")
		}
		filter.PaymentStatus = &parsed
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	orders, err := s.repo.List(ctx, filter, cursor, limit+1)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list orders")
	}

	page := &OrderPage{Orders: orders}
	if len(orders) > limit {
		page.Orders = orders[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) ItemsBreakdown(ctx context.Context, orderNumber string) ([]ItemBreakdown, error) {
	order, err := s.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	breakdown := make([]ItemBreakdown, 0, len(order.Items))
	for _, item := range order.Items {
		breakdown = append(breakdown, ItemBreakdown{
			Product:       item.ProductName,
			Variant:       item.VariantName,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			ShippingCost:  item.ShippingCost,
			EstimatedDays: item.EstimatedDays,
			LineTotal:     item.LineTotal(),
		})
	}
	return breakdown, nil
}

// DeleteOrder removes an order that reached a terminal state. Unpaid orders
// that were never delivered cannot be deleted, cancelled or not.
func (s *service) DeleteOrder(ctx context.Context, orderNumber string) error {
	order, err := s.GetOrder(ctx, orderNumber)
	if err != nil {
		return err
	}
	if !order.Status.IsTerminal() {
		return apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("order in status %q cannot be deleted", order.Status))
	}
	if order.PaymentStatus == enums.PaymentStatusUnpaid && order.Status != enums.OrderStatusDelivered {
		return apperrors.New(apperrors.CodeStateConflict,
			"unpaid orders can only be deleted once delivered")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, order.ID); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

// applyTransition mutates the order per the status rules. A paid payment
// auto-advances undelivered orders to delivered; a refunded payment forces the
// refunded status unless the order was cancelled. delivered_at is stamped once.
func applyTransition(order *models.Order, status *enums.OrderStatus, paymentStatus *enums.PaymentStatus, now time.Time) {
	if status != nil {
		order.Status = *status
		if *status == enums.OrderStatusDelivered && order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	}

	if paymentStatus != nil {
		order.PaymentStatus = *paymentStatus

		switch *paymentStatus {
		case enums.PaymentStatusPaid:
			if order.Status != enums.OrderStatusCancelled && order.Status != enums.OrderStatusRefunded {
				order.Status = enums.OrderStatusDelivered
				if order.DeliveredAt == nil {
					order.DeliveredAt = &now
				}
			}
		case enums.PaymentStatusRefunded:
			if order.Status != enums.OrderStatusCancelled {
				order.Status = enums.OrderStatusRefunded
			}
		}
	}
}

// recomputeTotals derives every monetary column from the items. total is
// always subtotal + shipping + tax - discount; nothing assigns it directly.
func recomputeTotals(order *models.Order, taxRatePercent decimal.Decimal) {
	subtotal := decimal.Zero
	shipping := decimal.Zero
	for _, item := range order.Items {
		subtotal = subtotal.Add(item.LineTotal())
		shipping = shipping.Add(item.ShippingTotal())
	}

	order.Subtotal = subtotal
	order.ShippingTotal = shipping
	order.Tax = money.TaxOn(subtotal.Add(shipping), taxRatePercent)
	order.Total = money.Round2(subtotal.Add(shipping).Add(order.Tax).Sub(order.Discount))
}
