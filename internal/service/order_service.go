package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayraw/internal/domain"
	"stayraw/internal/notification"
	"stayraw/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart            = errors.New("cannot place an order from an empty cart")
	ErrInvalidStatus        = errors.New("unknown order status")
	ErrInvalidTransition    = errors.New("illegal order status transition")
	ErrReturnReasonRequired = errors.New("a return request requires a reason")
)

// orderIDPrefix is kept from the storefront's display convention. The suffix
// is a UUID rather than a timestamp so back-to-back orders can never collide.
const orderIDPrefix = "SR-"

// OrderService defines the interface for order business logic: checkout,
// the status state machine, per-user history and purchase checks.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64, userName string, items []domain.CartItem, totals domain.CartTotals, discountCode, address, phone string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, reason string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	HasUserPurchasedProduct(ctx context.Context, userID, productID int64) (bool, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	notifier    notification.Notifier
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// PlaceOrder creates an order from a non-empty cart snapshot. Every line's
// resolved unit price and size are frozen into order items at this moment;
// later product edits or deletions do not touch them.
func (s *orderService) PlaceOrder(ctx context.Context, userID int64, userName string, items []domain.CartItem, totals domain.CartTotals, discountCode, address, phone string) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:             orderIDPrefix + uuid.NewString(),
		UserID:         userID,
		UserName:       userName,
		Status:         domain.OrderStatusPlaced,
		Subtotal:       totals.Subtotal.Round(2),
		GSTAmount:      totals.GSTAmount.Round(2),
		DeliveryCharge: totals.DeliveryCharge.Round(2),
		DiscountCode:   discountCode,
		DiscountAmount: totals.DiscountAmount.Round(2),
		TotalAmount:    totals.GrandTotal.Round(2),
		Address:        address,
		Phone:          phone,
		CreatedAt:      time.Now().UTC(),
		Items:          make([]domain.OrderItem, 0, len(items)),
	}

	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			Price:     item.Product.EffectivePrice(),
			Size:      item.Size,
		})
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)

	s.notify(ctx, order, func(user *domain.User) {
		s.notifier.OrderCreated(user, order)
	})

	return order, nil
}

// UpdateStatus applies one transition of the order state machine. Any move
// not allowed by the table is rejected; a transition to Return Requested
// additionally requires a non-empty reason, which is stored on the order.
func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, reason string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	reason = strings.TrimSpace(reason)
	if status == domain.OrderStatusReturnRequested && reason == "" {
		return nil, ErrReturnReasonRequired
	}
	if status != domain.OrderStatusReturnRequested {
		reason = ""
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, status, reason); err != nil {
		if errors.Is(err, repository.ErrOrderStatusConflict) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
		}
		return nil, err
	}

	order.Status = status
	if reason != "" {
		order.ReturnReason = reason
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("status", string(status)),
	)

	s.notify(ctx, order, func(user *domain.User) {
		if status == domain.OrderStatusReturnRequested {
			s.notifier.ReturnRequested(user, order)
		} else {
			s.notifier.OrderStatusChanged(user, order)
		}
	})

	return order, nil
}

// GetOrder retrieves a single order with display enrichment.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.enrich(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrdersByUser retrieves the user's orders newest first, with each item
// enriched with its product details when the product still exists.
func (s *orderService) GetOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := s.enrich(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// ListOrders retrieves all orders newest first for the admin back-office.
func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := s.enrich(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// HasUserPurchasedProduct reports whether a Delivered order of the user
// contains the product. Placed, Dispatched or Cancelled orders do not count.
func (s *orderService) HasUserPurchasedProduct(ctx context.Context, userID, productID int64) (bool, error) {
	return s.orderRepo.HasDeliveredProduct(ctx, userID, productID)
}

// enrich attaches read-time product details to each item. A missing product
// is the expected dangling-reference case and leaves ProductDetails nil.
func (s *orderService) enrich(ctx context.Context, order *domain.Order) error {
	for i := range order.Items {
		product, err := s.productRepo.FindByID(ctx, order.Items[i].ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return fmt.Errorf("failed to enrich order %s: %w", order.ID, err)
		}
		order.Items[i].ProductDetails = product
	}
	return nil
}

// notify looks up the order's user and hands the order to the notification
// sink. The sink is fire-and-forget: any failure here is logged and never
// surfaces to the triggering operation.
func (s *orderService) notify(ctx context.Context, order *domain.Order, send func(*domain.User)) {
	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("Skipping order notification, user lookup failed",
			zap.String("order_id", order.ID),
			zap.Int64("user_id", order.UserID),
			zap.Error(err),
		)
		return
	}
	send(user)
}
