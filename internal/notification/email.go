package notification

import (
	"fmt"

	"stayraw/internal/domain"

	"go.uber.org/zap"
)

// EmailLogger is a mock mailer: it logs the message a real provider would
// send instead of delivering it. It never panics and never reports failure.
type EmailLogger struct {
	logger *zap.Logger
}

// NewEmailLogger creates an EmailLogger.
func NewEmailLogger(logger *zap.Logger) *EmailLogger {
	return &EmailLogger{logger: logger}
}

// OrderCreated logs the order confirmation email.
func (e *EmailLogger) OrderCreated(user *domain.User, order *domain.Order) {
	e.logger.Info("Sending order confirmation email",
		zap.String("to", user.Email),
		zap.String("subject", fmt.Sprintf("Order Confirmed: Your STAY RAW Order %s", order.ID)),
		zap.String("order_id", order.ID),
		zap.Int("item_count", len(order.Items)),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)
}

// OrderStatusChanged logs the shipping update email.
func (e *EmailLogger) OrderStatusChanged(user *domain.User, order *domain.Order) {
	e.logger.Info("Sending shipping update email",
		zap.String("to", user.Email),
		zap.String("subject", fmt.Sprintf("Update on your STAY RAW Order %s", order.ID)),
		zap.String("order_id", order.ID),
		zap.String("status", string(order.Status)),
	)
}

// ReturnRequested logs the return confirmation email, which carries the
// customer's reason.
func (e *EmailLogger) ReturnRequested(user *domain.User, order *domain.Order) {
	e.logger.Info("Sending return request confirmation email",
		zap.String("to", user.Email),
		zap.String("subject", fmt.Sprintf("Return Requested for Order %s", order.ID)),
		zap.String("order_id", order.ID),
		zap.String("return_reason", order.ReturnReason),
	)
}
