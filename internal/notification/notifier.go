// Package notification is the sink for order lifecycle events. Delivery is
// fire-and-forget: implementations report nothing back, and a sink failure
// must never fail the operation that triggered it.
package notification

import "stayraw/internal/domain"

// Notifier receives order lifecycle events.
type Notifier interface {
	OrderCreated(user *domain.User, order *domain.Order)
	OrderStatusChanged(user *domain.User, order *domain.Order)
	ReturnRequested(user *domain.User, order *domain.Order)
}

// Noop discards every event. Useful in tests.
type Noop struct{}

func (Noop) OrderCreated(*domain.User, *domain.Order)       {}
func (Noop) OrderStatusChanged(*domain.User, *domain.Order) {}
func (Noop) ReturnRequested(*domain.User, *domain.Order)    {}
