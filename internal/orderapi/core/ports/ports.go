package ports

import (
	"context"
	"encoding/json"

	"github.com/chemabeez/honey-orders/internal/orderapi/core/domain/entity"
)

// PaymentInitiator triggers a payment prompt on the payer's device.
// The raw gateway response is passed through untouched so the HTTP layer
// can hand it back to the storefront verbatim.
type PaymentInitiator interface {
	InitiatePayment(ctx context.Context, req entity.PaymentRequest) (json.RawMessage, error)
}

// Notifier delivers the merchant notification for an order. It is strictly
// best-effort: implementations log their own failures and never return them.
type Notifier interface {
	Notify(ctx context.Context, order *entity.OrderSubmission)
}
