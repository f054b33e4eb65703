// Package payment adapts the Daraja client to the PaymentInitiator port.
package payment

import (
	"context"
	"encoding/json"

	"github.com/chemabeez/honey-orders/internal/mpesa"
	"github.com/chemabeez/honey-orders/internal/orderapi/core/domain/entity"
	"github.com/chemabeez/honey-orders/internal/orderapi/core/ports"
)

// MpesaInitiator is the adapter that speaks to Daraja underneath the port.
type MpesaInitiator struct {
	client *mpesa.Client
}

// NewMpesaInitiator returns the port, not the concrete adapter.
func NewMpesaInitiator(client *mpesa.Client) ports.PaymentInitiator {
	return &MpesaInitiator{client: client}
}

var _ ports.PaymentInitiator = (*MpesaInitiator)(nil)

func (a *MpesaInitiator) InitiatePayment(ctx context.Context, req entity.PaymentRequest) (json.RawMessage, error) {
	return a.client.InitiateSTKPush(ctx, mpesa.PushRequest{
		PhoneNumber:      req.PhoneNumber,
		Amount:           req.Amount,
		AccountReference: req.AccountReference,
		TransactionDesc:  req.TransactionDesc,
	})
}
