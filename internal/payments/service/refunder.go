package service

import (
	"context"
	"fmt"

	"smartstay/pkg/client"
)

// GatewayRefunder adapts the payment gateway to the refund hook the booking
// lifecycle expects.
type GatewayRefunder struct {
	gateway client.PaymentGateway
}

func NewGatewayRefunder(gateway client.PaymentGateway) *GatewayRefunder {
	return &GatewayRefunder{gateway: gateway}
}

func (r *GatewayRefunder) Refund(ctx context.Context, paymentIntentID string) (string, string, error) {
	if paymentIntentID == "" {
		return "", "", fmt.Errorf("no payment intent to refund")
	}

	result, err := r.gateway.Refund(ctx, paymentIntentID)
	if err != nil {
		return "", "", err
	}
	return result.ID, result.Status, nil
}
