package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mintpay/checkout-api/internal/common"
	"github.com/mintpay/checkout-api/internal/obs"
	"github.com/mintpay/checkout-api/internal/order"
	"github.com/mintpay/checkout-api/internal/processor"
)

// ProcessorAPI abstracts the processor operations the coordinator needs.
type ProcessorAPI interface {
	CreateCustomer(ctx context.Context, name, email string) (processor.Customer, error)
	CreateIntent(ctx context.Context, params processor.CreateIntentParams) (processor.PaymentIntent, error)
}

// Service coordinates the synchronous half of the payment protocol: valuate
// the cart, register a customer, open a payment intent and hand the client
// secret back. Every later status transition happens on the processor and is
// observed only through the webhook channel.
type Service struct {
	Processor      ProcessorAPI
	Valuator       order.Valuator
	FutureUsage    string
	PaymentMethods []string
}

// CreatePaymentIntent runs the checkout chain for one payer. Not idempotent:
// each call registers a fresh customer and opens a fresh intent, so two calls
// with identical input yield two distinct intents and secrets.
func (s *Service) CreatePaymentIntent(ctx context.Context, name, email string) (Session, error) {
	var zero Session
	if s == nil || s.Processor == nil {
		return zero, errors.New("checkout service not configured")
	}
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "Checkout.CreatePaymentIntent")
	defer span.End()

	total := s.Valuator.ComputeTotal()
	if total.Amount <= 0 {
		return zero, common.NewValidationError(fmt.Sprintf("order amount must be positive, got %d", total.Amount), nil)
	}
	if !order.SupportedCurrency(total.Currency) {
		return zero, common.NewValidationError(fmt.Sprintf("unrecognised currency %q", total.Currency), nil)
	}
	span.SetAttributes(
		attribute.Int64("order.amount", total.Amount),
		attribute.String("order.currency", total.Currency),
	)
	session := NewSession(total)

	customer, err := s.Processor.CreateCustomer(ctx, name, email)
	if err != nil {
		span.RecordError(err)
		countCustomer("error")
		return zero, common.NewUpstreamError("customer registration failed", err)
	}
	countCustomer("success")
	session = session.WithCustomer(customer.ID)

	futureUsage := s.FutureUsage
	if futureUsage == "" {
		futureUsage = "off_session"
	}
	methods := s.PaymentMethods
	if len(methods) == 0 {
		methods = []string{"au_becs_debit"}
	}
	intent, err := s.Processor.CreateIntent(ctx, processor.CreateIntentParams{
		Amount:             total.Amount,
		Currency:           total.Currency,
		CustomerID:         customer.ID,
		SetupFutureUsage:   futureUsage,
		PaymentMethodTypes: methods,
	})
	if err != nil {
		span.RecordError(err)
		countIntent("error")
		return zero, common.NewUpstreamError("payment intent creation failed", err)
	}
	countIntent("success")
	span.SetAttributes(attribute.String("intent.id", intent.ID))

	return session.WithIntent(intent.ID, intent.ClientSecret), nil
}

func countCustomer(result string) {
	if obs.CustomerTotal != nil {
		obs.CustomerTotal.WithLabelValues(result).Inc()
	}
}

func countIntent(result string) {
	if obs.IntentTotal != nil {
		obs.IntentTotal.WithLabelValues(result).Inc()
	}
}
