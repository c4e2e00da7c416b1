package processor

import "fmt"

// Customer is a processor-side payer record. The id is opaque and stable;
// it is the only field this service relies on.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IntentStatus is the lifecycle status of a payment intent. The processor
// owns every transition; this service only observes statuses at creation
// time and through webhook notifications.
type IntentStatus string

const (
	StatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	StatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	StatusRequiresAction        IntentStatus = "requires_action"
	StatusProcessing            IntentStatus = "processing"
	StatusSucceeded             IntentStatus = "succeeded"
	StatusCanceled              IntentStatus = "canceled"
	StatusPaymentFailed         IntentStatus = "payment_failed"
)

// Terminal reports whether no further transitions can occur.
func (s IntentStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusCanceled, StatusPaymentFailed:
		return true
	default:
		return false
	}
}

// Known reports whether the status is part of the observed lifecycle.
func (s IntentStatus) Known() bool {
	switch s {
	case StatusRequiresPaymentMethod, StatusRequiresConfirmation, StatusRequiresAction,
		StatusProcessing, StatusSucceeded, StatusCanceled, StatusPaymentFailed:
		return true
	default:
		return false
	}
}

// PaymentIntent is the processor-side object representing one attempted
// charge. ClientSecret is a single-use bearer credential scoped to this
// intent; it must be relayed to the client once and never logged or stored.
type PaymentIntent struct {
	ID           string       `json:"id"`
	ClientSecret string       `json:"client_secret"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	CustomerID   string       `json:"customer"`
	Status       IntentStatus `json:"status"`
}

// CreateIntentParams captures the fields sent when opening a payment intent.
type CreateIntentParams struct {
	Amount             int64
	Currency           string
	CustomerID         string
	SetupFutureUsage   string
	PaymentMethodTypes []string
}

// UpstreamError reports a failed processor API call: network error, timeout
// or a processor-side rejection.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("processor: %s: %v", e.Operation, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("processor: %s: %s (%s)", e.Operation, e.Message, e.Code)
	}
	return fmt.Sprintf("processor: %s: status %d", e.Operation, e.StatusCode)
}

// Unwrap exposes the underlying transport error, if any.
func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
