package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mintpay/checkout-api/internal/resilience"
)

// Client talks to the payment processor's REST API over HTTPS. Requests are
// form-encoded with bearer authentication, mirroring the processor's wire
// protocol. All durable payment state lives on the processor side.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    resilience.HTTPClient
}

// NewClient constructs a processor client with a breaker-guarded,
// trace-instrumented transport. The transport makes a single attempt per
// call: intent creation is not idempotent, and customer creation shares it.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		APIKey:  apiKey,
		HTTP: resilience.HTTPClient{
			Client: &http.Client{
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			Breaker: resilience.NewBreaker(5, 0.5, 30*time.Second).WithTarget("processor"),
			Timeout: timeout,
		},
	}
}

// CreateCustomer registers a payer with the processor and returns the
// processor-issued customer record. Each call creates a fresh customer;
// deduplication of repeat payers is deliberately not attempted.
func (c *Client) CreateCustomer(ctx context.Context, name, email string) (Customer, error) {
	ctx, span := otel.Tracer("processor.Client").Start(ctx, "Processor.CreateCustomer")
	defer span.End()

	form := url.Values{}
	form.Set("name", name)
	form.Set("email", email)

	var customer Customer
	if err := c.postForm(ctx, "/v1/customers", form, &customer); err != nil {
		span.RecordError(err)
		return Customer{}, err
	}
	span.SetAttributes(attribute.String("customer.id", customer.ID))
	return customer, nil
}

// CreateIntent opens a payment intent bound to the given amount, currency and
// customer. Not idempotent: every successful call creates a distinct intent
// with a distinct client secret, so callers must not retry blindly.
func (c *Client) CreateIntent(ctx context.Context, params CreateIntentParams) (PaymentIntent, error) {
	ctx, span := otel.Tracer("processor.Client").Start(ctx, "Processor.CreateIntent")
	defer span.End()

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", strings.ToLower(params.Currency))
	form.Set("customer", params.CustomerID)
	if params.SetupFutureUsage != "" {
		form.Set("setup_future_usage", params.SetupFutureUsage)
	}
	for i, pm := range params.PaymentMethodTypes {
		form.Set("payment_method_types["+strconv.Itoa(i)+"]", pm)
	}

	var intent PaymentIntent
	if err := c.postForm(ctx, "/v1/payment_intents", form, &intent); err != nil {
		span.RecordError(err)
		return PaymentIntent{}, err
	}
	span.SetAttributes(
		attribute.String("intent.id", intent.ID),
		attribute.String("intent.status", string(intent.Status)),
	)
	return intent, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	op := strings.TrimPrefix(path, "/v1/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return &UpstreamError{Operation: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return &UpstreamError{Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &UpstreamError{Operation: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(op, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Operation: op, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

func decodeAPIError(op string, status int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
		return &UpstreamError{Operation: op, StatusCode: status, Err: errors.New(http.StatusText(status))}
	}
	return &UpstreamError{
		Operation:  op,
		StatusCode: status,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
	}
}
