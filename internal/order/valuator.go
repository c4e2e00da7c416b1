package order

import "strings"

// Cart is the server-authoritative order total in minor currency units.
// Amounts are never trusted from the client; the valuator is the single
// source of pricing truth for intent creation.
type Cart struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// supportedCurrencies is the closed set of ISO-4217 codes this deployment
// accepts. BECS debit settles in AUD; the rest cover test configurations.
var supportedCurrencies = map[string]struct{}{
	"AUD": {},
	"NZD": {},
	"USD": {},
	"EUR": {},
	"GBP": {},
	"SGD": {},
}

// SupportedCurrency reports whether code is a recognised currency.
func SupportedCurrency(code string) bool {
	_, ok := supportedCurrencies[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Valuator computes authoritative order totals. The demo catalogue is a
// single fixed cart; a real deployment would price line items here.
type Valuator struct {
	cart Cart
}

// NewValuator constructs a valuator for the configured cart.
func NewValuator(amount int64, currency string) Valuator {
	return Valuator{cart: Cart{Amount: amount, Currency: strings.ToUpper(strings.TrimSpace(currency))}}
}

// ComputeTotal returns the authoritative amount and currency for the cart.
// Pure and deterministic: no I/O, no failure modes.
func (v Valuator) ComputeTotal() Cart {
	return v.cart
}
