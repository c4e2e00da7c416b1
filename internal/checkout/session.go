package checkout

import "github.com/mintpay/checkout-api/internal/order"

// Session is the immutable context of one checkout flow. Each step of the
// flow derives a new value once its result is available; nothing is mutated
// after construction, so a session can be read concurrently and never holds
// partially-applied state.
type Session struct {
	Cart         order.Cart
	CustomerID   string
	IntentID     string
	ClientSecret string
}

// NewSession opens a session for the valuated cart.
func NewSession(cart order.Cart) Session {
	return Session{Cart: cart}
}

// WithCustomer derives a session carrying the registered customer id.
func (s Session) WithCustomer(customerID string) Session {
	s.CustomerID = customerID
	return s
}

// WithIntent derives the completed session. ClientSecret is a single-use
// bearer credential: it is relayed to the client exactly once and must never
// be logged or persisted.
func (s Session) WithIntent(intentID, clientSecret string) Session {
	s.IntentID = intentID
	s.ClientSecret = clientSecret
	return s
}
