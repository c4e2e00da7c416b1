package webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// SignatureHeader carries the hex HMAC the processor computed over the raw
// request body.
const SignatureHeader = "Signature"

// Handler terminates the asynchronous notification channel. Verification
// happens before any byte of the body is parsed or logged; once an event is
// verified and dispatched the processor always receives a 2xx so it stops
// redelivering, regardless of what the fulfillment handler did internally.
type Handler struct {
	Verifier   Verifier
	Dispatcher *Dispatcher
	Logger     zerolog.Logger
	MaxBody    int64
}

// Handle implements POST /webhook: 400 empty body on any verification
// failure, 200 empty body once verified and dispatched.
func (h Handler) Handle(w http.ResponseWriter, r *http.Request) {
	maxBody := h.MaxBody
	if maxBody <= 0 {
		maxBody = 256 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil || int64(len(body)) > maxBody {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.Verifier.Verify(body, r.Header.Get(SignatureHeader)); err != nil {
		// Opaque marker only: the payload must never reach the log on a
		// failed authenticity check.
		if errors.Is(err, ErrSignatureMismatch) {
			h.Logger.Warn().Msg("webhook_signature_rejected")
		}
		countWebhook("unverified", "rejected")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ev, err := ParseEvent(body)
	if err != nil {
		countWebhook("unparseable", "rejected")
		h.Logger.Warn().Msg("webhook_envelope_invalid")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if h.Dispatcher != nil {
		// Handler errors are logged inside Dispatch; withholding the ack
		// would only trigger duplicate-delivery storms.
		_, _ = h.Dispatcher.Dispatch(r.Context(), ev)
	}
	w.WriteHeader(http.StatusOK)
}
