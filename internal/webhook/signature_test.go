package webhook_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mintpay/checkout-api/internal/webhook"
)

func TestVerifyAcceptsCorrectSignature(t *testing.T) {
	t.Parallel()

	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	sig := webhook.ComputeSignature("whsec_test", body)

	v := webhook.Verifier{Secret: "whsec_test"}
	require.NoError(t, v.Verify(body, sig))
}

func TestVerifyRejectsAnySingleBitMutation(t *testing.T) {
	t.Parallel()

	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	sig := webhook.ComputeSignature("whsec_test", body)
	v := webhook.Verifier{Secret: "whsec_test"}

	for i := range body {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), body...)
			mutated[i] ^= 1 << bit
			require.ErrorIs(t, v.Verify(mutated, sig), webhook.ErrSignatureMismatch,
				"mutation at byte %d bit %d must be rejected", i, bit)
		}
	}
}

func TestVerifyRejectsSignatureFromDifferentSecret(t *testing.T) {
	t.Parallel()

	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	sig := webhook.ComputeSignature("whsec_other", body)

	v := webhook.Verifier{Secret: "whsec_test"}
	require.ErrorIs(t, v.Verify(body, sig), webhook.ErrSignatureMismatch)
}

func TestVerifyRejectsMissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	v := webhook.Verifier{Secret: "whsec_test"}
	body := []byte(`{}`)

	require.ErrorIs(t, v.Verify(body, ""), webhook.ErrSignatureMismatch)
	require.ErrorIs(t, v.Verify(body, "   "), webhook.ErrSignatureMismatch)
	require.ErrorIs(t, v.Verify(body, "not-hex-at-all"), webhook.ErrSignatureMismatch)
}

func TestVerifyUnsignedFallback(t *testing.T) {
	t.Parallel()

	body := []byte(`{}`)
	require.NoError(t, webhook.Verifier{AllowUnsigned: true}.Verify(body, ""))
	require.ErrorIs(t, webhook.Verifier{}.Verify(body, ""), webhook.ErrSignatureMismatch)
}
