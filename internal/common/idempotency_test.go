package common_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mintpay/checkout-api/internal/common"
)

func idemClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func keyedRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", nil)
	req.Header.Set("Idempotency-Key", key)
	return req
}

func TestIdemDuplicateAfterSuccessRejected(t *testing.T) {
	t.Parallel()

	idem := common.Idem{R: idemClient(t), TTL: time.Minute}
	var calls int
	guarded := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	rr1 := httptest.NewRecorder()
	guarded.ServeHTTP(rr1, keyedRequest("order-42"))
	require.Equal(t, http.StatusOK, rr1.Code)

	rr2 := httptest.NewRecorder()
	guarded.ServeHTTP(rr2, keyedRequest("order-42"))
	require.Equal(t, http.StatusConflict, rr2.Code)
	require.Contains(t, rr2.Body.String(), "IDEMPOTENT_REPLAY")
	require.Equal(t, 1, calls)
}

func TestIdemRetryAfterFailureAllowed(t *testing.T) {
	t.Parallel()

	idem := common.Idem{R: idemClient(t), TTL: time.Minute}
	var calls int
	guarded := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr1 := httptest.NewRecorder()
	guarded.ServeHTTP(rr1, keyedRequest("order-43"))
	require.Equal(t, http.StatusBadGateway, rr1.Code)

	// The failed attempt created nothing upstream, so the same key must be
	// usable for the retry.
	rr2 := httptest.NewRecorder()
	guarded.ServeHTTP(rr2, keyedRequest("order-43"))
	require.Equal(t, http.StatusOK, rr2.Code)
	require.Equal(t, 2, calls)
}

func TestIdemMissingKeyPassesThrough(t *testing.T) {
	t.Parallel()

	idem := common.Idem{R: idemClient(t), TTL: time.Minute}
	var calls int
	guarded := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		guarded.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/create-payment-intent", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	require.Equal(t, 2, calls)
}
