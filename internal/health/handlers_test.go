package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubChecker struct {
	redisErr     error
	processorErr error
}

func (s stubChecker) PingRedis(context.Context, time.Duration) error     { return s.redisErr }
func (s stubChecker) PingProcessor(context.Context, time.Duration) error { return s.processorErr }

func TestLiveAlwaysOK(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestReadyOKWhenDependenciesUp(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler{Checker: stubChecker{}}.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestReadyDegradedOnProcessorFailure(t *testing.T) {
	checker := stubChecker{processorErr: errors.New("dial tcp 10.0.0.5:6379: connect refused")}
	rr := httptest.NewRecorder()
	Handler{Checker: checker}.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"processor":"fail"`) {
		t.Fatalf("expected opaque failure marker, got %q", rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "10.0.0.5") {
		t.Fatalf("probe detail leaked into response: %q", rr.Body.String())
	}
}

func TestReadyWithoutCheckerIsUnavailable(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler{}.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestProbesRedisOptional(t *testing.T) {
	if err := (Probes{}).PingRedis(context.Background(), time.Second); err != nil {
		t.Fatalf("nil client should be ok: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	if err := (Probes{Redis: client}).PingRedis(context.Background(), time.Second); err != nil {
		t.Fatalf("expected redis ping to succeed: %v", err)
	}
}

func TestProbesProcessorTreatsAnyResponseAsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	probe := Probes{ProcessorBaseURL: srv.URL, HTTP: srv.Client()}
	if err := probe.PingProcessor(context.Background(), time.Second); err != nil {
		t.Fatalf("4xx still means reachable: %v", err)
	}
}
