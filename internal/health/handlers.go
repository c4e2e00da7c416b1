package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingRedis(ctx context.Context, timeout time.Duration) error
	PingProcessor(ctx context.Context, timeout time.Duration) error
}

// Probes is the default Checker. A nil redis client or an empty processor
// base URL marks that probe as ok, since both dependencies are optional at
// startup.
type Probes struct {
	Redis            *redis.Client
	ProcessorBaseURL string
	HTTP             *http.Client
}

// PingRedis probes the redis connection.
func (p Probes) PingRedis(ctx context.Context, timeout time.Duration) error {
	if p.Redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Redis.Ping(ctx).Err()
}

// PingProcessor probes reachability of the payment processor. Any HTTP
// response counts as reachable; only transport failures mark it down.
func (p Probes) PingProcessor(ctx context.Context, timeout time.Duration) error {
	if p.ProcessorBaseURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.ProcessorBaseURL, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	client := p.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("processor unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker          Checker
	Logger           zerolog.Logger
	RedisTimeout     time.Duration
	ProcessorTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	// Probe details stay in the log; the body only says which probe failed
	// so internal addresses never reach a caller.
	redisStatus := "ok"
	if err := h.Checker.PingRedis(ctx, h.redisTimeout()); err != nil {
		h.Logger.Warn().Err(err).Msg("readiness redis probe failed")
		redisStatus = "fail"
	}
	processorStatus := "ok"
	if err := h.Checker.PingProcessor(ctx, h.processorTimeout()); err != nil {
		h.Logger.Warn().Err(err).Msg("readiness processor probe failed")
		processorStatus = "fail"
	}
	status := map[string]string{
		"redis":     redisStatus,
		"processor": processorStatus,
	}
	w.Header().Set("Content-Type", "application/json")
	if redisStatus != "ok" || processorStatus != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}

func (h Handler) processorTimeout() time.Duration {
	if h.ProcessorTimeout <= 0 {
		return 2 * time.Second
	}
	return h.ProcessorTimeout
}
