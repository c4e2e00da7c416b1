package fulfillment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "fulfil:evt:"

// ReplayGuard remembers processed event ids so redelivered webhooks do not
// repeat side effects. With redis it uses SetNX under a TTL; without redis it
// degrades to a process-local map, which is enough for a single instance.
type ReplayGuard struct {
	R   *redis.Client
	TTL time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewReplayGuard builds a guard. client may be nil.
func NewReplayGuard(client *redis.Client, ttl time.Duration) *ReplayGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReplayGuard{R: client, TTL: ttl, seen: make(map[string]time.Time)}
}

// FirstDelivery reports whether eventID has not been processed before and
// marks it as processed. On redis errors it fails open so a transient outage
// never drops a legitimate event.
func (g *ReplayGuard) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return true, nil
	}
	if g.R != nil {
		ok, err := g.R.SetNX(ctx, replayKeyPrefix+eventID, 1, g.TTL).Result()
		if err != nil {
			return true, fmt.Errorf("fulfillment: replay guard: %w", err)
		}
		return ok, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	if at, dup := g.seen[eventID]; dup && now.Sub(at) < g.TTL {
		return false, nil
	}
	g.seen[eventID] = now
	if len(g.seen) > 10000 {
		for id, at := range g.seen {
			if now.Sub(at) >= g.TTL {
				delete(g.seen, id)
			}
		}
	}
	return true, nil
}

// Release gives the event id back so the processor's next redelivery is
// treated as a first delivery again. Used when fulfillment could not complete
// after the id was claimed.
func (g *ReplayGuard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	if g.R != nil {
		return g.R.Del(ctx, replayKeyPrefix+eventID).Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, eventID)
	return nil
}
