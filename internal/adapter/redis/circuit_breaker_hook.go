package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	"github.com/linaspasv/cms/internal/adapter/metrics"
	goredis "github.com/redis/go-redis/v9"
)

// CircuitBreakerHook implements redis.Hook to add circuit breaker protection
// to all Redis operations. While the circuit is open, GET commands are served
// from the last values seen, and every other command fails fast with
// circuitbreaker.ErrOpen.
type CircuitBreakerHook struct {
	cb    circuitbreaker.CircuitBreaker[any]
	clock clockwork.Clock

	mu        sync.RWMutex
	cache     map[string]cachedValue
	lastSweep time.Time
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

type cachedValue struct {
	data     string
	storedAt time.Time
}

const (
	fallbackTTL        = 5 * time.Minute
	maxFallbackEntries = 10_000
)

// NewCircuitBreakerHook creates a new circuit breaker hook with the following settings:
// - WithFailureRateThreshold: 60% failure rate, min 5 requests, 10s rolling window
// - WithDelay: 30s before transitioning from open to half-open
// - WithSuccessThreshold: 1 successful request in half-open to close
func NewCircuitBreakerHook(m *metrics.RedisMetrics, clock clockwork.Clock) *CircuitBreakerHook {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "redis",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			m.CircuitStateChanges.WithLabelValues(e.NewState.String()).Inc()
			m.CircuitState.Set(stateToFloat(e.NewState))
		}).
		Build()

	return &CircuitBreakerHook{
		cb:        cb,
		clock:     clock,
		cache:     make(map[string]cachedValue),
		lastSweep: clock.Now(),
	}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// DialHook wraps connection establishment with circuit breaker
func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !h.cb.TryAcquirePermit() {
			return nil, fmt.Errorf("circuit breaker dial failed: %w", circuitbreaker.ErrOpen)
		}
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.cb.RecordError(err)
			return nil, fmt.Errorf("circuit breaker dial failed: %w", err)
		}
		h.cb.RecordSuccess()
		return conn, nil
	}
}

// ProcessHook wraps command execution with circuit breaker and caching
func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return h.fallback(ctx, cmd)
		}

		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return fmt.Errorf("circuit breaker process failed: %w", err)
		}
		h.cb.RecordSuccess()
		h.remember(cmd)
		return err
	}
}

// ProcessPipelineHook wraps pipeline execution with circuit breaker
func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}

		err := next(ctx, cmds)
		if err != nil {
			h.cb.RecordError(err)
			return fmt.Errorf("circuit breaker pipeline failed: %w", err)
		}
		h.cb.RecordSuccess()
		return nil
	}
}

func (h *CircuitBreakerHook) fallback(ctx context.Context, cmd goredis.Cmder) error {
	if c, ok := cmd.(*goredis.StringCmd); ok && cmd.Name() == "get" {
		if value, ok := h.cached(cmd); ok {
			slog.DebugContext(ctx, "Circuit breaker open, serving from cache", "command", cmd.Name())
			c.SetVal(value)
			return nil
		}
		return fmt.Errorf("redis circuit breaker open and no cached value: %w", circuitbreaker.ErrOpen)
	}

	slog.WarnContext(ctx, "Circuit breaker open, rejecting command", "command", cmd.Name())
	return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
}

// remember keeps the result of successful GETs and forgets keys that were
// written or deleted so a stale value is never served. The cache holds at
// most maxFallbackEntries keys; expired ones are swept every fallbackTTL.
func (h *CircuitBreakerHook) remember(cmd goredis.Cmder) {
	args := cmd.Args()
	if len(args) < 2 {
		return
	}
	key := fmt.Sprint(args[1])

	switch cmd.Name() {
	case "get":
		c, ok := cmd.(*goredis.StringCmd)
		if !ok {
			return
		}
		value, err := c.Result()
		h.mu.Lock()
		defer h.mu.Unlock()
		if err != nil {
			delete(h.cache, key)
			return
		}
		now := h.clock.Now()
		h.sweepLocked(now)
		if _, ok := h.cache[key]; !ok && len(h.cache) >= maxFallbackEntries {
			return
		}
		h.cache[key] = cachedValue{data: value, storedAt: now}
	case "set", "del":
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.cache, key)
	}
}

func (h *CircuitBreakerHook) sweepLocked(now time.Time) {
	if now.Sub(h.lastSweep) < fallbackTTL {
		return
	}
	for key, entry := range h.cache {
		if now.Sub(entry.storedAt) > fallbackTTL {
			delete(h.cache, key)
		}
	}
	h.lastSweep = now
}

func (h *CircuitBreakerHook) cacheSize() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.cache)
}

func (h *CircuitBreakerHook) cached(cmd goredis.Cmder) (string, bool) {
	args := cmd.Args()
	if len(args) < 2 {
		return "", false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	entry, ok := h.cache[fmt.Sprint(args[1])]
	if !ok || h.clock.Since(entry.storedAt) > fallbackTTL {
		return "", false
	}
	return entry.data, true
}

// GetState returns the current state of the circuit breaker (for testing/monitoring)
func (h *CircuitBreakerHook) GetState() circuitbreaker.State {
	return h.cb.State()
}

// GetMetrics returns the current metrics (for testing/monitoring)
func (h *CircuitBreakerHook) GetMetrics() circuitbreaker.Metrics {
	return h.cb.Metrics()
}
