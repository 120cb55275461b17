package httpserver

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	apperrors "github.com/linaspasv/cms/internal/platform/errors"
)

const limiterIdleExpiry = 5 * time.Minute

// limiterStore keeps one token bucket per identifier and forgets buckets
// that stayed idle for limiterIdleExpiry. It implements
// middleware.RateLimiterStore on an injectable clock.
type limiterStore struct {
	limit rate.Limit
	burst int
	clock clockwork.Clock

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(ratePerSecond float64, burst int, clock clockwork.Clock) *limiterStore {
	return &limiterStore{
		limit:     rate.Limit(ratePerSecond),
		burst:     burst,
		clock:     clock,
		buckets:   make(map[string]*bucket),
		lastSweep: clock.Now(),
	}
}

func (s *limiterStore) Allow(identifier string) (bool, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= limiterIdleExpiry {
		for id, b := range s.buckets {
			if now.Sub(b.lastSeen) >= limiterIdleExpiry {
				delete(s.buckets, id)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[identifier]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[identifier] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// retryAfter is the whole number of seconds until one token is refilled.
func (s *limiterStore) retryAfter() int {
	if s.limit <= 0 {
		return int(limiterIdleExpiry.Seconds())
	}
	return int(math.Ceil(1 / float64(s.limit)))
}

// newRateLimiter limits requests per signed-in user, falling back to the
// client IP for guests. Denied requests get a Retry-After header.
func newRateLimiter(store *limiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if user := currentUser(c); user != nil {
				return "user:" + user.ID.String(), nil
			}
			return "ip:" + c.RealIP(), nil
		},
		// echo hands the returned error to c.Error, past ErrorHandlingMiddleware,
		// so the response is written here.
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			c.Response().Header().Set("Retry-After", strconv.Itoa(store.retryAfter()))
			return HandleError(c, apperrors.RateLimitedError("too many navigation updates").WithField("identifier", identifier))
		},
	})
}
