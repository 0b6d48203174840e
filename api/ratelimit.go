package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one limiter per client IP. Entries idle for longer than
// idle are swept at most once per idle period.
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(every rate.Limit, burst int, idle time.Duration) *limiterStore {
	return &limiterStore{
		limiters: make(map[string]*limiterEntry),
		every:    every,
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.lastSweep.IsZero() {
		s.lastSweep = now
	}
	if now.Sub(s.lastSweep) >= s.idle {
		for key, e := range s.limiters {
			if now.Sub(e.lastSeen) >= s.idle {
				delete(s.limiters, key)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.every, s.burst)}
		s.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimit allows perMinute requests per client IP with the given burst.
// A non-positive perMinute disables limiting.
func RateLimit(perMinute, burst int, logger *zap.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := time.Minute / time.Duration(perMinute)
	// An evicted limiter must already have refilled to a full burst.
	idle := max(limiterIdleTTL, time.Duration(burst)*interval)
	store := newLimiterStore(rate.Every(interval), burst, idle)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.get(ip).Allow() {
			logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Code:    "RATE_LIMITED",
				Message: "too many requests, try again later",
			})
			return
		}
		c.Next()
	}
}
