package handlers

import (
	"net"
	"net/http"
	"sync"
	"time"

	"jandoedu/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMiddleware creates a new middleware instance. The rate limit is
// per client IP; stale limiters are evicted in the background.
func NewMiddleware(logger *zap.Logger, requestsPerSecond float64, burst int) *Middleware {
	m := &Middleware{
		logger:   logger,
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}
	go m.cleanupVisitors()
	return m
}

// statusRecorder captures the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs each request with its duration and response status
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		metrics.RequestDuration.WithLabelValues(r.Method).Observe(duration.Seconds())
		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration),
		)
	})
}

// RateLimit rejects clients that exceed the per-IP request rate
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !m.limiterFor(ip).Allow() {
			m.logger.Warn("rate limit exceeded", zap.String("ip", ip))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) limiterFor(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (m *Middleware) cleanupVisitors() {
	for range time.Tick(time.Minute) {
		m.mu.Lock()
		for ip, v := range m.limiters {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(m.limiters, ip)
			}
		}
		m.mu.Unlock()
	}
}
