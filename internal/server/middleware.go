package server

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"nidextract/internal/logger"
)

// statusRecorder captures the response status for request logging and stamps
// the processing-time header just before the headers are flushed.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	start   time.Time
	written bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.written {
		return
	}
	r.written = true
	r.status = status
	r.Header().Set("X-Processing-Time-Ms",
		strconv.FormatInt(time.Since(r.start).Milliseconds(), 10))
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// requestLogging assigns each request a UUID, echoes it in X-Request-ID,
// reports the handling duration in X-Processing-Time-Ms and logs one line
// per request.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK, start: time.Now()}
		rec.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(rec, r)

		reqLogger := logger.WithRequestID(requestID)
		reqLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", clientIP(r)).
			Int("status", rec.status).
			Dur("duration", time.Since(rec.start)).
			Msg("Request handled")
	})
}

// securityHeaders sets conservative browser-facing headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter enforces a sliding-window request cap per client IP.
type rateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	clients map[string][]time.Time
	now     func() time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		max:     max,
		window:  window,
		clients: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// allow records a request for ip and reports whether it is within the limit.
// When denied, retryAfter is the time until the oldest in-window request
// falls out of the window.
func (l *rateLimiter) allow(ip string) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.clients[ip][:0]
	for _, t := range l.clients[ip] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.clients[ip] = recent
		return false, recent[0].Sub(cutoff)
	}

	l.clients[ip] = append(recent, now)
	return true, 0
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := l.allow(clientIP(r))
		if !ok {
			seconds := int(retryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			writeError(w, http.StatusTooManyRequests,
				"Rate limit exceeded",
				fmt.Sprintf("retry_after_seconds: %d", seconds))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
