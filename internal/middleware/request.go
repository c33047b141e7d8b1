package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
)

// RequestID makes sure every request carries an X-Request-ID header so error
// envelopes can echo it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// RequestCounter counts every request served since startup.
type RequestCounter struct {
	n atomic.Int64
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{}
}

func (c *RequestCounter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.n.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (c *RequestCounter) Count() int64 {
	return c.n.Load()
}
