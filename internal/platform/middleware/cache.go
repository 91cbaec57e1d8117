package middleware

import (
	"bytes"
	"encoding/gob"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// CacheStore defines the interface for a response cache backend. Both the
// in-memory store and the Redis-backed store in platform/cache satisfy it.
type CacheStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

// cacheEntry holds a cached value and its expiration time.
type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryCacheStore is a thread-safe in-memory CacheStore with lazy expiration.
type InMemoryCacheStore struct {
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

func NewInMemoryCacheStore() *InMemoryCacheStore {
	return &InMemoryCacheStore{entries: make(map[string]*cacheEntry)}
}

func (s *InMemoryCacheStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (s *InMemoryCacheStore) Set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &cacheEntry{data: value, expiresAt: time.Now().Add(ttl)}
}

func (s *InMemoryCacheStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// responseRecorder buffers the response body so it can be stored after the
// handler runs.
type responseRecorder struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// cachedResponse is the stored form of a cacheable response. Content type and
// disposition travel with the body so non-JSON payloads such as spreadsheet
// exports replay with their original headers.
type cachedResponse struct {
	ContentType string
	Disposition string
	Body        []byte
}

// ResponseCache caches successful GET responses for the given TTL. Cache keys
// include the request path, raw query and the caller's hospital scope header
// so that tenants never see each other's reports. Store failures are
// invisible to callers; a miss just runs the handler.
func ResponseCache(store CacheStore, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if store == nil || c.Request().Method != http.MethodGet {
				return next(c)
			}

			req := c.Request()
			key := req.URL.Path + "?" + req.URL.RawQuery + "|" + req.Header.Get("Authorization")

			if data, ok := store.Get(key); ok {
				var cr cachedResponse
				if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&cr); err == nil {
					if cr.Disposition != "" {
						c.Response().Header().Set(echo.HeaderContentDisposition, cr.Disposition)
					}
					return c.Blob(http.StatusOK, cr.ContentType, cr.Body)
				}
				// Undecodable entry; drop it and run the handler.
				store.Delete(key)
			}

			rec := &responseRecorder{
				ResponseWriter: c.Response().Writer,
				buf:            &bytes.Buffer{},
				status:         http.StatusOK,
			}
			c.Response().Writer = rec

			if err := next(c); err != nil {
				return err
			}

			if rec.status == http.StatusOK && rec.buf.Len() > 0 {
				cr := cachedResponse{
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Disposition: c.Response().Header().Get(echo.HeaderContentDisposition),
					Body:        rec.buf.Bytes(),
				}
				var enc bytes.Buffer
				if err := gob.NewEncoder(&enc).Encode(&cr); err == nil {
					store.Set(key, enc.Bytes(), ttl)
				}
			}
			return nil
		}
	}
}
