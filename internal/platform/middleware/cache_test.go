package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestInMemoryCacheStoreExpiry(t *testing.T) {
	s := NewInMemoryCacheStore()

	s.Set("k", []byte("v"), time.Minute)
	if got, ok := s.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("expected hit, got %q ok=%v", got, ok)
	}

	s.Set("gone", []byte("x"), -time.Second)
	if _, ok := s.Get("gone"); ok {
		t.Error("expired entry should miss")
	}

	s.Delete("k")
	if _, ok := s.Get("k"); ok {
		t.Error("deleted entry should miss")
	}
}

func TestResponseCacheServesSecondGETFromStore(t *testing.T) {
	store := NewInMemoryCacheStore()
	e := echo.New()

	calls := 0
	h := ResponseCache(store, time.Minute)(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]int{"calls": calls})
	})

	do := func() string {
		req := httptest.NewRequest(http.MethodGet, "/reports/analytics?from=2024-06-01", nil)
		rec := httptest.NewRecorder()
		if err := h(e.NewContext(req, rec)); err != nil {
			t.Fatal(err)
		}
		return rec.Body.String()
	}

	first := do()
	second := do()
	if calls != 1 {
		t.Errorf("handler should run once, ran %d times", calls)
	}
	if first != second {
		t.Errorf("cached body differs: %q vs %q", first, second)
	}
}

func TestResponseCachePreservesHeadersForBinaryPayloads(t *testing.T) {
	const (
		xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		disposition = `attachment; filename="business-range.xlsx"`
	)
	store := NewInMemoryCacheStore()
	e := echo.New()

	calls := 0
	h := ResponseCache(store, time.Minute)(func(c echo.Context) error {
		calls++
		c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
		return c.Blob(http.StatusOK, xlsxType, []byte{0x50, 0x4b, 0x03, 0x04})
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/reports/vendor/business-range/export?from=2024-06-01&to=2024-06-30", nil)
		last = httptest.NewRecorder()
		if err := h(e.NewContext(req, last)); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Fatalf("handler should run once, ran %d times", calls)
	}
	if got := last.Header().Get(echo.HeaderContentType); got != xlsxType {
		t.Errorf("cache hit content type: expected %q, got %q", xlsxType, got)
	}
	if got := last.Header().Get(echo.HeaderContentDisposition); got != disposition {
		t.Errorf("cache hit disposition: expected %q, got %q", disposition, got)
	}
	if got := last.Body.Bytes(); len(got) != 4 || got[0] != 0x50 {
		t.Errorf("cache hit body corrupted: %v", got)
	}
}

func TestResponseCacheKeysOnCaller(t *testing.T) {
	store := NewInMemoryCacheStore()
	e := echo.New()

	calls := 0
	h := ResponseCache(store, time.Minute)(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	})

	for _, token := range []string{"Bearer a", "Bearer b"} {
		req := httptest.NewRequest(http.MethodGet, "/reports/analytics", nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		if err := h(e.NewContext(req, rec)); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Errorf("different callers must not share entries, handler ran %d times", calls)
	}
}

func TestResponseCacheSkipsWritesAndErrors(t *testing.T) {
	store := NewInMemoryCacheStore()
	e := echo.New()

	calls := 0
	h := ResponseCache(store, time.Minute)(func(c echo.Context) error {
		calls++
		if c.Request().Method == http.MethodGet {
			return echo.NewHTTPError(http.StatusBadRequest, "bad")
		}
		return c.String(http.StatusOK, "ok")
	})

	post := httptest.NewRequest(http.MethodPost, "/reports/analytics", nil)
	if err := h(e.NewContext(post, httptest.NewRecorder())); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		get := httptest.NewRequest(http.MethodGet, "/reports/analytics", nil)
		if err := h(e.NewContext(get, httptest.NewRecorder())); err == nil {
			t.Fatal("expected handler error to propagate")
		}
	}
	// POST once plus two uncached failing GETs.
	if calls != 3 {
		t.Errorf("expected 3 handler runs, got %d", calls)
	}
}
