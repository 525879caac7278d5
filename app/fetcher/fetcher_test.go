package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and sends user agent", func(t *testing.T) {
		t.Parallel()

		var userAgent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent = r.UserAgent()
			_, _ = w.Write([]byte("<rss></rss>"))
		}))
		defer server.Close()

		f := New(WithUserAgent("test-agent"))
		body, err := f.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "<rss></rss>", string(body))
		assert.Equal(t, "test-agent", userAgent)
	})

	t.Run("retries failed attempts until success", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		f := New(WithRetry(3, time.Millisecond))
		body, err := f.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		f := New(WithRetry(3, time.Millisecond))
		_, err := f.Fetch(context.Background(), server.URL)

		require.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
		assert.Contains(t, err.Error(), "after 3 attempt(s)")

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})

	t.Run("waits the retry delay between attempts", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		f := New(WithRetry(2, 50*time.Millisecond))
		start := time.Now()
		_, err := f.Fetch(context.Background(), server.URL)

		require.Error(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("applies per-attempt timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		}))
		defer server.Close()

		f := New(WithTimeout(10*time.Millisecond), WithRetry(1, time.Millisecond))
		_, err := f.Fetch(context.Background(), server.URL)

		require.Error(t, err)
	})

	t.Run("does not retry invalid URLs", func(t *testing.T) {
		t.Parallel()

		f := New(WithRetry(3, time.Second))
		start := time.Now()
		_, err := f.Fetch(context.Background(), "not a url")

		require.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		f := New(WithRetry(3, time.Second))
		start := time.Now()
		_, err := f.Fetch(ctx, server.URL)

		require.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestFetcher_FetchPage(t *testing.T) {
	t.Parallel()

	// "café" in ISO-8859-1
	latin1 := []byte("<html><body><p>caf\xe9</p></body></html>")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		_, _ = w.Write(latin1)
	}))
	defer server.Close()

	f := New()
	body, err := f.FetchPage(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, string(body), "café")
}

func TestDecodeHTML(t *testing.T) {
	t.Parallel()

	t.Run("keeps UTF-8 as is", func(t *testing.T) {
		t.Parallel()

		body := []byte("<html><head><meta charset=\"utf-8\"></head><body>naïve</body></html>")
		decoded, err := DecodeHTML(body, "text/html")

		require.NoError(t, err)
		assert.Equal(t, body, decoded)
	})

	t.Run("honours meta charset", func(t *testing.T) {
		t.Parallel()

		body := []byte("<html><head><meta charset=\"windows-1252\"></head><body>\x93quoted\x94</body></html>")
		decoded, err := DecodeHTML(body, "")

		require.NoError(t, err)
		assert.Contains(t, string(decoded), "“quoted”")
	})
}

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	limiter := NewDomainLimiter(20)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx, "example.com"))
	}
	require.NoError(t, limiter.Wait(ctx, "other.example"))

	// burst of one: the second and third call on the same host wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
