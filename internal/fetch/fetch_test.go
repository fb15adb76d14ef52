package fetch_test

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

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/fetch"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
)

const eventPageHTML = `<!DOCTYPE html>
<html>
<head><title>捐血活動</title><style>.x { color: red; }</style></head>
<body>
  <script>var hidden = "nope";</script>
  <h1>捐血活動 114/11/23</h1>
  <p>地點：火車站前廣場</p>
</body>
</html>`

func fastOptions() fetch.Options {
	return fetch.Options{
		Timeout:     5 * time.Second,
		SettleDelay: time.Millisecond,
		RetryDelay:  time.Millisecond,
	}
}

func TestHTTPFetcherRendersDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(eventPageHTML))
	}))
	defer srv.Close()

	f := fetch.NewHTTPFetcher("test-agent", logger.NewNoOp())
	page, err := f.FetchRendered(context.Background(), srv.URL, fastOptions())
	require.NoError(t, err)

	assert.Equal(t, "捐血活動 114/11/23", page.Doc.Find("h1").Text())
}

func TestHTTPFetcherRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(eventPageHTML))
	}))
	defer srv.Close()

	f := fetch.NewHTTPFetcher("test-agent", logger.NewNoOp())
	_, err := f.FetchRendered(context.Background(), srv.URL, fastOptions())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFetcherReturnsTypedError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := fetch.NewHTTPFetcher("test-agent", logger.NewNoOp())
	_, err := f.FetchRendered(context.Background(), srv.URL, fastOptions())
	require.Error(t, err)

	var fetchErr *fetch.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetch.KindNavigation, fetchErr.Kind)
	assert.Equal(t, srv.URL, fetchErr.URL)
	// one try plus exactly one retry
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFetcherSendsCookies(t *testing.T) {
	gotCookie := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie <- c.Value
		} else {
			gotCookie <- ""
		}
		_, _ = w.Write([]byte(eventPageHTML))
	}))
	defer srv.Close()

	opts := fastOptions()
	opts.Cookies = []fetch.Cookie{{Name: "session", Value: "abc123"}}

	f := fetch.NewHTTPFetcher("test-agent", logger.NewNoOp())
	_, err := f.FetchRendered(context.Background(), srv.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, "abc123", <-gotCookie)
}

func TestVisibleTextStripsScriptAndStyle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(eventPageHTML))
	}))
	defer srv.Close()

	f := fetch.NewHTTPFetcher("test-agent", logger.NewNoOp())
	page, err := f.FetchRendered(context.Background(), srv.URL, fastOptions())
	require.NoError(t, err)

	text := page.VisibleText()
	assert.Contains(t, text, "捐血活動 114/11/23")
	assert.Contains(t, text, "火車站前廣場")
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "color: red")
}
