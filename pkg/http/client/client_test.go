package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		baseURL        string
		timeout        time.Duration
		maxRetries     int
		wantTimeout    time.Duration
		wantMaxRetries int
	}{
		{
			name:           "default configuration",
			baseURL:        "https://data.example.com",
			wantTimeout:    30 * time.Second,
			wantMaxRetries: 3,
		},
		{
			name:           "custom configuration",
			baseURL:        "https://feeds.example.com",
			timeout:        5 * time.Second,
			maxRetries:     5,
			wantTimeout:    5 * time.Second,
			wantMaxRetries: 5,
		},
		{
			name:           "retries disabled",
			maxRetries:     -1,
			wantTimeout:    30 * time.Second,
			wantMaxRetries: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := New(Options{
				BaseURL:    tt.baseURL,
				Timeout:    tt.timeout,
				MaxRetries: tt.maxRetries,
			})

			assert.Equal(t, tt.baseURL, client.baseURL)
			assert.Equal(t, tt.wantTimeout, client.httpClient.Timeout)
			assert.Equal(t, tt.wantMaxRetries, client.maxRetries)
		})
	}
}

func TestRequestFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		useBase bool
	}{
		{name: "absolute URL", useBase: false},
		{name: "relative path with base URL", useBase: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/stops.txt", r.URL.String())
				_, _ = w.Write([]byte("stop_id\n"))
			}))
			defer server.Close()

			opts := Options{Timeout: 5 * time.Second}
			path := server.URL + "/stops.txt"
			if tt.useBase {
				opts.BaseURL = server.URL
				path = "/stops.txt"
			}

			resp, err := New(opts).Get(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "stop_id\n", string(resp.Body))
		})
	}
}

func TestRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, MaxRetries: 3, Backoff: time.Millisecond})

	resp, err := client.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestReturnsLastServerErrorWhenRetriesRunOut(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, MaxRetries: 2, Backoff: time.Millisecond})

	resp, err := client.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, Backoff: time.Millisecond})

	resp, err := client.Get(context.Background(), "/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(Options{
		BaseURL:    server.URL,
		Timeout:    50 * time.Millisecond,
		MaxRetries: 1,
		Backoff:    time.Millisecond,
	})

	_, err := client.Get(context.Background(), "/test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
}

func TestGetFuncOverride(t *testing.T) {
	client := New(Options{})
	client.GetFunc = func(ctx context.Context, path string) (*Response, error) {
		return &Response{StatusCode: http.StatusTeapot, Body: []byte(path)}, nil
	}

	resp, err := client.Get(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "anything", string(resp.Body))
}
