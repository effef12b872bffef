package keepalive_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/astronautdiary/internal/keepalive"
)

func TestPingSuccess(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		w.Write([]byte("Server is alive"))
	}))
	defer srv.Close()

	res := keepalive.New(srv.URL, time.Minute).Ping(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, res.RequestID, gotID)
	_, err := uuid.Parse(gotID)
	assert.NoError(t, err)
}

func TestPingNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	res := keepalive.New(srv.URL, time.Minute).Ping(context.Background())
	require.Error(t, res.Err)
	assert.Equal(t, http.StatusBadGateway, res.Status)
}

func TestRunContinuesAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var mu sync.Mutex
	var results []keepalive.Result
	done := make(chan struct{})

	p := keepalive.New(srv.URL, 10*time.Millisecond, keepalive.WithResultHook(func(r keepalive.Result) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
		if len(results) == 3 {
			close(done)
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pinger did not produce three results")
	}
	cancel()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("pinger did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestRunUnreachableHostKeepsLooping(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var count atomic.Int32
	done := make(chan struct{})
	p := keepalive.New(url, 5*time.Millisecond,
		keepalive.WithHTTPClient(&http.Client{Timeout: time.Second}),
		keepalive.WithResultHook(func(r keepalive.Result) {
			if r.Err != nil && count.Add(1) == 2 {
				close(done)
			}
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pinger stopped after a failed ping")
	}
}
