// Package keepalive pings the service's own public URL so free-tier hosts
// do not idle the process down.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Result describes a single ping attempt.
type Result struct {
	At        time.Time
	Status    int
	RequestID string
	Err       error
}

type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	onResult func(Result) // observes every attempt after it is logged
}

type Option func(*Pinger)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Pinger) { p.client = c }
}

func WithResultHook(fn func(Result)) Option {
	return func(p *Pinger) { p.onResult = fn }
}

func New(url string, interval time.Duration, opts ...Option) *Pinger {
	p := &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run pings until ctx is cancelled. The next ping is scheduled interval after
// the previous one completes, so spacing is interval plus request latency.
func (p *Pinger) Run(ctx context.Context) {
	slog.Info("keep-alive pinger started", "url", p.url, "interval", p.interval.String())

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("keep-alive pinger stopped")
			return
		case <-timer.C:
		}

		res := p.Ping(ctx)
		if res.Err != nil {
			if ctx.Err() != nil {
				continue
			}
			slog.Warn("keep-alive ping failed",
				"time", res.At.Format(time.RFC3339),
				"request_id", res.RequestID,
				"error", res.Err,
			)
		} else {
			slog.Info("keep-alive ping succeeded",
				"time", res.At.Format(time.RFC3339),
				"request_id", res.RequestID,
				"status", res.Status,
			)
		}
		if p.onResult != nil {
			p.onResult(res)
		}

		timer.Reset(p.interval)
	}
}

// Ping issues a single GET to the keep-alive URL. Non-2xx replies are failures.
func (p *Pinger) Ping(ctx context.Context) Result {
	res := Result{At: time.Now(), RequestID: uuid.NewString()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		res.Err = fmt.Errorf("build request: %w", err)
		return res
	}
	req.Header.Set("X-Request-Id", res.RequestID)

	resp, err := p.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("keep-alive request: %w", err)
		return res
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	res.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Err = fmt.Errorf("keep-alive returned status %d", resp.StatusCode)
	}
	return res
}
