package httpclient

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const defaultUserAgent = "nano-banana-prompt/1.0"

type Options struct {
	PreferIPv4 bool
	// Timeout bounds a whole request. Image generation routinely takes
	// longer than a minute before the first response byte.
	Timeout   time.Duration
	UserAgent string
	// Logger receives one debug line per outgoing request when set.
	Logger *slog.Logger
}

// New returns the client shared by the Gemini and Telegram wrappers.
func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if opts.PreferIPv4 {
				return dialer.DialContext(ctx, "tcp4", addr)
			}
			return dialer.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &transport{
			next:      base,
			userAgent: userAgent,
			logger:    opts.Logger,
		},
	}
}

type transport struct {
	next      http.RoundTripper
	userAgent string
	logger    *slog.Logger
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("user-agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("user-agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if t.logger != nil {
		// Only the host is logged: Telegram puts the bot token in the path.
		attrs := []any{"method", req.Method, "host", req.URL.Host, "dur_ms", time.Since(start).Milliseconds()}
		if err != nil {
			attrs = append(attrs, "err", err)
		} else {
			attrs = append(attrs, "status", resp.StatusCode)
		}
		t.logger.Debug("outgoing http", attrs...)
	}
	return resp, err
}
