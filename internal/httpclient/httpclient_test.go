package httpclient

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientSetsUserAgentAndLogsHostOnly(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("user-agent")
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	client := New(Options{
		Timeout: 5 * time.Second,
		Logger:  slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})

	resp, err := client.Get(srv.URL + "/bot123:SECRET/getMe")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if gotAgent != defaultUserAgent {
		t.Fatalf("user-agent = %q", gotAgent)
	}
	if !strings.Contains(logs.String(), "status=418") {
		t.Fatalf("log = %q", logs.String())
	}
	if strings.Contains(logs.String(), "SECRET") {
		t.Fatal("request path leaked into the log")
	}
}

func TestClientKeepsCallerUserAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("user-agent")
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("user-agent", "custom/2")
	resp, err := New(Options{UserAgent: "ignored"}).Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if gotAgent != "custom/2" {
		t.Fatalf("user-agent = %q", gotAgent)
	}
}

func TestDefaultTimeout(t *testing.T) {
	if got := New(Options{}).Timeout; got != 180*time.Second {
		t.Fatalf("timeout = %v", got)
	}
}
