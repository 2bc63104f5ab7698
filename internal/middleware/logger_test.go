package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestLoggerWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.4" {
			return "", assertError("unexpected ip " + ip)
		}
		return "de", nil
	}
	h := RequestID(Logger(logger, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/sub/normal?name=bob", nil)
	req.RemoteAddr = "203.0.113.4:5555"
	req.Header.Set("X-Request-ID", "rid-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	want := map[string]any{
		"request_id": "rid-1",
		"method":     "GET",
		"path":       "/sub/normal",
		"status":     float64(429),
		"bytes":      float64(9),
		"ip":         "203.0.113.4",
		"country":    "DE",
	}
	for k, v := range want {
		if line[k] != v {
			t.Fatalf("log field %s = %#v, want %#v", k, line[k], v)
		}
	}
}

func TestLoggerWithoutLookup(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(zerolog.New(&buf), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if _, ok := line["country"]; ok {
		t.Fatalf("unexpected country field: %v", line)
	}
	if line["status"] != float64(200) {
		t.Fatalf("status = %v, want 200", line["status"])
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.10:1234"
	if got := ClientIP(req); got != "198.51.100.10" {
		t.Fatalf("ClientIP() = %q", got)
	}
	req.Header.Set("X-Forwarded-For", " 203.0.113.1 , 198.51.100.2")
	if got := ClientIP(req); got != "198.51.100.10" {
		t.Fatalf("ClientIP() trusted a forwarded header: %q", got)
	}
}
