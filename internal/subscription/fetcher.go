package subscription

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/unknownmsv/O1Sub/internal/domain"
)

// DefaultFetchTimeout bounds a single upstream request.
const DefaultFetchTimeout = 10 * time.Second

// maxBodyBytes caps how much of an upstream payload is read.
const maxBodyBytes = 32 << 20

// ErrMalformedPayload is returned when a payload is not base64 encoded text.
var ErrMalformedPayload = errors.New("malformed subscription payload")

// HTTPFetcher downloads base64 subscription payloads.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch returns the decoded, trimmed, non-empty lines served at url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	decoded, err := DecodePayload(string(body))
	if err != nil {
		return nil, err
	}
	return SplitLines(decoded), nil
}

// DecodePayload decodes base64 text. Padded standard encoding is expected;
// unpadded and URL-safe alphabets are accepted as fallbacks.
func DecodePayload(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		decoded, err := enc.DecodeString(payload)
		if err != nil {
			continue
		}
		if !utf8.Valid(decoded) {
			return "", fmt.Errorf("%w: not utf-8", ErrMalformedPayload)
		}
		return string(decoded), nil
	}
	return "", ErrMalformedPayload
}

// SplitLines splits text into lines, trims them and drops empty ones.
func SplitLines(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	lines := make([]string, 0, len(fields))
	for _, line := range fields {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var _ domain.Fetcher = (*HTTPFetcher)(nil)
