// Package subscription resolves public categories and custom subscriptions
// into the base64 payloads served to clients.
package subscription

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/unknownmsv/O1Sub/internal/domain"
)

// Service answers subscription reads.
type Service struct {
	links      *Links
	registry   *Registry
	ledger     domain.UsageLedger
	aggregator *Aggregator
}

// NewService wires the read path.
func NewService(links *Links, registry *Registry, ledger domain.UsageLedger, aggregator *Aggregator) *Service {
	return &Service{links: links, registry: registry, ledger: ledger, aggregator: aggregator}
}

// Public logs the read against identity, enforces its limit and returns the
// encoded aggregation of category. identity is used as given, the empty string
// included; callers choose domain.AnonymousIdentity. Usage is counted even when
// the read is rejected.
func (s *Service) Public(ctx context.Context, category, identity string) (string, error) {
	urls, ok := s.links.URLs(category)
	if !ok {
		return "", fmt.Errorf("category %q: %w", category, domain.ErrNotFound)
	}
	user, err := s.ledger.LogUsage(ctx, identity, category)
	if err != nil {
		return "", err
	}
	if user.Exceeded(category) {
		return "", fmt.Errorf("%q on %q: %w", identity, category, domain.ErrQuotaExceeded)
	}
	return encode(s.aggregator.Aggregate(ctx, urls)), nil
}

// Custom logs the read under the subscription's own name and returns its
// encoded configs. Custom reads have no limit.
func (s *Service) Custom(ctx context.Context, name string) (string, error) {
	configs, ok := s.registry.Read(name)
	if !ok {
		return "", fmt.Errorf("custom subscription %q: %w", name, domain.ErrNotFound)
	}
	if _, err := s.ledger.LogUsage(ctx, name, domain.CustomCategory); err != nil {
		return "", err
	}
	return encode(strings.Join(configs, "\n")), nil
}

// Preview returns the decoded aggregation of category without touching the
// ledger.
func (s *Service) Preview(ctx context.Context, category string) (string, error) {
	urls, ok := s.links.URLs(category)
	if !ok {
		return "", fmt.Errorf("category %q: %w", category, domain.ErrNotFound)
	}
	return s.aggregator.Aggregate(ctx, urls), nil
}

func encode(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}
