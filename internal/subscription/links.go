package subscription

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/unknownmsv/O1Sub/internal/domain"
	"github.com/unknownmsv/O1Sub/internal/storage"
)

// Links owns the public category document.
type Links struct {
	doc *storage.Document[domain.LinkSet]
}

// NewLinks wraps an opened link document.
func NewLinks(doc *storage.Document[domain.LinkSet]) *Links {
	return &Links{doc: doc}
}

// Categories returns the configured category names, sorted.
func (l *Links) Categories() []string {
	var out []string
	l.doc.View(func(set domain.LinkSet) {
		out = lo.Keys(set)
	})
	slices.Sort(out)
	return out
}

// URLs returns the URLs of category in insertion order.
func (l *Links) URLs(category string) ([]string, bool) {
	var (
		out []string
		ok  bool
	)
	l.doc.View(func(set domain.LinkSet) {
		var urls []string
		urls, ok = set[category]
		out = slices.Clone(urls)
	})
	return out, ok
}

// Snapshot returns a copy of the whole link set.
func (l *Links) Snapshot() domain.LinkSet {
	var out domain.LinkSet
	l.doc.View(func(set domain.LinkSet) {
		out = set.Clone()
	})
	return out
}

// Add appends url to an existing category.
func (l *Links) Add(ctx context.Context, category, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("subscription url: %w", domain.ErrInvalidInput)
	}
	return l.doc.Update(ctx, func(set domain.LinkSet) (domain.LinkSet, error) {
		urls, ok := set[category]
		if !ok {
			return nil, fmt.Errorf("category %q: %w", category, domain.ErrInvalidInput)
		}
		if lo.Contains(urls, url) {
			return nil, fmt.Errorf("link %q: %w", url, domain.ErrAlreadyExists)
		}
		set[category] = append(urls, url)
		return set, nil
	})
}

// Remove deletes url from category.
func (l *Links) Remove(ctx context.Context, category, url string) error {
	return l.doc.Update(ctx, func(set domain.LinkSet) (domain.LinkSet, error) {
		urls, ok := set[category]
		idx := lo.IndexOf(urls, url)
		if !ok || idx < 0 {
			return nil, fmt.Errorf("link %q in %q: %w", url, category, domain.ErrNotFound)
		}
		set[category] = slices.Delete(urls, idx, idx+1)
		return set, nil
	})
}
