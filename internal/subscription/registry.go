package subscription

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/unknownmsv/O1Sub/internal/domain"
	"github.com/unknownmsv/O1Sub/internal/storage"
)

// errNothingToDo aborts a document update that would not change anything.
var errNothingToDo = errors.New("nothing to do")

// Registry owns the custom subscription document.
type Registry struct {
	doc    *storage.Document[domain.CustomSubs]
	ledger domain.UsageLedger
}

// NewRegistry wraps an opened custom subscription document.
func NewRegistry(doc *storage.Document[domain.CustomSubs], ledger domain.UsageLedger) *Registry {
	return &Registry{doc: doc, ledger: ledger}
}

// Create adds an empty subscription called name and makes sure the ledger
// knows the name. It reports false when name already existed.
func (r *Registry) Create(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, fmt.Errorf("subscription name: %w", domain.ErrInvalidInput)
	}
	created := false
	err := r.doc.Update(ctx, func(subs domain.CustomSubs) (domain.CustomSubs, error) {
		if _, ok := subs[name]; ok {
			return nil, domain.ErrAlreadyExists
		}
		if subs == nil {
			subs = domain.CustomSubs{}
		}
		subs[name] = &domain.CustomSub{Configs: []string{}}
		created = true
		return subs, nil
	})
	if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return false, err
	}
	if !created {
		return false, nil
	}
	if err := r.ledger.Ensure(ctx, name); err != nil {
		return true, err
	}
	return true, nil
}

// Append adds every non-empty trimmed line of text to the subscription and
// returns how many were added. Duplicates are kept.
func (r *Registry) Append(ctx context.Context, name, text string) (int, error) {
	lines := SplitLines(text)
	err := r.doc.Update(ctx, func(subs domain.CustomSubs) (domain.CustomSubs, error) {
		sub, ok := subs[name]
		if !ok || sub == nil {
			return nil, fmt.Errorf("custom subscription %q: %w", name, domain.ErrNotFound)
		}
		if len(lines) == 0 {
			return nil, errNothingToDo
		}
		sub.Configs = append(sub.Configs, lines...)
		return subs, nil
	})
	if errors.Is(err, errNothingToDo) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// Remove deletes the first config equal to value. It reports false, without
// error, when the subscription or the value does not exist.
func (r *Registry) Remove(ctx context.Context, name, value string) (bool, error) {
	err := r.doc.Update(ctx, func(subs domain.CustomSubs) (domain.CustomSubs, error) {
		sub, ok := subs[name]
		if !ok || sub == nil {
			return nil, errNothingToDo
		}
		idx := slices.Index(sub.Configs, value)
		if idx < 0 {
			return nil, errNothingToDo
		}
		sub.Configs = slices.Delete(sub.Configs, idx, idx+1)
		return subs, nil
	})
	if errors.Is(err, errNothingToDo) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Read returns a copy of the configs of name.
func (r *Registry) Read(name string) ([]string, bool) {
	var (
		out []string
		ok  bool
	)
	r.doc.View(func(subs domain.CustomSubs) {
		var sub *domain.CustomSub
		sub, ok = subs[name]
		if ok && sub != nil {
			out = slices.Clone(sub.Configs)
		}
	})
	if ok && out == nil {
		out = []string{}
	}
	return out, ok
}
