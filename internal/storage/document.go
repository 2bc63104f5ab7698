package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Document names used by the service.
const (
	UsersDocument      = "users.json"
	LinksDocument      = "subscriptions.json"
	CustomSubsDocument = "custom_subs.json"
)

// ErrNotFound is returned by a Backend when the document does not exist.
var ErrNotFound = errors.New("storage: document not found")

// Backend reads and writes whole named documents.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// Load parses the named document. A missing or unparsable document is
// replaced by def, which is written back and returned.
func Load[T any](ctx context.Context, b Backend, name string, def T) (T, error) {
	raw, err := b.Read(ctx, name)
	if err == nil {
		var doc T
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil {
			return doc, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return def, err
	}
	if err := Save(ctx, b, name, def); err != nil {
		return def, err
	}
	return def, nil
}

// Save writes doc as indented JSON, keeping non-ASCII text literal.
func Save[T any](ctx context.Context, b Backend, name string, doc T) error {
	raw, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", name, err)
	}
	return b.Write(ctx, name, raw)
}

// Marshal renders doc the way it is persisted.
func Marshal(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Document holds the single writable in-memory copy of a persisted document.
// Mutations run under the document lock and are saved before the lock is
// released.
type Document[T any] struct {
	mu      sync.Mutex
	backend Backend
	name    string
	value   T
	last    []byte
	logger  zerolog.Logger
}

// Open loads the named document, self-healing it with def when needed.
func Open[T any](ctx context.Context, b Backend, name string, def T, logger zerolog.Logger) (*Document[T], error) {
	value, err := Load(ctx, b, name, def)
	if err != nil {
		return nil, err
	}
	last, _ := Marshal(value)
	return &Document[T]{
		backend: b,
		name:    name,
		value:   value,
		last:    last,
		logger:  logger.With().Str("document", name).Logger(),
	}, nil
}

// Name returns the document name.
func (d *Document[T]) Name() string {
	return d.name
}

// View calls fn with the current value. fn must not retain or mutate it.
func (d *Document[T]) View(fn func(T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.value)
}

// Update runs fn against the value and persists the result. fn may mutate the
// value in place. When fn, encoding or the write fails, the in-memory value is
// restored from the last persisted copy and the error is returned as is.
func (d *Document[T]) Update(ctx context.Context, fn func(T) (T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, err := fn(d.value)
	if err != nil {
		d.restore()
		return err
	}
	raw, err := Marshal(next)
	if err != nil {
		d.restore()
		return fmt.Errorf("storage: encode %s: %w", d.name, err)
	}
	if err := d.backend.Write(ctx, d.name, raw); err != nil {
		d.logger.Error().Err(err).Msg("persist document failed")
		d.restore()
		return err
	}
	d.value = next
	d.last = raw
	return nil
}

// restore resets the value to the last persisted bytes. Callers hold mu.
func (d *Document[T]) restore() {
	var prev T
	if err := json.Unmarshal(d.last, &prev); err != nil {
		d.logger.Error().Err(err).Msg("restore document failed")
		return
	}
	d.value = prev
}

// Reload replaces the in-memory value with the stored one. Content equal to
// the last write is skipped, and corrupt content keeps the current value.
func (d *Document[T]) Reload(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.backend.Read(ctx, d.name)
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(raw), bytes.TrimSpace(d.last)) {
		return nil
	}
	var next T
	if err := json.Unmarshal(raw, &next); err != nil {
		d.logger.Warn().Err(err).Msg("ignoring unparsable document on reload")
		return nil
	}
	d.value = next
	d.last = raw
	d.logger.Info().Msg("document reloaded")
	return nil
}
