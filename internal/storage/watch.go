package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Reloader is implemented by Document.
type Reloader interface {
	Name() string
	Reload(ctx context.Context) error
}

// Watch reloads documents whose files change under the store directory, so
// hand edits made while the service runs are picked up. It blocks until ctx
// is done.
func Watch(ctx context.Context, store *FileStore, logger zerolog.Logger, docs ...Reloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storage: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(store.BasePath()); err != nil {
		return fmt.Errorf("storage: watch %s: %w", store.BasePath(), err)
	}

	byPath := make(map[string]Reloader, len(docs))
	for _, doc := range docs {
		path, err := store.Path(doc.Name())
		if err != nil {
			return err
		}
		byPath[filepath.Clean(path)] = doc
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			doc, ok := byPath[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			if err := doc.Reload(ctx); err != nil {
				logger.Warn().Err(err).Str("document", doc.Name()).Msg("reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("document watcher error")
		}
	}
}
