package subscription

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/unknownmsv/O1Sub/internal/domain"
	"github.com/unknownmsv/O1Sub/internal/ledger"
	"github.com/unknownmsv/O1Sub/internal/storage"
)

type fixture struct {
	store    *storage.FileStore
	ledger   *ledger.Ledger
	links    *Links
	registry *Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	users, err := storage.Open(ctx, store, storage.UsersDocument, domain.Users{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open users: %v", err)
	}
	links, err := storage.Open(ctx, store, storage.LinksDocument, domain.DefaultLinkSet(), zerolog.Nop())
	if err != nil {
		t.Fatalf("open links: %v", err)
	}
	custom, err := storage.Open(ctx, store, storage.CustomSubsDocument, domain.CustomSubs{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open custom subs: %v", err)
	}
	l := ledger.New(users, nil)
	return &fixture{
		store:    store,
		ledger:   l,
		links:    NewLinks(links),
		registry: NewRegistry(custom, l),
	}
}

// upstream serves base64 payloads per path and counts hits.
type upstream struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newUpstream(t *testing.T, routes map[string]string) *upstream {
	t.Helper()
	u := &upstream{hits: map[string]int{}}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.hits[r.URL.Path]++
		u.mu.Unlock()
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) Hits(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
