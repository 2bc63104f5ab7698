package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/unknownmsv/O1Sub/internal/domain"
	"github.com/unknownmsv/O1Sub/internal/infra"
	"github.com/unknownmsv/O1Sub/internal/storage"
)

func testConfig(dir string) *infra.Config {
	return &infra.Config{
		DataDir:          dir,
		CacheTTL:         time.Minute,
		FetchTimeout:     time.Second,
		FetchConcurrency: 1,
	}
}

func TestOpenSeedsDefaults(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	stores, err := Open(ctx, testConfig(dir), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer stores.Close()

	for _, name := range []string{storage.UsersDocument, storage.LinksDocument, storage.CustomSubsDocument} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s not created: %v", name, err)
		}
	}
	got := stores.Links.Categories()
	want := []string{domain.CategoryFragment, domain.CategoryFullNormal, domain.CategoryNormal}
	if len(got) != len(want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("categories = %v, want %v", got, want)
		}
	}

	svc, err := stores.NewService(ctx, testConfig(dir))
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	out, err := svc.Public(ctx, domain.CategoryNormal, "bob")
	if err != nil || out != "" {
		t.Fatalf("Public = %q, %v", out, err)
	}
}

func TestOpenHealsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, storage.UsersDocument), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	stores, err := Open(context.Background(), testConfig(dir), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer stores.Close()
	if users := stores.Ledger.Snapshot(); len(users) != 0 {
		t.Fatalf("users = %v, want empty", users)
	}
	raw, err := os.ReadFile(filepath.Join(dir, storage.UsersDocument))
	if err != nil {
		t.Fatalf("read users: %v", err)
	}
	if string(raw) != "{}" {
		t.Fatalf("users.json = %q, want {}", raw)
	}
}

func TestRawReturnsStoredDocuments(t *testing.T) {
	ctx := context.Background()
	stores, err := Open(ctx, testConfig(t.TempDir()), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer stores.Close()
	if err := stores.Ledger.Create(ctx, "bob"); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	for _, name := range DocumentNames() {
		raw, err := stores.Raw(ctx, name)
		if err != nil {
			t.Fatalf("Raw(%s) error: %v", name, err)
		}
		if name == storage.UsersDocument && !strings.Contains(string(raw), `"bob"`) {
			t.Fatalf("users document = %s", raw)
		}
	}
}
