// Package ledger tracks how often each identity reads each subscription.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unknownmsv/O1Sub/internal/domain"
	"github.com/unknownmsv/O1Sub/internal/storage"
)

// Ledger owns the users document.
type Ledger struct {
	doc *storage.Document[domain.Users]
	now func() time.Time
}

// New wraps an opened users document.
func New(doc *storage.Document[domain.Users], now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{doc: doc, now: now}
}

// LogUsage counts one read of category by identity and returns the updated record.
func (l *Ledger) LogUsage(ctx context.Context, identity, category string) (domain.User, error) {
	var out domain.User
	err := l.doc.Update(ctx, func(users domain.Users) (domain.Users, error) {
		users = ensureMap(users)
		user := users[identity]
		if user == nil {
			user = domain.NewUser()
			users[identity] = user
		}
		if user.Usage == nil {
			user.Usage = map[string]int{}
		}
		user.Usage[category]++
		user.LastSeen = domain.NewTimestamp(l.now())
		out = user.Clone()
		return users, nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("log usage for %q: %w", identity, err)
	}
	return out, nil
}

// Create adds a new unlimited user.
func (l *Ledger) Create(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username: %w", domain.ErrInvalidInput)
	}
	return l.doc.Update(ctx, func(users domain.Users) (domain.Users, error) {
		users = ensureMap(users)
		if _, ok := users[username]; ok {
			return nil, fmt.Errorf("user %q: %w", username, domain.ErrAlreadyExists)
		}
		users[username] = domain.NewUser()
		return users, nil
	})
}

// Ensure creates a record for identity unless one exists. Nothing is written
// when the record is already there.
func (l *Ledger) Ensure(ctx context.Context, identity string) error {
	var exists bool
	l.doc.View(func(users domain.Users) {
		_, exists = users[identity]
	})
	if exists {
		return nil
	}
	err := l.doc.Update(ctx, func(users domain.Users) (domain.Users, error) {
		users = ensureMap(users)
		if _, ok := users[identity]; ok {
			return nil, domain.ErrAlreadyExists
		}
		users[identity] = domain.NewUser()
		return users, nil
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil
	}
	return err
}

// SetLimit changes the limit of an existing user. -1 removes the limit.
func (l *Ledger) SetLimit(ctx context.Context, username string, limit int) error {
	return l.doc.Update(ctx, func(users domain.Users) (domain.Users, error) {
		user, ok := users[username]
		if !ok || user == nil {
			return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
		}
		user.Limit = limit
		return users, nil
	})
}

// Get returns a copy of one record.
func (l *Ledger) Get(username string) (domain.User, bool) {
	var (
		out domain.User
		ok  bool
	)
	l.doc.View(func(users domain.Users) {
		var user *domain.User
		user, ok = users[username]
		if ok {
			out = user.Clone()
		}
	})
	return out, ok
}

// Snapshot returns a deep copy of every record.
func (l *Ledger) Snapshot() domain.Users {
	out := domain.Users{}
	l.doc.View(func(users domain.Users) {
		for name, user := range users {
			u := user.Clone()
			out[name] = &u
		}
	})
	return out
}

func ensureMap(users domain.Users) domain.Users {
	if users == nil {
		return domain.Users{}
	}
	return users
}

var _ domain.UsageLedger = (*Ledger)(nil)
