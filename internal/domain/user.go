package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

const (
	// Unlimited marks a user without a usage limit.
	Unlimited = -1
	// AnonymousIdentity is used for public requests that carry no name.
	AnonymousIdentity = "__anonymous__"
	// CustomCategory is the usage key recorded for custom subscription reads.
	CustomCategory = "custom"

	timestampLayout = "2006-01-02 15:04:05"
)

// Timestamp is a wall-clock instant persisted in local time without zone.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds, matching the persisted precision.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t.Truncate(time.Second)}
}

func (t Timestamp) String() string {
	return t.Local().Format(timestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseInLocation(timestampLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parse last_seen %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// User is a usage ledger record. The key it is stored under is either a
// username or the name of a custom subscription.
type User struct {
	Limit    int            `json:"limit"`
	Usage    map[string]int `json:"usage"`
	LastSeen *Timestamp     `json:"last_seen"`
}

// NewUser returns an unlimited record with no usage.
func NewUser() *User {
	return &User{Limit: Unlimited, Usage: map[string]int{}}
}

// Exceeded reports whether usage for category is strictly above the limit.
// It is evaluated after the increment, so the read that brings usage to
// exactly L is still served and the next one is refused.
func (u User) Exceeded(category string) bool {
	return u.Limit != Unlimited && u.Usage[category] > u.Limit
}

// Clone returns a deep copy safe to hand out of a lock.
func (u *User) Clone() User {
	if u == nil {
		return User{}
	}
	out := User{Limit: u.Limit, Usage: maps.Clone(u.Usage)}
	if out.Usage == nil {
		out.Usage = map[string]int{}
	}
	if u.LastSeen != nil {
		ts := *u.LastSeen
		out.LastSeen = &ts
	}
	return out
}

// Users is the persisted ledger document.
type Users map[string]*User
