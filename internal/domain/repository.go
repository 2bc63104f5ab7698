package domain

import "context"

// UsageLedger records subscription reads per identity.
type UsageLedger interface {
	LogUsage(ctx context.Context, identity, category string) (User, error)
	Ensure(ctx context.Context, identity string) error
}

// Fetcher downloads and decodes one remote subscription.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]string, error)
}
