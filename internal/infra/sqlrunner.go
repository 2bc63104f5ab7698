package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLExecutor is the query surface shared by pgxpool.Pool, SQLRunner and test
// doubles.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// ErrMissingMarker rejects a statement whose first line is not "--sql <uuid>".
var ErrMissingMarker = errors.New("sql: statement marker missing or invalid")

var markerLine = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)

// SQLRunner only runs statements tagged with a marker line and logs each one
// by that marker instead of by its text, so document bodies never reach logs.
type SQLRunner struct {
	db     SQLExecutor
	logger zerolog.Logger
}

// NewSQLRunner wraps db, normally a *pgxpool.Pool.
func NewSQLRunner(db SQLExecutor, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{db: db, logger: logger.With().Str("component", "sql").Logger()}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, body, err := splitMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.db.Exec(ctx, body, args...)
	r.observe(marker, "exec", start, err).Int64("rows", tag.RowsAffected()).Send()
	return tag, err
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, body, err := splitMarker(query)
	if err != nil {
		return failedRow{err: err}
	}
	return &timedRow{
		row:    r.db.QueryRow(ctx, body, args...),
		runner: r,
		marker: marker,
		start:  time.Now(),
	}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, body, err := splitMarker(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.db.Query(ctx, body, args...)
	if err != nil {
		r.observe(marker, "query", start, err).Send()
		return nil, err
	}
	return &timedRows{Rows: rows, runner: r, marker: marker, start: start}, nil
}

// observe starts the log event for one finished statement. An empty result is
// not a failure and stays at debug level.
func (r *SQLRunner) observe(marker, op string, start time.Time, err error) *zerolog.Event {
	event := r.logger.Debug()
	if err != nil && !IsNoRows(err) {
		event = r.logger.Error().Err(err)
	}
	return event.Str("sql", marker).Str("op", op).Dur("took", time.Since(start))
}

type timedRow struct {
	row    pgx.Row
	runner *SQLRunner
	marker string
	start  time.Time
}

func (t *timedRow) Scan(dest ...any) error {
	err := t.row.Scan(dest...)
	t.runner.observe(t.marker, "query_row", t.start, err).Bool("found", !IsNoRows(err)).Send()
	return err
}

type timedRows struct {
	pgx.Rows
	runner *SQLRunner
	marker string
	start  time.Time
}

func (t *timedRows) Close() {
	t.Rows.Close()
	t.runner.observe(t.marker, "query", t.start, t.Rows.Err()).Send()
}

type failedRow struct{ err error }

func (f failedRow) Scan(...any) error { return f.err }

// splitMarker returns the marker uuid and the statement without its marker line.
func splitMarker(query string) (marker, body string, err error) {
	head, rest, _ := strings.Cut(strings.TrimSpace(query), "\n")
	m := markerLine.FindStringSubmatch(strings.TrimSpace(head))
	if m == nil {
		return "", "", ErrMissingMarker
	}
	return m[1], strings.TrimSpace(rest), nil
}

// IsNoRows reports whether err means the query matched no rows.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var _ SQLExecutor = (*SQLRunner)(nil)
