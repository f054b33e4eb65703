// Package sqlite provides a SQLite-backed implementation of
// paylog.Repository.
//
// WAL mode is enabled on Open so reads for debugging never block the
// request path writing new rows.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chemabeez/honey-orders/internal/paylog"

	// Register the pure-Go SQLite driver; no CGO needed, which keeps the
	// Docker build on Alpine trivial.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only:
// each row is an immutable event, never updated.
const schema = `
CREATE TABLE IF NOT EXISTS gateway_log (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,

    -- In-process submission ID; empty for callback rows.
    submission_id  TEXT NOT NULL DEFAULT '',

    -- STK_PUSH or CALLBACK.
    kind           TEXT NOT NULL,

    -- ACCEPTED, FAILED, or RECEIVED.
    status         TEXT NOT NULL,

    -- Raw gateway response or callback body.
    payload        TEXT,

    -- Failure description on FAILED rows.
    detail         TEXT NOT NULL DEFAULT '',

    -- W3C trace/span IDs from the active OTel span, for joining with traces.
    trace_id       TEXT NOT NULL DEFAULT '',
    span_id        TEXT NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT, the SQLite idiom.
    created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gateway_log_submission_id ON gateway_log(submission_id, created_at);
CREATE INDEX IF NOT EXISTS idx_gateway_log_trace_id ON gateway_log(trace_id);
`

// Repository is the SQLite implementation of paylog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/paylog.db")
func Open(path string) (*Repository, error) {
	// WAL enables concurrent readers; busy_timeout waits for locks instead
	// of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends a new audit row. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *paylog.Entry) error {
	const q = `
		INSERT INTO gateway_log
			(submission_id, kind, status, payload, detail, trace_id, span_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SubmissionID,
		string(entry.Kind),
		string(entry.Status),
		nullableString(entry.Payload),
		entry.Detail,
		entry.TraceID,
		entry.SpanID,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save gateway log entry: %w", err)
	}
	return nil
}

// Recent returns the newest rows, newest first. Debugging aid only; the
// request path never reads the log.
func (r *Repository) Recent(ctx context.Context, limit int) ([]paylog.Entry, error) {
	const q = `
		SELECT submission_id, kind, status, COALESCE(payload,''), detail,
		       trace_id, span_id, created_at
		FROM   gateway_log
		ORDER  BY id DESC
		LIMIT  ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query gateway log: %w", err)
	}
	defer rows.Close()

	var out []paylog.Entry
	for rows.Next() {
		var e paylog.Entry
		var createdAt string
		if err := rows.Scan(
			&e.SubmissionID,
			&e.Kind,
			&e.Status,
			&e.Payload,
			&e.Detail,
			&e.TraceID,
			&e.SpanID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan gateway log row: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse time %q: %w", createdAt, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// nullableString stores NULL instead of an empty TEXT payload.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
