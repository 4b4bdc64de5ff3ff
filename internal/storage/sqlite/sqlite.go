// Package sqlite implements the record store contract on a local SQLite
// database for self-hosted deployments and integration tests. The hosted
// workspace backend implements the same interface over its HTTP API.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS review_items (
	id               TEXT PRIMARY KEY,
	text             TEXT NOT NULL DEFAULT '',
	direction        TEXT NOT NULL DEFAULT 'theirs',
	assignees        TEXT NOT NULL DEFAULT '[]',
	requesters       TEXT NOT NULL DEFAULT '[]',
	due_date         TEXT,
	confidence       REAL NOT NULL DEFAULT 0,
	reasons          TEXT NOT NULL DEFAULT '[]',
	context          TEXT NOT NULL DEFAULT '',
	key              TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'pending',
	meeting_ref      TEXT NOT NULL DEFAULT '',
	last_modified_at TEXT NOT NULL,
	linked_commit_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_review_items_key ON review_items(key);
CREATE INDEX IF NOT EXISTS idx_review_items_status ON review_items(status);
`

const itemColumns = `id, text, direction, assignees, requesters, due_date, confidence,
	reasons, context, key, status, meeting_ref, last_modified_at, linked_commit_id`

// Store is a SQLite-backed record store.
type Store struct {
	db *sql.DB

	// now is the write clock; overridden in tests.
	now func() time.Time
}

var _ storage.Store = (*Store)(nil)

// New opens (or creates) the database at path and initializes the schema.
// The special path ":memory:" creates an in-memory database.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Query(ctx context.Context, filter storage.Filter) ([]*types.ReviewItem, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Key != "" {
		clauses = append(clauses, "key = ?")
		args = append(args, filter.Key)
	}
	if filter.OpenOnly {
		clauses = append(clauses, "status IN (?, ?)")
		args = append(args, string(types.StatusPending), string(types.StatusNeedsReview))
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Statuses)), ", ")
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", placeholders))
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}

	query := "SELECT " + itemColumns + " FROM review_items"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review items: %w", err)
	}
	defer rows.Close()

	var items []*types.ReviewItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*types.ReviewItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM review_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Store) Create(ctx context.Context, item *types.ReviewItem) (string, error) {
	id := uuid.NewString()
	now := s.now().UTC()

	assignees, requesters, reasons, due, err := encodeLists(item)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, item.Text, string(item.Direction), assignees, requesters, due,
		item.Confidence, reasons, item.Context, item.Key, string(item.Status),
		item.MeetingRef, now.Format(time.RFC3339Nano), item.LinkedCommitID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create review item: %w", err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, id string, item *types.ReviewItem) error {
	assignees, requesters, reasons, due, err := encodeLists(item)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE review_items
		SET text = ?, direction = ?, assignees = ?, requesters = ?, due_date = ?,
		    confidence = ?, reasons = ?, context = ?, key = ?, status = ?,
		    meeting_ref = ?, last_modified_at = ?, linked_commit_id = ?
		WHERE id = ?`,
		item.Text, string(item.Direction), assignees, requesters, due,
		item.Confidence, reasons, item.Context, item.Key, string(item.Status),
		item.MeetingRef, s.now().UTC().Format(time.RFC3339Nano), item.LinkedCommitID,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update review item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) BulkUpdateStatus(ctx context.Context, ids []string, status types.Status) (storage.BulkResult, error) {
	var result storage.BulkResult
	now := s.now().UTC().Format(time.RFC3339Nano)

	// Per-id updates rather than one IN clause: a missing or failing row
	// must not abort the rest of the batch.
	for _, id := range ids {
		res, err := s.db.ExecContext(ctx,
			"UPDATE review_items SET status = ?, last_modified_at = ? WHERE id = ?",
			string(status), now, id)
		if err != nil {
			result.Errors++
			continue
		}
		affected, err := res.RowsAffected()
		if err != nil || affected == 0 {
			result.Errors++
			continue
		}
		result.Updated++
	}
	return result, nil
}

func (s *Store) FetchAll(ctx context.Context, statuses ...types.Status) ([]*types.ReviewItem, error) {
	return s.Query(ctx, storage.Filter{Statuses: statuses})
}

func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*types.ReviewItem, error) {
	var (
		item       types.ReviewItem
		direction  string
		status     string
		assignees  string
		requesters string
		reasons    string
		due        sql.NullString
		modified   string
	)
	err := row.Scan(&item.ID, &item.Text, &direction, &assignees, &requesters,
		&due, &item.Confidence, &reasons, &item.Context, &item.Key, &status,
		&item.MeetingRef, &modified, &item.LinkedCommitID)
	if err != nil {
		return nil, err
	}

	item.Direction = types.Direction(direction)
	item.Status = types.Status(status)

	if err := json.Unmarshal([]byte(assignees), &item.Assignees); err != nil {
		return nil, fmt.Errorf("failed to decode assignees: %w", err)
	}
	if err := json.Unmarshal([]byte(requesters), &item.Requesters); err != nil {
		return nil, fmt.Errorf("failed to decode requesters: %w", err)
	}
	if err := json.Unmarshal([]byte(reasons), &item.Reasons); err != nil {
		return nil, fmt.Errorf("failed to decode reasons: %w", err)
	}
	if due.Valid && due.String != "" {
		t, err := time.Parse(time.RFC3339, due.String)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", due.String, err)
		}
		item.DueDate = &t
	}
	if item.LastModifiedAt, err = time.Parse(time.RFC3339Nano, modified); err != nil {
		return nil, fmt.Errorf("invalid last_modified_at %q: %w", modified, err)
	}
	return &item, nil
}

func encodeLists(item *types.ReviewItem) (assignees, requesters, reasons string, due any, err error) {
	enc := func(v []string) (string, error) {
		if v == nil {
			v = []string{}
		}
		b, err := json.Marshal(v)
		return string(b), err
	}
	if assignees, err = enc(item.Assignees); err != nil {
		return "", "", "", nil, fmt.Errorf("failed to encode assignees: %w", err)
	}
	if requesters, err = enc(item.Requesters); err != nil {
		return "", "", "", nil, fmt.Errorf("failed to encode requesters: %w", err)
	}
	if reasons, err = enc(item.Reasons); err != nil {
		return "", "", "", nil, fmt.Errorf("failed to encode reasons: %w", err)
	}
	if item.DueDate != nil {
		due = item.DueDate.UTC().Format(time.RFC3339)
	}
	return assignees, requesters, reasons, due, nil
}
