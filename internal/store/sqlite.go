package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite, one table per collection.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the store's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for bootstrap defaults.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, unavailable("create db dir", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, unavailable("open db", err)
	}

	s := &SQLiteStore{
		db:     db,
		path:   dbPath,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, unavailable("migrate", err)
	}

	return s, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func (s *SQLiteStore) migrate() error {
	for _, c := range Collections {
		schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id   TEXT PRIMARY KEY,
			ts   INTEGER NOT NULL DEFAULT 0,
			body TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_ts ON %[1]s(ts);`, c)
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("create %s: %w", c, err)
		}
	}
	return nil
}

func checkCollection(c Collection) error {
	if !c.valid() {
		return fmt.Errorf("unknown collection %q", c)
	}
	return nil
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func (s *SQLiteStore) Put(ctx context.Context, c Collection, r Record) error {
	if err := checkCollection(c); err != nil {
		return err
	}
	id := r.RecordID()
	if id == "" {
		return fmt.Errorf("put %s: empty id", c)
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c, id, err)
	}

	// Upsert keeps the original rowid so insertion order survives updates.
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, ts, body) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET ts = excluded.ts, body = excluded.body`, c),
		id, stamp(r.RecordTime()), string(body))
	if err != nil {
		return unavailable("put "+string(c), err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, c Collection, id string, dst any) error {
	if err := checkCollection(c); err != nil {
		return err
	}
	var body string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT body FROM %s WHERE id = ?`, c), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	if err != nil {
		return unavailable("get "+string(c), err)
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", c, id, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, c Collection, id string) error {
	if err := checkCollection(c); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, c), id); err != nil {
		return unavailable("delete "+string(c), err)
	}
	return nil
}

func (s *SQLiteStore) ListAll(ctx context.Context, c Collection) ([]json.RawMessage, error) {
	if err := checkCollection(c); err != nil {
		return nil, err
	}
	order := "rowid ASC"
	switch c {
	case Logs:
		order = "ts ASC, rowid ASC"
	case Artifacts:
		order = "ts DESC, rowid DESC"
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT body FROM %s ORDER BY %s`, c, order))
	if err != nil {
		return nil, unavailable("list "+string(c), err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, unavailable("scan "+string(c), err)
		}
		out = append(out, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list "+string(c), err)
	}
	return out, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, c Collection) error {
	if err := checkCollection(c); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, c)); err != nil {
		return unavailable("clear "+string(c), err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// decodeAll unmarshals every raw body into a T.
func decodeAll[T any](c Collection, raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c, err)
		}
		out = append(out, v)
	}
	return out, nil
}
