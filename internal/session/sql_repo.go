package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"catalogconsole/internal/domain"
)

// OpenDB opens the sqlite session database and creates the schema.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// every :memory: connection is its own database
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL,
  user_json TEXT NULL,
  authenticated INTEGER NOT NULL DEFAULT 0,
  credentials_json TEXT NOT NULL DEFAULT '{}',
  created_at TEXT NOT NULL,
  last_seen  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen);
`
	_, err := db.Exec(schema)
	return err
}

// timeLayout is fixed width so stored timestamps compare as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLRepo struct {
	DB  *sqlx.DB
	TTL time.Duration
}

func NewSQLRepo(db *sqlx.DB, ttl time.Duration) *SQLRepo { return &SQLRepo{DB: db, TTL: ttl} }

type sessionRow struct {
	ID              string         `db:"id"`
	UserID          sql.NullString `db:"user_id"`
	UserJSON        sql.NullString `db:"user_json"`
	Authenticated   bool           `db:"authenticated"`
	CredentialsJSON string         `db:"credentials_json"`
	CreatedAt       string         `db:"created_at"`
	LastSeen        string         `db:"last_seen"`
}

func (r *SQLRepo) Load(ctx context.Context, id string) (Record, error) {
	var row sessionRow
	err := r.DB.GetContext(ctx, &row, `
      SELECT id,user_id,user_json,authenticated,credentials_json,created_at,last_seen
      FROM sessions WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	rec, err := row.record()
	if err != nil {
		return Record{}, err
	}
	if r.TTL > 0 && time.Since(rec.LastSeen) > r.TTL {
		_ = r.Delete(ctx, id)
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (row sessionRow) record() (Record, error) {
	rec := Record{ID: row.ID, Authenticated: row.Authenticated}
	if row.UserJSON.Valid && row.UserJSON.String != "" {
		var u domain.User
		if err := json.Unmarshal([]byte(row.UserJSON.String), &u); err != nil {
			return Record{}, fmt.Errorf("decoding session user: %w", err)
		}
		rec.User = &u
	}
	if err := json.Unmarshal([]byte(row.CredentialsJSON), &rec.Credentials); err != nil {
		return Record{}, fmt.Errorf("decoding session credentials: %w", err)
	}
	var err error
	if rec.CreatedAt, err = time.Parse(timeLayout, row.CreatedAt); err != nil {
		return Record{}, err
	}
	if rec.LastSeen, err = time.Parse(timeLayout, row.LastSeen); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *SQLRepo) Save(ctx context.Context, rec Record) error {
	creds, err := json.Marshal(rec.Credentials)
	if err != nil {
		return err
	}
	var userID, userJSON sql.NullString
	if rec.User != nil {
		raw, err := json.Marshal(rec.User)
		if err != nil {
			return err
		}
		userID = sql.NullString{String: rec.User.ID, Valid: true}
		userJSON = sql.NullString{String: string(raw), Valid: true}
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,user_json,authenticated,credentials_json,created_at,last_seen)
                          VALUES(?,?,?,?,?,?,?)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,user_json=excluded.user_json,
                            authenticated=excluded.authenticated,credentials_json=excluded.credentials_json,
                            last_seen=excluded.last_seen`,
		rec.ID, userID, userJSON, rec.Authenticated, string(creds),
		rec.CreatedAt.UTC().Format(timeLayout), rec.LastSeen.UTC().Format(timeLayout))
	return err
}

func (r *SQLRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id)
	return err
}

// PurgeExpired removes sessions idle longer than the TTL.
func (r *SQLRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.TTL <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-r.TTL).UTC().Format(timeLayout)
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
