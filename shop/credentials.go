package shop

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "modernc.org/sqlite"
)

// Credentials persists the session token and cached user record locally.
// It survives process restarts; synchronizers only read it, while the
// session flows (login, logout, profile update) write it.
type Credentials struct {
	db *sql.DB
}

// OpenCredentials opens/creates a SQLite database and runs migrations.
func OpenCredentials(path string) (*Credentials, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	c := &Credentials{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database handle.
func (c *Credentials) Close() error { return c.db.Close() }

func (c *Credentials) migrate() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS credentials (
  k TEXT PRIMARY KEY,
  v TEXT NOT NULL
);
`)
	return err
}

func (c *Credentials) get(ctx context.Context, key string) (string, error) {
	var v string
	err := c.db.QueryRowContext(ctx, `SELECT v FROM credentials WHERE k = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

func (c *Credentials) set(ctx context.Context, key, val string) error {
	_, err := c.db.ExecContext(ctx, `
INSERT INTO credentials(k,v) VALUES(?,?)
ON CONFLICT(k) DO UPDATE SET v=excluded.v`, key, val)
	return err
}

// Token returns the stored bearer token, or empty string when logged out.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	return c.get(ctx, "token")
}

// Role returns the stored role claim from the last login.
func (c *Credentials) Role(ctx context.Context) (string, error) {
	return c.get(ctx, "role")
}

// User returns the cached user record, or nil when none is stored.
func (c *Credentials) User(ctx context.Context) (*User, error) {
	raw, err := c.get(ctx, "user")
	if err != nil || raw == "" {
		return nil, err
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetSession stores the token, role, and cached user after a login.
func (c *Credentials) SetSession(ctx context.Context, token string, user User) error {
	if err := c.set(ctx, "token", token); err != nil {
		return err
	}
	if err := c.set(ctx, "role", user.Role); err != nil {
		return err
	}
	return c.SetUser(ctx, user)
}

// SetUser replaces the cached user record, e.g. after a profile update.
func (c *Credentials) SetUser(ctx context.Context, user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.set(ctx, "user", string(raw))
}

// Clear wipes the stored session on logout.
func (c *Credentials) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM credentials`)
	return err
}
