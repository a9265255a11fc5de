package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound signals that no session exists for a participant key.
var ErrNotFound = errors.New("session not found")

// Store persists sessions and the per-turn audit log in sqlite. Writes for
// one session happen inside that session's turn, which the gateway
// serializes, so the store only needs read-after-write consistency per key.
type Store struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore opens (or creates) the session database.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db, locks: make(map[string]*sync.Mutex)}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			key TEXT PRIMARY KEY,
			state TEXT NOT NULL DEFAULT 'INITIAL',
			data TEXT NOT NULL DEFAULT '{}',
			last_activity TEXT NOT NULL DEFAULT (datetime('now')),
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_activity ON sessions(last_activity)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_key TEXT NOT NULL,
			state_before TEXT NOT NULL DEFAULT '',
			state_after TEXT NOT NULL DEFAULT '',
			intent TEXT NOT NULL DEFAULT '',
			inbound TEXT NOT NULL DEFAULT '',
			reply TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_log(session_key, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lock returns the mutex serializing turns for one session key. The gateway
// holds it across read-compute-write so two close-together messages from
// the same participant cannot interleave.
func (s *Store) Lock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

// Get loads a session by key.
func (s *Store) Get(key string) (*Session, error) {
	row := s.db.QueryRow(`SELECT state, data, last_activity, created_at FROM sessions WHERE key = ?`, key)

	var state, data, lastActivity, createdAt string
	if err := row.Scan(&state, &data, &lastActivity, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := &Session{Key: key, State: State(state)}
	if err := json.Unmarshal([]byte(data), &sess.Data); err != nil {
		return nil, fmt.Errorf("decode session data: %w", err)
	}
	sess.LastActivity, _ = time.Parse(time.RFC3339, lastActivity)
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sess, nil
}

// GetOrCreate loads the session for key, creating a fresh one on first
// contact.
func (s *Store) GetOrCreate(key string) (*Session, error) {
	sess, err := s.Get(key)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	sess = New(key)
	if err := s.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save upserts the whole session. The single-row write is the turn's atomic
// commit point: the next message for this key sees all of it or none.
func (s *Store) Save(sess *Session) error {
	data, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (key, state, data, last_activity, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			state = excluded.state,
			data = excluded.data,
			last_activity = excluded.last_activity`,
		sess.Key, string(sess.State), string(data),
		sess.LastActivity.UTC().Format(time.RFC3339),
		sess.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// AuditEntry is one processed turn recorded for offline analysis.
type AuditEntry struct {
	SessionKey  string
	StateBefore State
	StateAfter  State
	Intent      string
	Inbound     string
	Reply       string
}

// Audit appends a turn record. Audit failures are the caller's to log, not
// to fail the turn over.
func (s *Store) Audit(e AuditEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_log (session_key, state_before, state_after, intent, inbound, reply)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionKey, string(e.StateBefore), string(e.StateAfter), e.Intent, e.Inbound, e.Reply,
	)
	if err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// ListByState returns the sessions currently in one of the given states,
// oldest transfer first. Used by the waiting-case admin view.
func (s *Store) ListByState(states ...State) ([]*Session, error) {
	if len(states) == 0 {
		return nil, nil
	}

	query := `SELECT key, state, data, last_activity, created_at FROM sessions WHERE state IN (?` +
		repeatPlaceholder(len(states)-1) + `) ORDER BY last_activity ASC`
	args := make([]any, len(states))
	for i, st := range states {
		args[i] = string(st)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		var key, state, data, lastActivity, createdAt string
		if err := rows.Scan(&key, &state, &data, &lastActivity, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess := &Session{Key: key, State: State(state)}
		if err := json.Unmarshal([]byte(data), &sess.Data); err != nil {
			return nil, fmt.Errorf("decode session data: %w", err)
		}
		sess.LastActivity, _ = time.Parse(time.RFC3339, lastActivity)
		sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteInactive reaps sessions idle longer than maxAge, skipping paused
// ones so an escalated case is never dropped by the sweep. Returns the
// number removed.
func (s *Store) DeleteInactive(maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	res, err := s.db.Exec(`
		DELETE FROM sessions
		WHERE last_activity < ?
		  AND state NOT IN (?, ?)`,
		cutoff, string(StateHumanAssistance), string(StateWaitingForResolution),
	)
	if err != nil {
		return 0, fmt.Errorf("delete inactive sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
