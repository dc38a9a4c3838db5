// Package sqlite provides a durable implementation of the core store
// interfaces backed by a single SQLite database (pure-Go driver). One Store
// serves all interfaces; callers pass the same instance wherever a store is
// needed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dialwise/evalpipe/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	org_id TEXT NOT NULL,
	status TEXT NOT NULL,
	transcript TEXT,
	error_message TEXT,
	evaluation_id TEXT,
	created REAL NOT NULL,
	updated REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS evaluations (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	org_id TEXT NOT NULL,
	overall_score REAL NOT NULL,
	tier TEXT NOT NULL,
	payload TEXT NOT NULL,
	created REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	data TEXT,
	created REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS calendar_entries (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	title TEXT,
	starts_at REAL NOT NULL,
	bot_status TEXT NOT NULL,
	evaluation_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_calendar_session ON calendar_entries(session_id);
CREATE TABLE IF NOT EXISTS practice_scenarios (
	id TEXT PRIMARY KEY,
	evaluation_id TEXT NOT NULL,
	status TEXT NOT NULL,
	config TEXT NOT NULL,
	created REAL NOT NULL
);
`

// Store provides durable persistence for sessions, evaluations,
// notifications, calendar entries and practice scenarios.
type Store struct {
	db *sql.DB
}

var (
	_ core.SessionStore    = (*Store)(nil)
	_ core.EvaluationStore = (*Store)(nil)
	_ core.CalendarStore   = (*Store)(nil)
)

// Open opens (or creates) the database at path and bootstraps the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the session or core.ErrSessionNotFound.
func (s *Store) Get(ctx context.Context, id string) (*core.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, org_id, status, transcript, error_message, evaluation_id, created, updated
		FROM sessions
		WHERE id = ?
	`, id)

	var sess core.Session
	var status string
	var transcript, errMsg, evalID sql.NullString
	var created, updated float64
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.OrgID, &status,
		&transcript, &errMsg, &evalID, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.Status = core.SessionStatus(status)
	sess.ErrorMessage = errMsg.String
	sess.EvaluationID = evalID.String
	sess.Created = timeFromUnix(created)
	sess.Updated = timeFromUnix(updated)
	if transcript.Valid && transcript.String != "" {
		if err := json.Unmarshal([]byte(transcript.String), &sess.Transcript); err != nil {
			return nil, fmt.Errorf("decode transcript: %w", err)
		}
	}
	return &sess, nil
}

// Save upserts the session record.
func (s *Store) Save(ctx context.Context, sess *core.Session) error {
	var transcript []byte
	if len(sess.Transcript) > 0 {
		var err error
		transcript, err = json.Marshal(sess.Transcript)
		if err != nil {
			return fmt.Errorf("encode transcript: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, org_id, status, transcript, error_message, evaluation_id, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			transcript = excluded.transcript,
			error_message = excluded.error_message,
			evaluation_id = excluded.evaluation_id,
			updated = excluded.updated
	`, sess.ID, sess.UserID, sess.OrgID, string(sess.Status), nullable(transcript),
		sess.ErrorMessage, sess.EvaluationID, unixFrom(sess.Created), float64(time.Now().UnixMilli())/1000)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// InsertOrExisting inserts the evaluation unless one already exists for the
// session. The UNIQUE constraint on session_id arbitrates concurrent inserts;
// a rejected insert falls back to re-reading the winner's record.
func (s *Store) InsertOrExisting(ctx context.Context, eval *core.Evaluation) (*core.Evaluation, bool, error) {
	payload, err := json.Marshal(eval)
	if err != nil {
		return nil, false, fmt.Errorf("encode evaluation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, session_id, user_id, org_id, overall_score, tier, payload, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, eval.ID, eval.SessionID, eval.UserID, eval.OrgID, eval.OverallScore,
		string(eval.Tier), string(payload), unixFrom(eval.Created))
	if err == nil {
		return eval, true, nil
	}

	// Insert rejected: if a record for the session exists the constraint
	// fired and the winner's record is authoritative. Anything else is a
	// genuine storage failure.
	existing, getErr := s.GetBySession(ctx, eval.SessionID)
	if getErr != nil {
		return nil, false, fmt.Errorf("insert evaluation: %w", err)
	}
	if existing == nil {
		return nil, false, fmt.Errorf("insert evaluation: %w", err)
	}
	return existing, false, nil
}

// GetBySession returns the evaluation for the session, or (nil, nil) when
// none exists.
func (s *Store) GetBySession(ctx context.Context, sessionID string) (*core.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM evaluations WHERE session_id = ?
	`, sessionID)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan evaluation: %w", err)
	}

	var eval core.Evaluation
	if err := json.Unmarshal([]byte(payload), &eval); err != nil {
		return nil, fmt.Errorf("decode evaluation: %w", err)
	}
	return &eval, nil
}

// Notifications returns the notification facet of the store. Insert shares a
// method name across two core interfaces, so each gets its own facet type.
func (s *Store) Notifications() core.NotificationStore {
	return notificationFacet{s}
}

// Scenarios returns the practice-scenario facet of the store.
func (s *Store) Scenarios() core.ScenarioStore {
	return scenarioFacet{s}
}

type notificationFacet struct{ s *Store }

var _ core.NotificationStore = notificationFacet{}

// Insert appends a notification.
func (f notificationFacet) Insert(ctx context.Context, n *core.Notification) error {
	s := f.s
	var data []byte
	if len(n.Data) > 0 {
		var err error
		data, err = json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("encode notification data: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, data, created)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, string(n.Type), n.Title, n.Message, nullable(data), unixFrom(n.Created))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// CompleteBySession marks the calendar entry linked to the session as
// completed. A missing entry is (false, nil).
func (s *Store) CompleteBySession(ctx context.Context, sessionID, evaluationID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE calendar_entries SET bot_status = ?, evaluation_id = ?
		WHERE session_id = ?
	`, core.BotStatusCompleted, evaluationID, sessionID)
	if err != nil {
		return false, fmt.Errorf("update calendar entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

type scenarioFacet struct{ s *Store }

var _ core.ScenarioStore = scenarioFacet{}

// Insert appends a practice scenario.
func (f scenarioFacet) Insert(ctx context.Context, sc *core.PracticeScenario) error {
	s := f.s
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO practice_scenarios (id, evaluation_id, status, config, created)
		VALUES (?, ?, ?, ?, ?)
	`, sc.ID, sc.EvaluationID, string(sc.Status), string(sc.Config), unixFrom(sc.Created))
	if err != nil {
		return fmt.Errorf("insert scenario: %w", err)
	}
	return nil
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func timeFromUnix(sec float64) time.Time {
	return time.UnixMilli(int64(sec * 1000))
}

func unixFrom(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}
