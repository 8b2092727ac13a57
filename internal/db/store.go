// internal/db/store.go
// Durable sink for completed debates. The core never touches this package;
// the front-end persists a read-only snapshot after the debate completes.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"podium/internal/state"
)

// Store persists debate snapshots in sqlite
type Store struct {
	db *sql.DB
}

// DebateRecord is a stored debate summary
type DebateRecord struct {
	ID        string
	Topic     string
	Rounds    int
	MaxRounds int
	Outcome   string
	Winner    string
	Rationale string
	StartedAt time.Time
	EndedAt   time.Time
}

// TurnRecord is one stored turn
type TurnRecord struct {
	ID       int64
	DebateID string
	AgentID  string
	Round    int
	Argument string
	Accepted bool
	At       time.Time
}

// Open creates or opens the debate database under dir
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "debates.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS debates (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		rounds INTEGER NOT NULL,
		max_rounds INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		winner TEXT,
		rationale TEXT,
		started_at TIMESTAMP,
		ended_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		debate_id TEXT NOT NULL REFERENCES debates(id),
		agent_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		argument TEXT NOT NULL,
		accepted BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_turns_debate ON turns(debate_id);

	CREATE TABLE IF NOT EXISTS rejections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		debate_id TEXT NOT NULL REFERENCES debates(id),
		agent_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		candidate TEXT NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rejections_debate ON rejections(debate_id);

	CREATE TABLE IF NOT EXISTS scores (
		debate_id TEXT NOT NULL REFERENCES debates(id),
		agent_id TEXT NOT NULL,
		score REAL NOT NULL,
		PRIMARY KEY (debate_id, agent_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot persists a completed debate in one transaction
func (s *Store) SaveSnapshot(snap state.Snapshot) error {
	if snap.Verdict == nil {
		return fmt.Errorf("save snapshot: debate %s has no verdict", snap.ID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	v := snap.Verdict
	if _, err := tx.Exec(
		`INSERT INTO debates (id, topic, rounds, max_rounds, outcome, winner, rationale, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Topic, snap.Rounds, snap.MaxRounds,
		v.Outcome.String(), v.Winner, v.Rationale, snap.StartedAt, snap.EndedAt,
	); err != nil {
		return err
	}

	for _, t := range snap.Turns {
		if _, err := tx.Exec(
			`INSERT INTO turns (debate_id, agent_id, round, argument, accepted, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			snap.ID, t.AgentID, t.Round, t.Argument, t.Accepted, t.Timestamp,
		); err != nil {
			return err
		}
	}

	for _, r := range snap.Rejections {
		if _, err := tx.Exec(
			`INSERT INTO rejections (debate_id, agent_id, round, candidate, reason)
			 VALUES (?, ?, ?, ?, ?)`,
			snap.ID, r.AgentID, r.Round, r.Text, r.Reason,
		); err != nil {
			return err
		}
	}

	for agentID, score := range v.Scores {
		if _, err := tx.Exec(
			`INSERT INTO scores (debate_id, agent_id, score) VALUES (?, ?, ?)`,
			snap.ID, agentID, score,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetDebate retrieves a stored debate summary
func (s *Store) GetDebate(id string) (*DebateRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, topic, rounds, max_rounds, outcome, winner, rationale, started_at, ended_at
		 FROM debates WHERE id = ?`, id,
	)

	var d DebateRecord
	var winner, rationale sql.NullString
	if err := row.Scan(&d.ID, &d.Topic, &d.Rounds, &d.MaxRounds, &d.Outcome,
		&winner, &rationale, &d.StartedAt, &d.EndedAt); err != nil {
		return nil, err
	}
	d.Winner = winner.String
	d.Rationale = rationale.String
	return &d, nil
}

// ListDebates returns stored debates, most recent first
func (s *Store) ListDebates() ([]DebateRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, topic, rounds, max_rounds, outcome, winner, rationale, started_at, ended_at
		 FROM debates ORDER BY ended_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debates []DebateRecord
	for rows.Next() {
		var d DebateRecord
		var winner, rationale sql.NullString
		if err := rows.Scan(&d.ID, &d.Topic, &d.Rounds, &d.MaxRounds, &d.Outcome,
			&winner, &rationale, &d.StartedAt, &d.EndedAt); err != nil {
			return nil, err
		}
		d.Winner = winner.String
		d.Rationale = rationale.String
		debates = append(debates, d)
	}
	return debates, rows.Err()
}

// GetTurns retrieves the stored transcript for a debate
func (s *Store) GetTurns(debateID string) ([]TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, debate_id, agent_id, round, argument, accepted, created_at
		 FROM turns WHERE debate_id = ? ORDER BY id`,
		debateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []TurnRecord
	for rows.Next() {
		var t TurnRecord
		if err := rows.Scan(&t.ID, &t.DebateID, &t.AgentID, &t.Round, &t.Argument, &t.Accepted, &t.At); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// GetScores retrieves per-agent scores for a debate
func (s *Store) GetScores(debateID string) (map[string]float64, error) {
	rows, err := s.db.Query(
		`SELECT agent_id, score FROM scores WHERE debate_id = ?`, debateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var agentID string
		var score float64
		if err := rows.Scan(&agentID, &score); err != nil {
			return nil, err
		}
		scores[agentID] = score
	}
	return scores, rows.Err()
}
