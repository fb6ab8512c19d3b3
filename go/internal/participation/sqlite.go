package participation

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS poll_votes (
  poll_id TEXT NOT NULL PRIMARY KEY,
  option_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS contest_entries (
  contest_id TEXT NOT NULL PRIMARY KEY
);`

// SQLiteStore persists the participation record in a local SQLite file. Each
// key set (poll votes, contest entries) lives in its own table so they stay
// independently serializable.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the participation database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=wal;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// LoadPollVotes reads the full pollID -> optionID map.
func (s *SQLiteStore) LoadPollVotes(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT poll_id, option_id FROM poll_votes;`)
	if err != nil {
		return nil, fmt.Errorf("load poll votes: %w", err)
	}
	defer rows.Close()

	votes := make(map[string]string)
	for rows.Next() {
		var pollID, optionID string
		if err := rows.Scan(&pollID, &optionID); err != nil {
			return nil, fmt.Errorf("scan poll vote: %w", err)
		}
		votes[pollID] = optionID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate poll votes: %w", err)
	}
	return votes, nil
}

// LoadContestEntries reads the set of entered contest ids.
func (s *SQLiteStore) LoadContestEntries(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT contest_id FROM contest_entries;`)
	if err != nil {
		return nil, fmt.Errorf("load contest entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]struct{})
	for rows.Next() {
		var contestID string
		if err := rows.Scan(&contestID); err != nil {
			return nil, fmt.Errorf("scan contest entry: %w", err)
		}
		entries[contestID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contest entries: %w", err)
	}
	return entries, nil
}

// UpsertPollVote writes or overwrites the stored option for a poll.
func (s *SQLiteStore) UpsertPollVote(ctx context.Context, pollID, optionID string) error {
	const q = `INSERT INTO poll_votes (poll_id, option_id) VALUES (?, ?)
ON CONFLICT(poll_id) DO UPDATE SET option_id = excluded.option_id;`
	if _, err := s.db.ExecContext(ctx, q, pollID, optionID); err != nil {
		return fmt.Errorf("upsert poll vote: %w", err)
	}
	return nil
}

// InsertContestEntry marks a contest as entered. Idempotent.
func (s *SQLiteStore) InsertContestEntry(ctx context.Context, contestID string) error {
	const q = `INSERT INTO contest_entries (contest_id) VALUES (?)
ON CONFLICT(contest_id) DO NOTHING;`
	if _, err := s.db.ExecContext(ctx, q, contestID); err != nil {
		return fmt.Errorf("insert contest entry: %w", err)
	}
	return nil
}

// DeleteAll wipes both tables.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM poll_votes;`); err != nil {
		return fmt.Errorf("clear poll votes: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM contest_entries;`); err != nil {
		return fmt.Errorf("clear contest entries: %w", err)
	}
	return nil
}
