package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zucenko/contagion/model"
	_ "modernc.org/sqlite"
)

var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointStore keeps gob encoded model snapshots per session in SQLite.
type CheckpointStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	session    TEXT    NOT NULL,
	generation INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	snapshot   BLOB    NOT NULL,
	PRIMARY KEY (session, generation)
)`

func OpenCheckpointStore(path string) (*CheckpointStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		path, (5 * time.Second).Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &CheckpointStore{db: db}, nil
}

func (s *CheckpointStore) Save(ctx context.Context, session string, snap model.Snapshot) error {
	var buf bytes.Buffer
	if err := model.WriteSnapshot(&buf, snap); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO checkpoints (session, generation, created_at, snapshot) VALUES (?, ?, ?, ?)`,
		session, int64(snap.Generation), time.Now().Unix(), buf.Bytes())
	if err != nil {
		return fmt.Errorf("save checkpoint %s@%d: %w", session, snap.Generation, err)
	}
	return nil
}

// Latest returns the checkpoint with the highest generation for session.
func (s *CheckpointStore) Latest(ctx context.Context, session string) (model.Snapshot, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM checkpoints WHERE session = ? ORDER BY generation DESC LIMIT 1`,
		session).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrCheckpointNotFound, session)
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load checkpoint %s: %w", session, err)
	}
	return model.ReadSnapshot(bytes.NewReader(blob))
}

// Sessions lists session ids with at least one checkpoint, most recent first.
func (s *CheckpointStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session FROM checkpoints GROUP BY session ORDER BY MAX(created_at) DESC, session`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *CheckpointStore) Close() error {
	return s.db.Close()
}
