// Package store persists automerge snapshots of shared documents in sqlite.
// Each document row points at its latest snapshot; older snapshots are kept
// for inspection.
package store

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/automerge/automerge-go"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a document id has no stored snapshot.
var ErrNotFound = errors.New("no snapshot for that document")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init() error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS documents (
		id text not null primary key,
		snapshot_id text
		)`,
	); err != nil {
		return fmt.Errorf("failed to ensure documents table: %w", err)
	}
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS snapshots (
		id text not null primary key,
		document_id text not null,
		content text not null
		)`,
	); err != nil {
		return fmt.Errorf("failed to ensure snapshots table: %w", err)
	}
	return nil
}

// Latest loads the newest snapshot of the given document.
func (s *Store) Latest(id string) (*automerge.Doc, error) {
	var rawContent string
	if err := s.db.QueryRow(
		`SELECT content FROM snapshots sn INNER JOIN documents d ON sn.id = d.snapshot_id WHERE d.id = ?`,
		id,
	).Scan(&rawContent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(rawContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	doc, err := automerge.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return doc, nil
}

// Put saves a new snapshot of the document and repoints the document row at
// it, all within one database transaction.
func (s *Store) Put(id string, doc *automerge.Doc) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback", "err", err)
		}
	}()

	snapshotID := fmt.Sprintf("%d", time.Now().UnixNano())
	content := base64.StdEncoding.EncodeToString(doc.Save())

	if _, err := tx.Exec(
		`INSERT INTO snapshots(id, document_id, content) VALUES (?, ?, ?)`,
		snapshotID, id, content,
	); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO documents(id, snapshot_id) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET snapshot_id = excluded.snapshot_id`,
		id, snapshotID,
	); err != nil {
		return fmt.Errorf("failed to update document head: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// List returns every stored document id.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
