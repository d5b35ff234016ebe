// Package store persists the audit history: one entry per pipeline
// lifecycle event, newest first, capped at 100 entries.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// maxEntries caps the history; the oldest entries are pruned on append.
const maxEntries = 100

var historyBucket = []byte("history")

// ActionType classifies a history entry.
type ActionType string

const (
	ActionCopy   ActionType = "COPY"
	ActionCancel ActionType = "CANCEL"
	ActionDeploy ActionType = "DEPLOY"
	ActionPause  ActionType = "PAUSE"
	ActionResume ActionType = "RESUME"
	ActionConfig ActionType = "CONFIG"
	ActionSystem ActionType = "SYSTEM"
)

// Entry is one audit record. Copy entries carry the folder and file
// details; generic system events only fill the action and description.
type Entry struct {
	ID              string     `json:"id"`
	Timestamp       time.Time  `json:"timestamp"`
	ActionType      ActionType `json:"action_type"`
	Description     string     `json:"description"`
	FolderName      string     `json:"folder_name,omitempty"`
	SourcePath      string     `json:"source_path,omitempty"`
	TargetPath      string     `json:"target_path,omitempty"`
	CopiedFileCount int        `json:"copied_files_count"`
	TotalSize       int64      `json:"total_size"`
	Files           []string   `json:"files,omitempty"`
}

// History is the append-only audit log.
type History interface {
	Append(entry Entry) error
	List() ([]Entry, error)
	Clear() error
	Close() error
}

// BoltHistory is a History implementation backed by bbolt. Entries are
// keyed by an increasing sequence number so newest-first reads are a
// reverse cursor walk.
type BoltHistory struct {
	db *bbolt.DB
}

// NewBoltHistory opens (or creates) the history database at the given path.
func NewBoltHistory(path string) (*BoltHistory, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history bucket: %w", err)
	}

	return &BoltHistory{db: db}, nil
}

// Append stores an entry, filling in its id and timestamp when unset, and
// prunes the log down to the cap.
func (s *BoltHistory) Append(entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(historyBucket)

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		if err := b.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to put entry: %w", err)
		}

		// Prune oldest entries beyond the cap.
		count := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			count++
		}
		for k, _ := c.First(); k != nil && count > maxEntries; k, _ = c.First() {
			if err := b.Delete(k); err != nil {
				return err
			}
			count--
		}
		return nil
	})
}

// List returns all entries, newest first.
func (s *BoltHistory) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(historyBucket)
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear drops every entry.
func (s *BoltHistory) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(historyBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	})
}

// Close closes the underlying store.
func (s *BoltHistory) Close() error {
	return s.db.Close()
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
