// Package catalog keeps a persistent record of finished recording sessions.
package catalog

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a session record does not exist.
var ErrNotFound = errors.New("catalog: session not found")

const keyPrefix = "session/"

// Session status values.
const (
	StatusOK        = "ok"
	StatusIOError   = "io-error"
	StatusMuxFailed = "mux-failed"
)

// Record describes one finished session.
type Record struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	StoppedAt      time.Time `json:"stopped_at"`
	Output         string    `json:"output,omitempty"`
	Frames         int64     `json:"frames"`
	AudioChunks    int64     `json:"audio_chunks"`
	RepeatedFrames int64     `json:"repeated_frames"`
	Status         string    `json:"status"`
	ErrorCode      int       `json:"error_code,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Duration returns the wall-clock length of the session.
func (r Record) Duration() time.Duration {
	return r.StoppedAt.Sub(r.StartedAt)
}

// Options configures the store.
type Options struct {
	// Dir is the badger data directory. Required unless InMemory.
	Dir string
	// InMemory keeps everything in memory (tests).
	InMemory bool
}

// Store is a badger-backed session catalog.
type Store struct {
	db *badger.DB
}

// Open opens or creates the catalog.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("catalog: Options.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).
		WithInMemory(opts.InMemory).
		WithLogger(slogLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces a record.
func (s *Store) Put(_ context.Context, r Record) error {
	if r.ID == "" {
		return errors.New("catalog: record without id")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(r.ID), data)
	})
}

// Get returns the record with the given id.
func (s *Store) Get(_ context.Context, id string) (Record, error) {
	var r Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(val, &r)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return r, nil
}

// Delete removes a record. It returns ErrNotFound when there is none.
func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key(id))
	})
}

// List returns every record, newest first.
func (s *Store) List(_ context.Context) ([]Record, error) {
	var out []Record
	prefix := []byte(keyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var r Record
			if err := json.Unmarshal(val, &r); err != nil {
				slog.Warn("skip corrupt session record", "key", string(it.Item().Key()), "error", err)
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	slices.SortFunc(out, func(a, b Record) int {
		return cmp.Compare(b.StartedAt.UnixNano(), a.StartedAt.UnixNano())
	})
	return out, nil
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

// slogLogger routes badger output to slog, dropping debug and info noise.
type slogLogger struct{}

func (slogLogger) Errorf(f string, v ...any) {
	slog.Error("badger: " + trimNewline(fmt.Sprintf(f, v...)))
}

func (slogLogger) Warningf(f string, v ...any) {
	slog.Warn("badger: " + trimNewline(fmt.Sprintf(f, v...)))
}

func (slogLogger) Infof(string, ...any)  {}
func (slogLogger) Debugf(string, ...any) {}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}
