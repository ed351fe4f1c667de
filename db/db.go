package db

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/model"

	_ "github.com/mattn/go-sqlite3"
)

var logCtx = logging.PackageCtx("db")

var ErrReadOnly = errors.New("storage is read-only")

// Record is one journaled dispatch.
type Record struct {
	Keyboard    string
	Key         int
	Label       string
	Interaction model.InteractionType
	Code        model.KeyCode
	Mask        model.Modifier
	Timestamp   time.Time
}

// Chord is one journaled batch of simultaneous key dispatches, in pointer-down order.
type Chord struct {
	Keyboard  string
	Keys      []int
	Timestamp time.Time
}

// KeyCount is the number of dispatches of one key.
type KeyCount struct {
	Keyboard string
	Key      int
	Label    string
	Count    int
}

type SQLiteStorage struct {
	db       *sql.DB
	readOnly bool
}

func InitDBStorage(db *sql.DB) error {
	for _, sqlStmt := range []string{
		`create table if not exists dispatches(
			keyboard text, key int, label text, interaction int, code int, mask int, ts datetime);`,
		`create index if not exists dispatches_tsix on dispatches (ts ASC);`,
		`create table if not exists chords(keyboard text, keys text, ts datetime);`,
	} {
		if _, err := db.Exec(sqlStmt); err != nil {
			slog.ErrorContext(logCtx, "Could not init storage", "stmt", sqlStmt, "err", err)

			return err
		}
	}

	return nil
}

func NewStorageFromConnection(conn *sql.DB, readOnly bool) (*SQLiteStorage, error) {
	if !readOnly {
		if err := InitDBStorage(conn); err != nil {
			return nil, err
		}
	}

	return &SQLiteStorage{db: conn, readOnly: readOnly}, nil
}

// NewStorageFromPath opens a sqlite file. Read-only storages do not create tables.
func NewStorageFromPath(path string, readOnly bool) (*SQLiteStorage, error) {
	dsn := path
	if readOnly && path != ":memory:" {
		dsn = "file:" + path + "?mode=ro"
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	// every connection to :memory: is a separate database
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	storage, err := NewStorageFromConnection(conn, readOnly)
	if err != nil {
		conn.Close()

		return nil, err
	}

	return storage, nil
}

func (s *SQLiteStorage) Store(r *Record) error {
	if s.readOnly {
		return ErrReadOnly
	}

	_, err := s.db.Exec(`insert into dispatches(keyboard, key, label, interaction, code, mask, ts)
	    values(?, ?, ?, ?, ?, ?, ?)`,
		r.Keyboard, r.Key, r.Label, int(r.Interaction), int(r.Code), int(r.Mask), r.Timestamp)

	return err
}

func (s *SQLiteStorage) StoreChord(c *Chord) error {
	if s.readOnly {
		return ErrReadOnly
	}

	_, err := s.db.Exec(`insert into chords(keyboard, keys, ts) values(?, ?, ?)`,
		c.Keyboard, encodeKeys(c.Keys), c.Timestamp)

	return err
}

// GatherAll counts dispatches per key of one keyboard, ordered by key index.
func (s *SQLiteStorage) GatherAll(keyboard string) ([]KeyCount, error) {
	rows, err := s.db.Query(
		`select key, max(label), count(*) as cnt
        from dispatches
        where keyboard = ?
        group by key
        order by key`, keyboard)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	result := make([]KeyCount, 0)

	for rows.Next() {
		item := KeyCount{Keyboard: keyboard}

		if err := rows.Scan(&item.Key, &item.Label, &item.Count); err != nil {
			return nil, err
		}

		result = append(result, item)
	}

	return result, rows.Err()
}

// Keyboards lists keyboard names that have journaled dispatches.
func (s *SQLiteStorage) Keyboards() ([]string, error) {
	rows, err := s.db.Query(`select distinct keyboard from dispatches order by keyboard`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

// AllIterator yields every dispatch in time order. Scan errors end the sequence and are
// logged.
func (s *SQLiteStorage) AllIterator() (iter.Seq[Record], error) {
	rows, err := s.db.Query(
		`select keyboard, key, label, interaction, code, mask, ts
        from dispatches
        order by ts, rowid`)
	if err != nil {
		return nil, err
	}

	return func(yield func(Record) bool) {
		defer rows.Close()

		for rows.Next() {
			var (
				r                       Record
				interaction, code, mask int
			)

			if err := rows.Scan(&r.Keyboard, &r.Key, &r.Label, &interaction, &code, &mask, &r.Timestamp); err != nil {
				slog.ErrorContext(logCtx, "Could not scan dispatch", "err", err)

				return
			}

			r.Interaction = model.InteractionType(interaction)
			r.Code = model.KeyCode(code)
			r.Mask = model.Modifier(mask)

			if !yield(r) {
				return
			}
		}
	}, nil
}

// ChordIterator yields every journaled chord in time order.
func (s *SQLiteStorage) ChordIterator() (iter.Seq[Chord], error) {
	rows, err := s.db.Query(`select keyboard, keys, ts from chords order by ts, rowid`)
	if err != nil {
		return nil, err
	}

	return func(yield func(Chord) bool) {
		defer rows.Close()

		for rows.Next() {
			var (
				c    Chord
				keys string
			)

			if err := rows.Scan(&c.Keyboard, &keys, &c.Timestamp); err != nil {
				slog.ErrorContext(logCtx, "Could not scan chord", "err", err)

				return
			}

			c.Keys = decodeKeys(keys)

			if !yield(c) {
				return
			}
		}
	}, nil
}

func (s *SQLiteStorage) Close() {
	s.db.Close()
}

func encodeKeys(keys []int) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Itoa(k)
	}

	return strings.Join(parts, ",")
}

func decodeKeys(s string) []int {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	keys := make([]int, 0, len(parts))

	for _, p := range parts {
		k, err := strconv.Atoi(p)
		if err != nil {
			slog.WarnContext(logCtx, "Skipping malformed chord key", "value", p)

			continue
		}

		keys = append(keys, k)
	}

	return keys
}
