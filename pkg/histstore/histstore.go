// Package histstore is a sqlite-backed store for day records, for hosts
// that keep history locally instead of fetching bundles. The engine never
// touches it; persistence stays on the caller's side of the boundary.
package histstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mealwise/insight/pkg/record"
)

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed bootstraps) a store at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return s, nil
}

// Close releases the handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS days (
        date TEXT PRIMARY KEY,
        payload TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS products (
        id TEXT PRIMARY KEY,
        payload TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_days_date ON days(date);
    `
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveDay upserts one day record keyed by its date.
func (s *Store) SaveDay(day record.DailyRecord) error {
	if day.Date == "" {
		return fmt.Errorf("saving day: empty date")
	}
	payload, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("encoding day %s: %w", day.Date, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO days (date, payload) VALUES (?, ?)
         ON CONFLICT(date) DO UPDATE SET payload = excluded.payload`,
		day.Date, string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving day %s: %w", day.Date, err)
	}
	return nil
}

// Day loads one day by date. The bool reports presence.
func (s *Store) Day(date string) (record.DailyRecord, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM days WHERE date = ?`, date).Scan(&payload)
	if err == sql.ErrNoRows {
		return record.DailyRecord{}, false, nil
	}
	if err != nil {
		return record.DailyRecord{}, false, fmt.Errorf("loading day %s: %w", date, err)
	}
	var day record.DailyRecord
	if err := json.Unmarshal([]byte(payload), &day); err != nil {
		return record.DailyRecord{}, false, fmt.Errorf("decoding day %s: %w", date, err)
	}
	return day, true, nil
}

// History returns every stored day in date order.
func (s *Store) History() ([]record.DailyRecord, error) {
	rows, err := s.db.Query(`SELECT payload FROM days ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var history []record.DailyRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning day: %w", err)
		}
		var day record.DailyRecord
		if err := json.Unmarshal([]byte(payload), &day); err != nil {
			return nil, fmt.Errorf("decoding day: %w", err)
		}
		history = append(history, day)
	}
	return history, rows.Err()
}

// SaveProduct upserts one product definition.
func (s *Store) SaveProduct(id string, p record.Product) error {
	if id == "" {
		return fmt.Errorf("saving product: empty id")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding product %s: %w", id, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO products (id, payload) VALUES (?, ?)
         ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		id, string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving product %s: %w", id, err)
	}
	return nil
}

// Products loads the full product index.
func (s *Store) Products() (record.ProductIndex, error) {
	rows, err := s.db.Query(`SELECT id, payload FROM products`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	index := make(record.ProductIndex)
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		var p record.Product
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("decoding product %s: %w", id, err)
		}
		index[id] = p
	}
	return index, rows.Err()
}
