// sink.go
//
// Per-round latency persistence.  The dispatcher records one row after
// each Dispatch returns, so the sink sees exactly one writer and runs
// strictly post-barrier — no pooling, no transactions, no contention.

package metricsink

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	jobs    INTEGER NOT NULL,
	workers INTEGER NOT NULL,
	nanos   INTEGER NOT NULL
);`

// Sink appends round timings to a sqlite database.
type Sink struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open creates or opens the database at path (":memory:" works) and
// prepares the round insert.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	insert, err := db.Prepare("INSERT INTO rounds (jobs, workers, nanos) VALUES (?, ?, ?)")
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Sink{db: db, insert: insert}, nil
}

// Record appends one completed round.
func (s *Sink) Record(jobs, workers int, elapsed time.Duration) error {
	_, err := s.insert.Exec(jobs, workers, elapsed.Nanoseconds())
	return err
}

// Rounds reports how many rounds have been recorded so far.
func (s *Sink) Rounds() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM rounds").Scan(&n)
	return n, err
}

// Close releases the prepared statement and the database handle.
func (s *Sink) Close() error {
	s.insert.Close()
	return s.db.Close()
}
