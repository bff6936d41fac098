package sqlx

import (
	"context"
	"fmt"
	"time"

	"quizboard/core"

	"github.com/jmoiron/sqlx"

	// database drivers selectable via Config.Driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds SQL connection configuration.
type Config struct {
	Driver          string        `json:"driver" env:"QUIZBOARD_SQL_DRIVER"`
	DSN             string        `json:"dsn" env:"QUIZBOARD_SQL_DSN"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver string) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store implements engine.ScoreStore on a relational score_entries table,
// ranked by ORDER BY score DESC, id ASC. Like the Redis store, it connects
// lazily and reports every backend fault as core.ErrStoreUnavailable.
type Store struct {
	db *sqlx.DB
}

func New(config Config) (*Store, error) {
	db, err := sqlx.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", config.Driver, err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	return &Store{db: db}, nil
}

// NewWithDB creates a Store from an existing database handle (useful for testing)
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the score_entries table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS score_entries (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		score BIGINT NOT NULL,
		level TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return unavailable("create schema", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, core.ErrStoreUnavailable)
}

type entryRow struct {
	ID    int64     `db:"id"`
	Name  string    `db:"name"`
	Score int64     `db:"score"`
	Level string    `db:"level"`
	Date  time.Time `db:"created_at"`
}

func (s *Store) Insert(ctx context.Context, e core.Entry) error {
	q := s.db.Rebind(`INSERT INTO score_entries (id, name, score, level, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, e.ID, e.Name, e.Score, e.Level, e.Date); err != nil {
		return unavailable("insert entry", err)
	}
	return nil
}

func (s *Store) RangeDescending(ctx context.Context, start, stop int64) ([]core.Entry, error) {
	if start < 0 || stop < start {
		return []core.Entry{}, nil
	}
	q := s.db.Rebind(`SELECT id, name, score, level, created_at FROM score_entries
		ORDER BY score DESC, id ASC LIMIT ? OFFSET ?`)
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, q, stop-start+1, start); err != nil {
		return nil, unavailable("select range", err)
	}
	entries := make([]core.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, core.Entry{ID: r.ID, Name: r.Name, Score: r.Score, Level: r.Level, Date: r.Date})
	}
	return entries, nil
}

func (s *Store) Cardinality(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM score_entries`); err != nil {
		return 0, unavailable("count entries", err)
	}
	return n, nil
}

func (s *Store) EvictLowest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	// derived table keeps MySQL happy about deleting from the selected table
	q := s.db.Rebind(`DELETE FROM score_entries WHERE id IN (
		SELECT id FROM (
			SELECT id FROM score_entries ORDER BY score ASC, id DESC LIMIT ?
		) AS lowest)`)
	res, err := s.db.ExecContext(ctx, q, n)
	if err != nil {
		return 0, unavailable("evict lowest", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("evict lowest", err)
	}
	return removed, nil
}
