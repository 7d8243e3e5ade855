// persistence/sql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SQLDatabase reads the vocabulary with plain database/sql.
type SQLDatabase struct {
	db     *sql.DB
	driver string
}

func NewSQLDatabase(driver, dsn string) (*SQLDatabase, error) {
	if driver == DriverSQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := initTables(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLDatabase{db: db, driver: driver}, nil
}

func initTables(ctx context.Context, db *sql.DB, driver string) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		idColumn = "id SERIAL PRIMARY KEY"
	}
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS words (
            `+idColumn+`,
            text VARCHAR(100) NOT NULL UNIQUE,
            category VARCHAR(50) NOT NULL DEFAULT 'general',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return fmt.Errorf("create words table: %w", err)
	}
	return nil
}

// LoadWords returns every stored word ordered by id.
func (p *SQLDatabase) LoadWords(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT text FROM words ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

func (p *SQLDatabase) Close() error {
	return p.db.Close()
}
