// persistence/interface.go
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/drawserver/config"
)

// WordSource loads the drawing vocabulary from a database.
type WordSource interface {
	LoadWords(ctx context.Context) ([]string, error)
	Close() error
}

var (
	ErrNoWords       = errors.New("no words stored")
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Open builds the WordSource selected by cfg.Driver: "gorm" (GORM over PostgreSQL),
// "postgres" (database/sql with lib/pq) or "sqlite".
func Open(cfg config.DatabaseConfig) (WordSource, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case "gorm", "":
		return NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case DriverPostgres:
		return NewSQLDatabase(DriverPostgres, postgresDSN(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName))
	case DriverSQLite:
		return NewSQLDatabase(DriverSQLite, cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func postgresDSN(host string, port int, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}
