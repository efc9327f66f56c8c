package config

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

func ProvideDatabase(config *Config) (*bun.DB, error) {
	var db *bun.DB

	switch config.DbDriver {
	case DriverPostgres, "":
		pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(config.Dsn)))
		db = bun.NewDB(pgdb, pgdialect.New())
	case DriverSqlite:
		sqldb, err := sql.Open(sqliteshim.ShimName, config.Dsn)
		if err != nil {
			return nil, err
		}
		// every connection to an in-memory database sees its own database
		if strings.Contains(config.Dsn, ":memory:") || strings.Contains(config.Dsn, "mode=memory") {
			sqldb.SetMaxOpenConns(1)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.DbDriver)
	}

	if !config.IsProduction {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
		log.Info().Msg("Enabled bun debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}
