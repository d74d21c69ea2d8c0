package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/bookshelf/pkg/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// pgUniqueViolation is the SQLSTATE postgres reports for a duplicate key.
const pgUniqueViolation = "23505"

var sleep = time.Sleep

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	data := logger.Data{"duration": time.Since(event.StartTime).String()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		qh.log.Err(event.Err).Debug(event.Query, data)
		return
	}
	qh.log.Debug(event.Query, data)
}

// New opens the configured database, waits for it to accept queries and applies
// driver specific session settings.
func New(cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pgcfg, err := pgx.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse database url")
		}
		db = bun.NewDB(stdlib.OpenDB(*pgcfg), pgdialect.New())
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseFilePath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		// A single connection serializes writers and keeps :memory: databases
		// from splitting across connections.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetConnMaxLifetime(0)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	// print out all queries in debug mode
	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	if err := waitForConnection(db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.DatabaseDriver == config.DriverPostgres {
		return db, nil
	}

	// WAL mode allows concurrent reads during writes.
	_, err := db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	_, err = db.Exec("PRAGMA busy_timeout=?", cfg.DatabaseBusyTimeout.Milliseconds())
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to set busy_timeout")
	}

	return db, nil
}

func waitForConnection(db *bun.DB, cfg *config.Config) error {
	var err error
	for i := 0; i <= cfg.DatabaseConnectRetryCount; i++ {
		_, err = db.Exec("SELECT 1")
		if err == nil {
			return nil
		}
		logger.New().Err(err).Warn("database not ready", logger.Data{"attempt": i + 1})
		if i < cfg.DatabaseConnectRetryCount {
			sleep(cfg.DatabaseConnectRetryDelay)
		}
	}
	return errors.Wrap(err, "failed to connect to database")
}

// IsUniqueViolation reports whether err came from a unique or primary key
// constraint on either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
