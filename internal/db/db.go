// internal/db/db.go
package db

import (
	"database/sql"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.nhat.io/otelsql"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nishadadilshan/customer-service/internal/config"
)

var (
	driversMu sync.Mutex
	drivers   = map[string]string{}
)

// instrumentedDriver registers the otelsql wrapper for name once and
// returns the wrapped driver name.
func instrumentedDriver(name string) (string, error) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if wrapped, ok := drivers[name]; ok {
		return wrapped, nil
	}

	system := "postgresql"
	if name == DialectSQLite {
		system = "sqlite"
	}

	wrapped, err := otelsql.Register(name,
		otelsql.TraceQueryWithoutArgs(),
		otelsql.WithSystem(attribute.String("db.system", system)),
	)
	if err != nil {
		return "", errors.Wrap(err, "could not register otelsql")
	}
	drivers[name] = wrapped
	return wrapped, nil
}

// Open connects to the configured database and verifies it with a ping.
// The returned handle keeps the plain driver name so sqlx picks the right
// placeholder style.
func Open(cfg config.DBConfig, log *zap.Logger) (*sqlx.DB, error) {
	driverName, err := instrumentedDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driverName, cfg.GetDSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open DB")
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "failed to ping DB")
	}

	if err := otelsql.RecordStats(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "could not record db stats")
	}

	log.Info("connected to database",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
	)

	return sqlx.NewDb(sqlDB, cfg.Driver), nil
}
