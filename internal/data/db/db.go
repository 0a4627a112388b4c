package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/akira/indexify/internal/platform/envutil"
	"github.com/akira/indexify/internal/platform/logger"
)

// Open connects to the relational store. DB_DRIVER selects the dialect:
// postgres (default) from POSTGRES_* vars, or sqlite from SQLITE_DSN.
func Open(log *logger.Logger) (*gorm.DB, error) {
	driver := strings.ToLower(envutil.String("DB_DRIVER", "postgres"))
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	}
	switch driver {
	case "postgres":
		host := envutil.String("POSTGRES_HOST", "localhost")
		port := envutil.String("POSTGRES_PORT", "5432")
		user := envutil.String("POSTGRES_USER", "postgres")
		password := envutil.String("POSTGRES_PASSWORD", "")
		name := envutil.String("POSTGRES_NAME", "indexify")
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		log.Info("Connecting to Postgres...", "host", host, "db", name)
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return db, nil
	case "sqlite":
		dsn := envutil.String("SQLITE_DSN", "file:indexify.db?cache=shared")
		log.Info("Opening sqlite database...", "dsn", dsn)
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
}
