package db

import (
	"fmt"
	"time"

	"aura_oracle/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the data source name for the configured driver
func DSN(cfg *config.Config) (string, error) {
	switch cfg.DBDriver {
	case "mysql", "":
		return cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + portOr(cfg.DBPort, "3306") + ")/" + cfg.DBName + "?parseTime=true&loc=UTC", nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, portOr(cfg.DBPort, "5432"), cfg.DBUser, cfg.DBPassword, cfg.DBName), nil
	case "sqlite":
		return cfg.DBPath + "?_busy_timeout=5000", nil
	}
	return "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

// Open connects with the configured driver. Errors are translated so unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		dialector = mysql.Open(dsn)
	}
	logLevel := logger.Silent
	if cfg.DBDebug {
		logLevel = logger.Info
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		// SQLite allows a single writer
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

func portOr(p, def string) string {
	if p == "" {
		return def
	}
	return p
}
