// Package database opens the gorm connection backing the document store.
package database

import (
	"fmt"
	"time"

	"github.com/Egham-7/site-context/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/clickhouse"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config     models.DatabaseConfig
	driverName string
}

// New opens and pings a connection for the configured driver.
func New(config models.DatabaseConfig) (*DB, error) {
	dialector, driverName, err := dialectorFor(config)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if config.Type == models.ClickHouse {
		// the ClickHouse driver has incomplete prepared statement support
		gormCfg.PrepareStmt = false
	}

	gormDB, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", config.Type, err)
	}

	db := &DB{DB: gormDB, config: config, driverName: driverName}
	db.setConnectionPool()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", config.Type, err)
	}

	fiberlog.Infof("Database: connected using %s driver", driverName)
	return db, nil
}

func dialectorFor(config models.DatabaseConfig) (gorm.Dialector, string, error) {
	switch config.Type {
	case models.PostgreSQL:
		dsn := config.DSN
		if dsn == "" {
			sslMode := config.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				config.Host, config.Port, config.Username, config.Password, config.Database, sslMode)
		}
		return postgres.Open(dsn), "postgres", nil
	case models.MySQL:
		dsn := config.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
				config.Username, config.Password, config.Host, config.Port, config.Database)
		}
		return mysql.Open(dsn), "mysql", nil
	case models.SQLite:
		path := config.FilePath
		if path == "" {
			path = config.DSN
		}
		if path == "" {
			return nil, "", fmt.Errorf("file_path is required for SQLite")
		}
		return sqlite.Open(path), "sqlite3", nil
	case models.ClickHouse:
		dsn := config.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s",
				config.Username, config.Password, config.Host, config.Port, config.Database)
		}
		return clickhouse.New(clickhouse.Config{
			DSN:                    dsn,
			DefaultCompression:     "LZ4",
			DefaultIndexType:       "minmax",
			DefaultGranularity:     3,
			DefaultTableEngineOpts: "ENGINE=ReplacingMergeTree(modified_at) ORDER BY id",
		}), "clickhouse", nil
	default:
		return nil, "", fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Ping() error {
	if db.DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) DriverName() string {
	return db.driverName
}

const clickHouseDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	id UInt64,
	type String,
	title String,
	body String,
	status String,
	password String DEFAULT '',
	created_at DateTime64(3),
	modified_at DateTime64(3)
) ENGINE = ReplacingMergeTree(modified_at)
ORDER BY id`

// Migrate creates the documents table when it does not exist.
func (db *DB) Migrate() error {
	if db.driverName == "clickhouse" {
		// AutoMigrate cannot introspect ClickHouse tables reliably
		if err := db.Exec(clickHouseDocumentsTable).Error; err != nil {
			return fmt.Errorf("failed to create documents table: %w", err)
		}
		return nil
	}
	if err := db.AutoMigrate(&models.Document{}); err != nil {
		return fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return nil
}

func (db *DB) setConnectionPool() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}

	if db.config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(db.config.MaxOpenConns)
	}
	if db.config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(db.config.MaxIdleConns)
	}
	if db.config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(db.config.ConnMaxLifetime) * time.Second)
	}
}
