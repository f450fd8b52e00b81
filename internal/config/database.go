package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// loadDatabaseConfig reads <prefix>_HOST, <prefix>_PORT and so on. Unset
// values fall back to base, so a reader that is not configured separately
// is identical to the writer.
func loadDatabaseConfig(prefix string, base DatabaseConfig) DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnvWithDefault(prefix+"_HOST", base.Host),
		Port:            getEnvWithDefault(prefix+"_PORT", base.Port),
		User:            getEnvWithDefault(prefix+"_USER", base.User),
		Password:        getEnvWithDefault(prefix+"_PASSWORD", base.Password),
		DBName:          getEnvWithDefault(prefix+"_DB_NAME", base.DBName),
		SSLMode:         getEnvWithDefault(prefix+"_SSL_MODE", base.SSLMode),
		MaxOpenConns:    base.MaxOpenConns,
		MaxIdleConns:    base.MaxIdleConns,
		ConnMaxLifetime: base.ConnMaxLifetime,
	}
}

func defaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            "localhost",
		Port:            "5432",
		User:            "postgres",
		DBName:          "tenant_notify",
		SSLMode:         "disable",
		MaxOpenConns:    getEnvIntWithDefault("DB_MAX_OPEN_CONNS", 50),
		MaxIdleConns:    getEnvIntWithDefault("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: getEnvDurationWithDefault("DB_CONN_MAX_LIFETIME", time.Hour),
	}
}

func (c DatabaseConfig) dsn() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c DatabaseConfig) open() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.dsn()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s@%s: %w", c.DBName, c.Host, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	return db, nil
}

func gormLogLevel() logger.LogLevel {
	switch getEnvWithDefault("DB_LOG_LEVEL", "warn") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// DatabaseConnections holds the writer and reader pools. Reader is the
// writer pool itself unless POSTGRES_READER_* points somewhere else.
type DatabaseConnections struct {
	Writer *gorm.DB
	Reader *gorm.DB
}

// NewDatabaseConnections opens the tenant-scoped pools. Every statement on
// a tenant-tagged model is scoped to the tenant in its context.
func NewDatabaseConnections(policy tenancy.MismatchPolicy) (*DatabaseConnections, error) {
	writerConfig := loadDatabaseConfig("POSTGRES_WRITER", defaultDatabaseConfig())
	readerConfig := loadDatabaseConfig("POSTGRES_READER", writerConfig)

	writer, err := writerConfig.open()
	if err != nil {
		return nil, err
	}
	conns := &DatabaseConnections{Writer: writer, Reader: writer}
	if readerConfig != writerConfig {
		if conns.Reader, err = readerConfig.open(); err != nil {
			_ = conns.Close()
			return nil, err
		}
	}

	for _, db := range conns.pools() {
		if err := db.Use(tenancy.NewPlugin(policy)); err != nil {
			_ = conns.Close()
			return nil, fmt.Errorf("failed to install tenancy plugin: %w", err)
		}
	}
	return conns, nil
}

// NewAdminDatabase opens an unscoped writer connection for administrative
// processes (migrations, seeding). It must never be handed to request code.
func NewAdminDatabase() (*gorm.DB, error) {
	return loadDatabaseConfig("POSTGRES_WRITER", defaultDatabaseConfig()).open()
}

func (dc *DatabaseConnections) pools() []*gorm.DB {
	if dc.Reader == nil || dc.Reader == dc.Writer {
		return []*gorm.DB{dc.Writer}
	}
	return []*gorm.DB{dc.Writer, dc.Reader}
}

func (dc *DatabaseConnections) Close() error {
	var errs error
	for _, db := range dc.pools() {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			errs = multierr.Append(errs, sqlDB.Close())
		}
	}
	return errs
}
