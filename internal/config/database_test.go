package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDatabaseConfig_ReaderFallsBackToWriter(t *testing.T) {
	t.Setenv("POSTGRES_WRITER_HOST", "db-primary")
	t.Setenv("POSTGRES_WRITER_PASSWORD", "secret")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")

	writer := loadDatabaseConfig("POSTGRES_WRITER", defaultDatabaseConfig())
	reader := loadDatabaseConfig("POSTGRES_READER", writer)

	assert.Equal(t, "db-primary", writer.Host)
	assert.Equal(t, "secret", writer.Password)
	assert.Equal(t, "tenant_notify", writer.DBName)
	assert.Equal(t, 20, writer.MaxOpenConns)
	assert.Equal(t, time.Hour, writer.ConnMaxLifetime)
	assert.Equal(t, writer, reader)
}

func TestLoadDatabaseConfig_SeparateReader(t *testing.T) {
	t.Setenv("POSTGRES_WRITER_HOST", "db-primary")
	t.Setenv("POSTGRES_READER_HOST", "db-replica")

	writer := loadDatabaseConfig("POSTGRES_WRITER", defaultDatabaseConfig())
	reader := loadDatabaseConfig("POSTGRES_READER", writer)

	assert.NotEqual(t, writer, reader)
	assert.Equal(t, "db-replica", reader.Host)
	assert.Equal(t, writer.DBName, reader.DBName)
	assert.Equal(t, writer.MaxOpenConns, reader.MaxOpenConns)
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}

	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", cfg.dsn())
}
