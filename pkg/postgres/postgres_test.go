package postgres

import (
	"testing"

	"options-dashboard/config"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := config.Database{Host: "db", Port: 5432, User: "dash", Password: "secret", DBName: "options", SSLMode: "disable"}
	assert.Equal(t, "host=db user=dash password=secret dbname=options port=5432 sslmode=disable", DSN(cfg))

	cfg.TimeZone = "UTC"
	assert.Equal(t, "host=db user=dash password=secret dbname=options port=5432 sslmode=disable TimeZone=UTC", DSN(cfg))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLogLevel("Silent"))
	assert.Equal(t, gormlogger.Info, gormLogLevel("Info"))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(""))
}
