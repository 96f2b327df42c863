package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "KRISHA_API_BASE", "KRISHA_CITY", "KRISHA_MAX_PAGES", "MAX_RETRIES"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "https://krisha.kz", cfg.KrishaAPIBase)
	assert.Equal(t, "astana", cfg.KrishaCity)
	assert.Equal(t, 100, cfg.KrishaMaxPages)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "https://krisha.kz/prodazha/kvartiry/astana/", cfg.KrishaSearchURL())
	assert.True(t, cfg.Headless)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KRISHA_API_BASE", "http://localhost:9999/")
	t.Setenv("KRISHA_CITY", "almaty")
	t.Setenv("KRISHA_MAX_PAGES", "3")
	t.Setenv("PAGE_DELAY_MS", "0")
	t.Setenv("HEADLESS", "false")

	cfg := FromEnv()
	assert.Equal(t, "http://localhost:9999", cfg.KrishaAPIBase)
	assert.Equal(t, "http://localhost:9999/prodazha/kvartiry/almaty/", cfg.KrishaSearchURL())
	assert.Equal(t, 3, cfg.KrishaMaxPages)
	assert.Equal(t, time.Duration(0), cfg.PageDelay)
	assert.False(t, cfg.Headless)
}

func TestFromEnvIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("MAX_RETRIES", "many")
	assert.Equal(t, 5, FromEnv().MaxRetries)
}

func TestRequireDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	err := FromEnv().RequireDatabaseURL()
	assert.True(t, errors.Is(err, ErrMissingDatabaseURL))

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	assert.NoError(t, FromEnv().RequireDatabaseURL())
}
