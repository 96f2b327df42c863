package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingDatabaseURL is returned when a component that writes to or reads
// from the relational store runs without DATABASE_URL.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set (export it or add it to .env)")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL string

	KrishaAPIBase  string
	KrishaCity     string
	KrishaMaxPages int

	TwoGISBase   string
	TwoGISCity   string
	TwoGISSearch string

	RequestTimeout  time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	PageDelay       time.Duration
	FailedPageDelay time.Duration

	ListingsCSVPath       string
	RatingsCSVPath        string
	MarkupSnapshotPath    string
	FirstPageSnapshotPath string
	FallbackCSVPath       string

	DashboardAddr string
	ChromeBin     string
	Headless      bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		KrishaAPIBase:  strings.TrimRight(getEnv("KRISHA_API_BASE", "https://krisha.kz"), "/"),
		KrishaCity:     getEnv("KRISHA_CITY", "astana"),
		KrishaMaxPages: getEnvInt("KRISHA_MAX_PAGES", 100),

		TwoGISBase:   strings.TrimRight(getEnv("TWOGIS_BASE", "https://2gis.ru"), "/"),
		TwoGISCity:   getEnv("TWOGIS_CITY", "astana"),
		TwoGISSearch: getEnv("TWOGIS_SEARCH", "ЖК"),

		RequestTimeout:  getEnvMs("REQUEST_TIMEOUT_MS", 10000),
		MaxRetries:      getEnvInt("MAX_RETRIES", 5),
		RetryBaseDelay:  getEnvMs("RETRY_BASE_DELAY_MS", 1000),
		PageDelay:       getEnvMs("PAGE_DELAY_MS", 1500),
		FailedPageDelay: getEnvMs("FAILED_PAGE_DELAY_MS", 2000),

		ListingsCSVPath:       getEnv("LISTINGS_CSV_PATH", "./output/listings.csv"),
		RatingsCSVPath:        getEnv("RATINGS_CSV_PATH", "./output/complex_ratings.csv"),
		MarkupSnapshotPath:    getEnv("MARKUP_SNAPSHOT_PATH", "./output/html-markup.txt"),
		FirstPageSnapshotPath: getEnv("FIRST_PAGE_SNAPSHOT_PATH", "./output/page1.html"),
		FallbackCSVPath:       getEnv("FALLBACK_CSV_PATH", "./data/merged_listings_with_ratings.csv"),

		DashboardAddr: getEnv("DASHBOARD_ADDR", ":8501"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		Headless:      getEnvBool("HEADLESS", true),
	}
}

// RequireDatabaseURL fails when no connection string is configured.
func (c *Config) RequireDatabaseURL() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// KrishaSearchURL is the listing search page for the configured city.
func (c *Config) KrishaSearchURL() string {
	return c.KrishaAPIBase + "/prodazha/kvartiry/" + c.KrishaCity + "/"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvMs(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
