package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Mode selects how the engine treats the cache.
type Mode string

const (
	// ModeAuthoring bypasses the cache so editors always read the store.
	ModeAuthoring Mode = "authoring"
	// ModePublish serves reads through the cache.
	ModePublish Mode = "publish"
)

type Config struct {
	DBType string // "postgres" or "sqlite"
	DBDSN  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Mode           Mode
	CacheNamespace string
	CacheTTL       time.Duration
	CacheCodec     string
	DefaultLang    string
}

// LoadConfig reads the configuration from the environment. A .env file is
// honored via godotenv autoload.
func LoadConfig() *Config {
	cfg := &Config{
		DBType:         getenv("DB_TYPE", "sqlite"),
		DBDSN:          getenv("DB_DSN", ".data/article.db"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		Mode:           Mode(getenv("ARTICLE_MODE", string(ModePublish))),
		CacheNamespace: getenv("CACHE_NAMESPACE", "article"),
		CacheCodec:     getenv("CACHE_CODEC", "gzip"),
		DefaultLang:    getenv("DEFAULT_LANG", "en"),
	}

	if db, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.RedisDB = db
	}

	cfg.CacheTTL = 10 * time.Minute
	if secs, err := strconv.Atoi(os.Getenv("CACHE_TTL_SECONDS")); err == nil && secs > 0 {
		cfg.CacheTTL = time.Duration(secs) * time.Second
	}

	return cfg
}

// GetDb opens the configured database.
func GetDb(cfg *Config) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.DBType {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	default:
		db, err = gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	}
	if err != nil {
		logrus.Fatalf("failed to connect to %s database: %v", cfg.DBType, err)
	}

	return db
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
