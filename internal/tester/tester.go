package tester

import (
	"fmt"
	"os"

	"github.com/pagecraft/article/internal/cache"
	"github.com/pagecraft/article/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// test packages run in parallel, so each test binary gets its own directory
var (
	testPath = fmt.Sprintf("../../.test/%d/", os.Getpid())

	db *gorm.DB
)

func Setup() {
	RemoveDBFile()

	_ = os.Setenv("ENV", "test")

	err := os.MkdirAll(testPath+"/db", os.ModePerm)
	if err != nil {
		panic(err)
	}

	db, err = gorm.Open(sqlite.Open(testPath+"db/article.db"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}

func RemoveDBFile() {
	err := os.RemoveAll(testPath)
	if err != nil {
		panic(err)
	}
}

// Cache returns a cache with no backing redis, so tests exercise the
// degraded path without a running server.
func Cache() *cache.Redis {
	return cache.NewUnavailable("test")
}
