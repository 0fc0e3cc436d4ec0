package cmd

import (
	"github.com/pagecraft/article/internal/cache"
	"github.com/pagecraft/article/internal/compress"
	"github.com/pagecraft/article/internal/config"
	"github.com/pagecraft/article/internal/service"
	"github.com/pagecraft/article/internal/store"
)

// newEngine wires the article engine from the environment configuration. The
// CLI trusts its caller, so any non-empty actor id is accepted.
func newEngine() (*service.ArticleService, store.Store) {
	cfg := config.LoadConfig()
	db := config.GetDb(cfg)
	st := store.NewGormStore(db)

	var c *cache.Redis
	if cfg.RedisAddr != "" {
		c = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheNamespace, compress.FromName(cfg.CacheCodec))
	} else {
		c = cache.NewUnavailable(cfg.CacheNamespace)
	}

	svc := service.NewArticleService(cfg, st, c,
		service.OpenUserDirectory{},
		service.NopTranslator{},
		service.StaticLayoutProvider{},
	)

	return svc, st
}

func checkMissingFlags(flags map[string]string) []string {
	var missing []string
	for name, value := range flags {
		if value == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
