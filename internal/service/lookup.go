package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/pagecraft/article/internal/cache"
	"github.com/pagecraft/article/internal/config"
	"github.com/pagecraft/article/internal/model"
	"github.com/sirupsen/logrus"
)

// menuTTL is fixed; content lookups use the configured cache duration.
const menuTTL = 150 * time.Second

const (
	categoryArticle = "article"
	categoryMenu    = "menu"
	categoryLayout  = "layout"
)

// Lookup resolves a path to the article version visible under the given
// flags. publishedOnly selects the currently live version (highest version
// number among past-published rows, re-evaluated against the clock on every
// call); otherwise the most recently inserted row wins regardless of publish
// state. Deleted rows are never returned. A miss returns ErrNotFound.
func (s *ArticleService) Lookup(ctx context.Context, path, lang string, publishedOnly, activeOnly bool) (*ArticleView, error) {
	normalized := NormalizePath(path)
	if lang == "" {
		lang = s.lang
	}

	// only the public read path is cached; editor variants always hit the store
	useCache := s.mode == config.ModePublish && publishedOnly && activeOnly
	key := s.cache.Key(lang, categoryArticle, normalized)

	if useCache {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var view ArticleView
			if err := json.Unmarshal(data, &view); err == nil {
				return &view, nil
			}
			logrus.Warnf("discarding corrupt cache entry %s", key)
		} else if !errors.Is(err, cache.ErrMiss) {
			logrus.Errorf("cache read for %s: %v", key, err)
		}
	}

	row, err := s.resolve(ctx, normalized, publishedOnly, activeOnly)
	if err != nil {
		return nil, err
	}

	view := s.materializeView(ctx, row, lang, key)

	if useCache {
		if data, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				logrus.Errorf("cache write for %s: %v", key, err)
			}
		}
	}

	return view, nil
}

func (s *ArticleService) resolve(ctx context.Context, url string, publishedOnly, activeOnly bool) (*model.Article, error) {
	rows, err := s.store.ListByURL(ctx, url)
	if err != nil {
		return nil, err
	}

	allowed := map[model.Status]bool{
		model.StatusActive:   true,
		model.StatusRedirect: true,
	}
	if !activeOnly {
		allowed[model.StatusInactive] = true
	}

	now := time.Now().UTC()
	var pick *model.Article
	for _, row := range rows {
		if !allowed[row.Status] {
			continue
		}

		if publishedOnly {
			if !row.IsLive(now) {
				continue
			}
			// live rule: highest version wins, insertion order breaks ties
			if pick == nil || row.VersionNumber > pick.VersionNumber ||
				(row.VersionNumber == pick.VersionNumber && row.ID > pick.ID) {
				pick = row
			}
			continue
		}

		// latest rule: most recently inserted wins, not highest version
		if pick == nil || row.ID > pick.ID {
			pick = row
		}
	}

	if pick == nil {
		return nil, ErrNotFound
	}
	return pick, nil
}

// Menu builds the site menu from the currently live pages, home page first.
func (s *ArticleService) Menu(ctx context.Context, lang string) ([]MenuItem, error) {
	if lang == "" {
		lang = s.lang
	}
	key := s.cache.Key(lang, categoryMenu, "all")

	if s.mode == config.ModePublish {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var items []MenuItem
			if err := json.Unmarshal(data, &items); err == nil {
				return items, nil
			}
			logrus.Warnf("discarding corrupt cache entry %s", key)
		} else if !errors.Is(err, cache.ErrMiss) {
			logrus.Errorf("cache read for %s: %v", key, err)
		}
	}

	rows, err := s.store.ListNonDeleted(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	live := make(map[int]*model.Article)
	for _, row := range rows {
		if row.Status != model.StatusActive || !row.IsLive(now) {
			continue
		}
		cur := live[row.ArticleNumber]
		if cur == nil || row.VersionNumber > cur.VersionNumber ||
			(row.VersionNumber == cur.VersionNumber && row.ID > cur.ID) {
			live[row.ArticleNumber] = row
		}
	}

	items := make([]MenuItem, 0, len(live))
	for _, row := range live {
		items = append(items, MenuItem{Title: row.Title, URL: row.URL})
	}
	sortMenu(items)

	if s.mode == config.ModePublish {
		if data, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, key, data, menuTTL); err != nil {
				logrus.Errorf("cache write for %s: %v", key, err)
			}
		}
	}

	return items, nil
}

// DefaultLayout resolves the default page layout through the layout provider,
// cached in publish mode.
func (s *ArticleService) DefaultLayout(ctx context.Context) (string, error) {
	key := s.cache.Key(s.lang, categoryLayout, "default")

	if s.mode == config.ModePublish {
		if data, err := s.cache.Get(ctx, key); err == nil {
			return string(data), nil
		} else if !errors.Is(err, cache.ErrMiss) {
			logrus.Errorf("cache read for %s: %v", key, err)
		}
	}

	layout, err := s.layouts.GetDefaultLayout(ctx)
	if err != nil {
		return "", err
	}

	if s.mode == config.ModePublish {
		if err := s.cache.Set(ctx, key, []byte(layout), s.ttl); err != nil {
			logrus.Errorf("cache write for %s: %v", key, err)
		}
	}

	return layout, nil
}

// Invalidate removes every cache key whose string form contains pathFilter,
// case-insensitive; an empty filter removes everything under the namespace.
// An unreachable cache is reported, not an error.
func (s *ArticleService) Invalidate(ctx context.Context, pathFilter string) (*InvalidateResult, error) {
	keys, err := s.cache.Keys(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logrus.Warnf("cache unreachable during invalidation: %v", err)
		}
		return &InvalidateResult{CacheConnected: false}, nil
	}

	filter := strings.ToLower(pathFilter)
	removed := make([]string, 0, len(keys))
	for _, key := range keys {
		if filter == "" || strings.Contains(strings.ToLower(key), filter) {
			removed = append(removed, key)
		}
	}

	if err := s.cache.Remove(ctx, removed...); err != nil {
		logrus.Warnf("cache remove failed during invalidation: %v", err)
		return &InvalidateResult{CacheConnected: false}, nil
	}

	return &InvalidateResult{RemovedKeys: removed, CacheConnected: true}, nil
}

// invalidateAfterWrite flushes the whole namespace. Invalidation is coarse and
// recomputation is lazy; the next read repopulates.
func (s *ArticleService) invalidateAfterWrite(ctx context.Context) {
	res, err := s.Invalidate(ctx, "")
	if err != nil {
		logrus.Errorf("cache invalidation failed: %v", err)
		return
	}
	if res.CacheConnected {
		logrus.Debugf("cache flushed, %d keys removed", len(res.RemovedKeys))
	}
}
