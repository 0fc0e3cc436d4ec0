package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pagecraft/article/internal/model"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateArticle(ctx context.Context, article *model.Article) error {
	return g.db.WithContext(ctx).Create(article).Error
}

func (g *GormStore) SaveArticle(ctx context.Context, article *model.Article) error {
	return g.db.WithContext(ctx).Save(article).Error
}

func (g *GormStore) GetArticle(ctx context.Context, id uint) (*model.Article, error) {
	var article model.Article
	err := g.db.WithContext(ctx).Preload("Logs").Where("id = ?", id).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (g *GormStore) ListByNumber(ctx context.Context, number int) ([]*model.Article, error) {
	var articles []*model.Article
	err := g.db.WithContext(ctx).Preload("Logs").
		Where("article_number = ?", number).
		Order("id asc").
		Find(&articles).Error
	return articles, err
}

func (g *GormStore) ListByURL(ctx context.Context, url string) ([]*model.Article, error) {
	var articles []*model.Article
	err := g.db.WithContext(ctx).
		Where("LOWER(url) = ? AND status <> ?", strings.ToLower(url), model.StatusDeleted).
		Order("id asc").
		Find(&articles).Error
	return articles, err
}

func (g *GormStore) ListNonDeleted(ctx context.Context) ([]*model.Article, error) {
	var articles []*model.Article
	err := g.db.WithContext(ctx).
		Where("status <> ?", model.StatusDeleted).
		Order("id asc").
		Find(&articles).Error
	return articles, err
}

func (g *GormStore) ListDeleted(ctx context.Context) ([]*model.Article, error) {
	var articles []*model.Article
	err := g.db.WithContext(ctx).
		Where("status = ?", model.StatusDeleted).
		Order("id asc").
		Find(&articles).Error
	return articles, err
}

func (g *GormStore) MaxArticleNumber(ctx context.Context) (int, error) {
	var max int
	err := g.db.WithContext(ctx).Model(&model.Article{}).
		Select("COALESCE(MAX(article_number), 0)").
		Scan(&max).Error
	return max, err
}

func (g *GormStore) MaxVersionNumber(ctx context.Context, number int) (int, error) {
	var max int
	err := g.db.WithContext(ctx).Model(&model.Article{}).
		Where("article_number = ?", number).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error
	return max, err
}

func (g *GormStore) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Article{}).Count(&count).Error
	return count, err
}

func (g *GormStore) CountGroups(ctx context.Context) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Article{}).
		Where("status <> ? AND article_number > 0", model.StatusDeleted).
		Distinct("article_number").
		Count(&count).Error
	return count, err
}

func (g *GormStore) TitleExists(ctx context.Context, title string, excludeNumber int) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Article{}).
		Where("LOWER(title) = ? AND status NOT IN (?, ?) AND article_number <> ?",
			strings.ToLower(title), model.StatusDeleted, model.StatusRedirect, excludeNumber).
		Count(&count).Error
	return count > 0, err
}

func (g *GormStore) DeleteRedirectsByURL(ctx context.Context, url string) error {
	return g.db.WithContext(ctx).
		Where("LOWER(url) = ? AND status = ?", strings.ToLower(url), model.StatusRedirect).
		Delete(&model.Article{}).Error
}

func (g *GormStore) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var ids []uint
	err := g.db.WithContext(ctx).Model(&model.Article{}).
		Where("status = ? AND updated < ?", model.StatusDeleted, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := g.db.WithContext(ctx).Where("article_id IN (?)", ids).Delete(&model.ActivityLog{}).Error; err != nil {
		return 0, err
	}

	res := g.db.WithContext(ctx).Where("id IN (?)", ids).Delete(&model.Article{})
	return res.RowsAffected, res.Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
