package store

import (
	"context"
	"errors"
	"time"

	"github.com/pagecraft/article/internal/model"
)

var (
	// ErrArticleNotFound is returned when no row matches the requested id or number.
	ErrArticleNotFound = errors.New("article not found")
)

type Store interface {
	ArticleStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type ArticleStore interface {
	// CreateArticle inserts a new article row together with its audit entries.
	CreateArticle(ctx context.Context, article *model.Article) error
	// SaveArticle persists changes to an existing row.
	SaveArticle(ctx context.Context, article *model.Article) error
	// GetArticle retrieves a row by its storage id.
	GetArticle(ctx context.Context, id uint) (*model.Article, error)
	// ListByNumber retrieves every row sharing an article number.
	ListByNumber(ctx context.Context, number int) ([]*model.Article, error)
	// ListByURL retrieves rows matching a url, case-insensitive, deleted rows excluded.
	ListByURL(ctx context.Context, url string) ([]*model.Article, error)
	// ListNonDeleted retrieves every row not in the deleted state.
	ListNonDeleted(ctx context.Context) ([]*model.Article, error)
	// ListDeleted retrieves every deleted row.
	ListDeleted(ctx context.Context) ([]*model.Article, error)
	// MaxArticleNumber returns the highest assigned article number, 0 when empty.
	MaxArticleNumber(ctx context.Context) (int, error)
	// MaxVersionNumber returns the highest version number within an article number, 0 when none.
	MaxVersionNumber(ctx context.Context, number int) (int, error)
	// CountArticles returns the number of rows in the store, deleted included.
	CountArticles(ctx context.Context) (int64, error)
	// CountGroups returns the number of distinct non-deleted article numbers.
	CountGroups(ctx context.Context) (int64, error)
	// TitleExists reports whether a non-deleted row carries the title, case-insensitive.
	// Rows of the given article number are ignored so a group can keep its own title.
	TitleExists(ctx context.Context, title string, excludeNumber int) (bool, error)
	// DeleteRedirectsByURL removes redirect rows whose url matches, case-insensitive.
	DeleteRedirectsByURL(ctx context.Context, url string) error
	// PurgeDeletedBefore physically erases deleted rows last touched before the cutoff.
	// The engine itself never calls this; it belongs to the external purge job.
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
