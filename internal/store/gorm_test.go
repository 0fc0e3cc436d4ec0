package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pagecraft/article/internal/model"
	"github.com/pagecraft/article/internal/tester"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	tester.Setup()
	code := m.Run()

	os.Exit(code)
}

func seedRow(t *testing.T, st *GormStore, row *model.Article) *model.Article {
	t.Helper()
	row.Updated = time.Now().UTC()
	assert.NoError(t, st.CreateArticle(context.TODO(), row))
	return row
}

func TestGormStore_ListByURL(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := NewGormStore(tester.TestDB())

	seedRow(t, st, &model.Article{ArticleNumber: 1, VersionNumber: 1, Title: "Mixed Case", URL: "Mixed-Case", Status: model.StatusActive})
	seedRow(t, st, &model.Article{ArticleNumber: 1, VersionNumber: 2, Title: "Mixed Case", URL: "mixed-case", Status: model.StatusDeleted})

	rows, err := st.ListByURL(context.TODO(), "MIXED-CASE")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].VersionNumber)
}

func TestGormStore_TitleExists(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	seedRow(t, st, &model.Article{ArticleNumber: 1, VersionNumber: 1, Title: "Guide", URL: "guide", Status: model.StatusActive})
	seedRow(t, st, &model.Article{ArticleNumber: 2, VersionNumber: 1, Title: "Trashed", URL: "trashed", Status: model.StatusDeleted})
	seedRow(t, st, &model.Article{Title: model.RedirectTitle, URL: "old-guide", Body: "guide", Status: model.StatusRedirect})

	exists, err := st.TitleExists(ctx, "GUIDE", 0)
	assert.NoError(t, err)
	assert.True(t, exists)

	// a group never conflicts with its own title
	exists, err = st.TitleExists(ctx, "Guide", 1)
	assert.NoError(t, err)
	assert.False(t, exists)

	// deleted groups and redirect markers do not reserve titles
	exists, err = st.TitleExists(ctx, "Trashed", 0)
	assert.NoError(t, err)
	assert.False(t, exists)

	exists, err = st.TitleExists(ctx, model.RedirectTitle, 0)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestGormStore_MaxNumbers(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	max, err := st.MaxArticleNumber(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, max)

	seedRow(t, st, &model.Article{ArticleNumber: 3, VersionNumber: 1, Title: "A", URL: "a", Status: model.StatusActive})
	seedRow(t, st, &model.Article{ArticleNumber: 3, VersionNumber: 4, Title: "A", URL: "a", Status: model.StatusActive})
	seedRow(t, st, &model.Article{ArticleNumber: 5, VersionNumber: 1, Title: "B", URL: "b", Status: model.StatusActive})

	max, err = st.MaxArticleNumber(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 5, max)

	max, err = st.MaxVersionNumber(ctx, 3)
	assert.NoError(t, err)
	assert.Equal(t, 4, max)

	max, err = st.MaxVersionNumber(ctx, 99)
	assert.NoError(t, err)
	assert.Equal(t, 0, max)
}

func TestGormStore_CountGroups(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	seedRow(t, st, &model.Article{ArticleNumber: 1, VersionNumber: 1, Title: "A", URL: "a", Status: model.StatusActive})
	seedRow(t, st, &model.Article{ArticleNumber: 1, VersionNumber: 2, Title: "A", URL: "a", Status: model.StatusActive})
	seedRow(t, st, &model.Article{ArticleNumber: 2, VersionNumber: 1, Title: "B", URL: "b", Status: model.StatusDeleted})
	seedRow(t, st, &model.Article{Title: model.RedirectTitle, URL: "old", Body: "a", Status: model.StatusRedirect})

	count, err := st.CountGroups(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormStore_DeleteRedirectsByURL(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	seedRow(t, st, &model.Article{Title: model.RedirectTitle, URL: "old-path", Body: "new-path", Status: model.StatusRedirect})
	seedRow(t, st, &model.Article{ArticleNumber: 1, VersionNumber: 1, Title: "Keep", URL: "old-path", Status: model.StatusActive})

	assert.NoError(t, st.DeleteRedirectsByURL(ctx, "OLD-PATH"))

	rows, err := st.ListByURL(ctx, "old-path")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, model.StatusActive, rows[0].Status)
}

func TestGormStore_PurgeDeletedBefore(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	st := NewGormStore(tester.TestDB())
	ctx := context.TODO()

	old := &model.Article{ArticleNumber: 1, VersionNumber: 1, Title: "Old", URL: "old", Status: model.StatusDeleted}
	old.Log("Status changed to deleted", "alice")
	old.Updated = time.Now().UTC().Add(-48 * time.Hour)
	assert.NoError(t, st.CreateArticle(ctx, old))

	fresh := seedRow(t, st, &model.Article{ArticleNumber: 2, VersionNumber: 1, Title: "Fresh", URL: "fresh", Status: model.StatusDeleted})

	purged, err := st.PurgeDeletedBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = st.GetArticle(ctx, old.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound)

	kept, err := st.GetArticle(ctx, fresh.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Fresh", kept.Title)

	var logs int64
	assert.NoError(t, tester.TestDB().Model(&model.ActivityLog{}).Where("article_id = ?", old.ID).Count(&logs).Error)
	assert.Equal(t, int64(0), logs)
}
