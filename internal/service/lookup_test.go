package service

import (
	"context"
	"testing"
	"time"

	"github.com/pagecraft/article/internal/model"
	"github.com/pagecraft/article/internal/store"
	"github.com/pagecraft/article/internal/tester"
	"github.com/stretchr/testify/assert"
)

func TestArticleService_LookupNormalization(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	seedRoot(t, svc)
	seedArticle(t, svc, "About Us", past(time.Second))

	// leading slash, casing and whitespace all resolve to the same page
	for _, path := range []string{"about-us", "/about-us", "  /About-Us  "} {
		view, err := svc.Lookup(context.TODO(), path, "", true, true)
		assert.NoError(t, err)
		assert.Equal(t, "About Us", view.Title)
	}

	// the empty path is the home page
	view, err := svc.Lookup(context.TODO(), "", "", true, true)
	assert.NoError(t, err)
	assert.Equal(t, model.RootURL, view.URL)
}

func TestArticleService_LookupNotFound(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	seedRoot(t, svc)

	_, err := svc.Lookup(context.TODO(), "no-such-page", "", true, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleService_LookupPublishedOnly(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	seedRoot(t, svc)
	seedArticle(t, svc, "Draft Page", nil)

	_, err := svc.Lookup(context.TODO(), "draft-page", "", true, true)
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := svc.Lookup(context.TODO(), "draft-page", "", false, true)
	assert.NoError(t, err)
	assert.Nil(t, view.Published)
}

func TestArticleService_LookupScheduledPublish(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	seedRoot(t, svc)
	seedArticle(t, svc, "Launch", future(300*time.Millisecond))

	// not live yet
	_, err := svc.Lookup(context.TODO(), "launch", "", true, true)
	assert.ErrorIs(t, err, ErrNotFound)

	// becomes visible once the clock passes the publish time, with no write
	time.Sleep(400 * time.Millisecond)
	view, err := svc.Lookup(context.TODO(), "launch", "", true, true)
	assert.NoError(t, err)
	assert.Equal(t, "Launch", view.Title)
}

func TestArticleService_ScheduledVersionTakesOver(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	seedRoot(t, svc)
	v1 := seedArticle(t, svc, "Story", past(time.Second))

	v2, err := svc.Save(context.TODO(), &model.Article{
		ID:            v1.ID,
		ArticleNumber: v1.ArticleNumber,
		VersionNumber: 0,
		Title:         "Story",
		Body:          "second draft",
	}, "alice", "")
	assert.NoError(t, err)
	assert.Nil(t, v2.Published)

	_, err = svc.Save(context.TODO(), &model.Article{
		ID:            v2.ID,
		ArticleNumber: v2.ArticleNumber,
		VersionNumber: v2.VersionNumber,
		Title:         "Story",
		Body:          "second draft",
		Published:     future(300 * time.Millisecond),
	}, "alice", "")
	assert.NoError(t, err)

	// until the scheduled time the old version stays live
	view, err := svc.Lookup(context.TODO(), "story", "", true, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, view.VersionNumber)

	// then the new one takes over without any write in between
	time.Sleep(400 * time.Millisecond)
	view, err = svc.Lookup(context.TODO(), "story", "", true, true)
	assert.NoError(t, err)
	assert.Equal(t, 2, view.VersionNumber)
}

func TestArticleService_SaveLookupRoundTrip(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	seedRoot(t, svc)

	draft, err := svc.Create(context.TODO(), "Round Trip", "")
	assert.NoError(t, err)
	draft.Body = "<p>the body</p>"
	draft.HeaderScript = "<script>h()</script>"
	draft.FooterScript = "<script>f()</script>"

	_, err = svc.Save(context.TODO(), draft, "alice", "")
	assert.NoError(t, err)

	view, err := svc.Lookup(context.TODO(), "round-trip", "", false, false)
	assert.NoError(t, err)
	assert.Equal(t, "Round Trip", view.Title)
	assert.Equal(t, "<p>the body</p>", view.Body)
	assert.Equal(t, "<script>h()</script>", view.HeaderScript)
	assert.Equal(t, "<script>f()</script>", view.FooterScript)
}

func TestArticleService_LookupSelection(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	st := store.NewGormStore(tester.TestDB())

	// insert version 2 before version 1 so version order and insertion order
	// disagree, then a later unpublished version 3
	rows := []*model.Article{
		{ArticleNumber: 7, VersionNumber: 2, Title: "Notes", URL: "notes", Status: model.StatusActive, Published: past(time.Hour)},
		{ArticleNumber: 7, VersionNumber: 1, Title: "Notes", URL: "notes", Status: model.StatusActive, Published: past(2 * time.Hour)},
		{ArticleNumber: 7, VersionNumber: 3, Title: "Notes", URL: "notes", Status: model.StatusActive},
	}
	for _, row := range rows {
		row.Updated = time.Now().UTC()
		assert.NoError(t, st.CreateArticle(context.TODO(), row))
	}

	// live reads pick the highest published version, not the newest row
	live, err := svc.Lookup(context.TODO(), "notes", "", true, true)
	assert.NoError(t, err)
	assert.Equal(t, 2, live.VersionNumber)

	// editor reads pick the most recently inserted row, published or not
	latest, err := svc.Lookup(context.TODO(), "notes", "", false, true)
	assert.NoError(t, err)
	assert.Equal(t, 3, latest.VersionNumber)
}

func TestArticleService_LookupStatusFlags(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	st := store.NewGormStore(tester.TestDB())

	now := time.Now().UTC()
	assert.NoError(t, st.CreateArticle(context.TODO(), &model.Article{
		ArticleNumber: 5, VersionNumber: 1, Title: "Hidden", URL: "hidden",
		Status: model.StatusInactive, Published: past(time.Hour), Updated: now,
	}))
	assert.NoError(t, st.CreateArticle(context.TODO(), &model.Article{
		ArticleNumber: 6, VersionNumber: 1, Title: "Gone", URL: "gone",
		Status: model.StatusDeleted, Published: past(time.Hour), Updated: now,
	}))

	// inactive pages only show up when the caller asks for them
	_, err := svc.Lookup(context.TODO(), "hidden", "", true, true)
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := svc.Lookup(context.TODO(), "hidden", "", true, false)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusInactive, view.Status)

	// deleted rows are unreachable under every flag combination
	for _, publishedOnly := range []bool{true, false} {
		for _, activeOnly := range []bool{true, false} {
			_, err := svc.Lookup(context.TODO(), "gone", "", publishedOnly, activeOnly)
			assert.ErrorIs(t, err, ErrNotFound)
		}
	}
}

func TestArticleService_LookupFollowsRedirect(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	seedRoot(t, svc)
	v1 := seedArticle(t, svc, "Old Name", past(time.Second))

	_, err := svc.Save(context.TODO(), &model.Article{
		ID:            v1.ID,
		ArticleNumber: v1.ArticleNumber,
		VersionNumber: v1.VersionNumber,
		Title:         "New Name",
		Published:     v1.Published,
	}, "alice", "")
	assert.NoError(t, err)

	// the old path resolves to the redirect marker carrying the new path
	view, err := svc.Lookup(context.TODO(), "old-name", "", true, true)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusRedirect, view.Status)
	assert.Equal(t, "new-name", view.Body)
}

func TestArticleService_Menu(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()
	seedRoot(t, svc)
	seedArticle(t, svc, "Zebra", past(time.Second))
	seedArticle(t, svc, "Apple", past(time.Second))
	seedArticle(t, svc, "Draft", nil)

	items, err := svc.Menu(context.TODO(), "")
	assert.NoError(t, err)
	assert.Len(t, items, 3)

	// home page first, then alphabetical; unpublished pages stay out
	assert.Equal(t, model.RootURL, items[0].URL)
	assert.Equal(t, "Apple", items[1].Title)
	assert.Equal(t, "Zebra", items[2].Title)
}

func TestArticleService_DefaultLayout(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()

	layout, err := svc.DefaultLayout(context.TODO())
	assert.NoError(t, err)
	assert.Contains(t, layout, "{{content}}")
}

func TestArticleService_InvalidateWithoutCache(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	svc := newTestService()

	res, err := svc.Invalidate(context.TODO(), "about")
	assert.NoError(t, err)
	assert.False(t, res.CacheConnected)
	assert.Empty(t, res.RemovedKeys)
}
