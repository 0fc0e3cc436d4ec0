package service

import (
	"context"
	"time"

	"github.com/pagecraft/article/internal/model"
	"github.com/sirupsen/logrus"
)

// ArticleView is the caller-facing shape of an article row, with the resolved
// layout and the cache key the view lives under in publish mode.
type ArticleView struct {
	ID            uint          `json:"id"`
	Guid          string        `json:"guid"`
	ArticleNumber int           `json:"article_number"`
	VersionNumber int           `json:"version_number"`
	Title         string        `json:"title"`
	URL           string        `json:"url"`
	Body          string        `json:"body"`
	HeaderScript  string        `json:"header_script"`
	FooterScript  string        `json:"footer_script"`
	RoleList      string        `json:"role_list"`
	LayoutRef     string        `json:"layout_ref"`
	Status        model.Status  `json:"status"`
	Published     *time.Time    `json:"published,omitempty"`
	Updated       time.Time     `json:"updated"`
	Layout        string        `json:"layout"`
	Lang          string        `json:"lang"`
	CacheKey      string        `json:"cache_key"`
}

// Summary is one row of a list view, describing the display version of a
// content group.
type Summary struct {
	ID            uint       `json:"id"`
	ArticleNumber int        `json:"article_number"`
	VersionNumber int        `json:"version_number"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Status        string     `json:"status"`
	Published     *time.Time `json:"published,omitempty"`
	Updated       time.Time  `json:"updated"`
	IsRoot        bool       `json:"is_root"`
	OwnerGroup    string     `json:"owner_group,omitempty"`
}

// MenuItem is one entry of the site menu.
type MenuItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// InvalidateResult reports what a cache flush removed. CacheConnected is false
// when the cache was not reachable, which is not an error.
type InvalidateResult struct {
	RemovedKeys    []string `json:"removed_keys"`
	CacheConnected bool     `json:"cache_connected"`
}

// materializeView turns a row into its caller-facing view, resolving the
// layout and running the translation pass for non-default languages.
func (s *ArticleService) materializeView(ctx context.Context, a *model.Article, lang, cacheKey string) *ArticleView {
	view := &ArticleView{
		ID:            a.ID,
		Guid:          a.Guid,
		ArticleNumber: a.ArticleNumber,
		VersionNumber: a.VersionNumber,
		Title:         a.Title,
		URL:           a.URL,
		Body:          a.Body,
		HeaderScript:  a.HeaderScript,
		FooterScript:  a.FooterScript,
		RoleList:      a.RoleList,
		LayoutRef:     a.LayoutRef,
		Status:        a.Status,
		Published:     a.Published,
		Updated:       a.Updated,
		Lang:          lang,
		CacheKey:      cacheKey,
	}

	layout, err := s.layouts.GetDefaultLayout(ctx)
	if err != nil {
		logrus.Errorf("resolving default layout: %v", err)
	} else {
		view.Layout = layout
	}

	if lang != "" && lang != s.lang {
		texts, err := s.translator.Translate(ctx, s.lang, lang, []string{view.Title, view.Body})
		if err != nil || len(texts) != 2 {
			logrus.Errorf("translating view %q to %s: %v", a.URL, lang, err)
		} else {
			view.Title = texts[0]
			view.Body = texts[1]
		}
	}

	return view
}

func summarize(a *model.Article) Summary {
	return Summary{
		ID:            a.ID,
		ArticleNumber: a.ArticleNumber,
		VersionNumber: a.VersionNumber,
		Title:         a.Title,
		URL:           a.URL,
		Status:        a.Status.Label(),
		Published:     a.Published,
		Updated:       a.Updated,
		IsRoot:        a.IsRoot(),
		OwnerGroup:    a.OwnerGroup,
	}
}
