package service

import (
	"context"
	"sort"
	"strings"

	"github.com/pagecraft/article/internal/model"
)

// ListLatest aggregates every live group into one summary each. Groups with a
// published row are represented by the most recently inserted published row;
// unpublished groups by their most recently inserted row. The home page sorts
// first, then titles alphabetically.
func (s *ArticleService) ListLatest(ctx context.Context, filter func(Summary) bool) ([]Summary, error) {
	rows, err := s.store.ListNonDeleted(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[int][]*model.Article)
	for _, row := range rows {
		if row.ArticleNumber == 0 {
			// synthetic redirects are not pages
			continue
		}
		groups[row.ArticleNumber] = append(groups[row.ArticleNumber], row)
	}

	summaries := make([]Summary, 0, len(groups))
	for _, group := range groups {
		var pick *model.Article
		for _, row := range group {
			if row.Published == nil {
				continue
			}
			if pick == nil || row.ID > pick.ID {
				pick = row
			}
		}
		if pick == nil {
			for _, row := range group {
				if pick == nil || row.ID > pick.ID {
					pick = row
				}
			}
		}

		sum := summarize(pick)
		if filter != nil && !filter(sum) {
			continue
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].IsRoot != summaries[j].IsRoot {
			return summaries[i].IsRoot
		}
		return strings.ToLower(summaries[i].Title) < strings.ToLower(summaries[j].Title)
	})

	return summaries, nil
}

// ListTrash aggregates deleted groups, showing each group's highest version
// and its latest publish time.
func (s *ArticleService) ListTrash(ctx context.Context) ([]Summary, error) {
	rows, err := s.store.ListDeleted(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[int][]*model.Article)
	for _, row := range rows {
		if row.ArticleNumber == 0 {
			continue
		}
		groups[row.ArticleNumber] = append(groups[row.ArticleNumber], row)
	}

	summaries := make([]Summary, 0, len(groups))
	for _, group := range groups {
		var pick *model.Article
		for _, row := range group {
			if pick == nil || row.VersionNumber > pick.VersionNumber {
				pick = row
			}
		}

		sum := summarize(pick)
		for _, row := range group {
			if row.Published == nil {
				continue
			}
			if sum.Published == nil || row.Published.After(*sum.Published) {
				sum.Published = row.Published
			}
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return strings.ToLower(summaries[i].Title) < strings.ToLower(summaries[j].Title)
	})

	return summaries, nil
}

func sortMenu(items []MenuItem) {
	sort.Slice(items, func(i, j int) bool {
		iRoot := items[i].URL == model.RootURL
		jRoot := items[j].URL == model.RootURL
		if iRoot != jRoot {
			return iRoot
		}
		return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
	})
}
