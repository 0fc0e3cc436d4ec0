package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pagecraft/article/internal/cache"
	"github.com/pagecraft/article/internal/config"
	"github.com/pagecraft/article/internal/model"
	"github.com/pagecraft/article/internal/store"
	"github.com/sirupsen/logrus"
)

// reservedTitle collides with the object storage root folder and can never be
// used as an article title.
const reservedTitle = "pub"

const placeholderBody = "<p>New article content goes here.</p>"

// NewArticleService creates the version and publish engine.
func NewArticleService(cfg *config.Config, st store.Store, c cache.Cache, users UserDirectory, translator Translator, layouts LayoutProvider) *ArticleService {
	return &ArticleService{
		store:      st,
		cache:      c,
		users:      users,
		translator: translator,
		layouts:    layouts,
		mode:       cfg.Mode,
		ttl:        cfg.CacheTTL,
		lang:       cfg.DefaultLang,
		locks:      make(map[int]*sync.Mutex),
	}
}

// ArticleService implements creation, versioning, publish evaluation, status
// transitions, redirects and list aggregation over the article store.
type ArticleService struct {
	store      store.Store
	cache      cache.Cache
	users      UserDirectory
	translator Translator
	layouts    LayoutProvider

	mode config.Mode
	ttl  time.Duration
	lang string

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// lockNumber serializes mutations per article number. Number 0 guards new
// number assignment.
func (s *ArticleService) lockNumber(number int) *sync.Mutex {
	s.mu.Lock()
	lock, ok := s.locks[number]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[number] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock
}

// Create builds an unsaved draft. The body comes from the referenced template
// when one is given. The store is not touched.
func (s *ArticleService) Create(ctx context.Context, title, templateRef string) (*model.Article, error) {
	body := placeholderBody
	if templateRef != "" {
		tpl, err := s.layouts.GetTemplate(ctx, templateRef)
		if err != nil {
			return nil, err
		}
		body = tpl
	}

	return &model.Article{
		Guid:    uuid.NewString(),
		Title:   title,
		URL:     Slugify(title),
		Body:    body,
		Status:  model.StatusActive,
		Updated: time.Now().UTC(),
	}, nil
}

// Save persists a draft or an edit. An article number of 0 allocates a new
// group; a version number of 0 within an existing group creates a new version.
func (s *ArticleService) Save(ctx context.Context, a *model.Article, actorID, groupRef string) (*ArticleView, error) {
	if err := s.requireActor(ctx, actorID); err != nil {
		return nil, err
	}
	if err := s.validateTitle(ctx, a.Title, a.ArticleNumber); err != nil {
		return nil, err
	}

	var (
		saved *model.Article
		err   error
	)
	if a.ArticleNumber == 0 {
		saved, err = s.saveNew(ctx, a, actorID, groupRef)
	} else {
		saved, err = s.saveExisting(ctx, a, actorID, groupRef)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateAfterWrite(ctx)
	return s.materializeView(ctx, saved, s.lang, ""), nil
}

func (s *ArticleService) saveNew(ctx context.Context, a *model.Article, actorID, groupRef string) (*model.Article, error) {
	lock := s.lockNumber(0)
	defer lock.Unlock()

	now := time.Now().UTC()
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		count, err := tx.CountArticles(ctx)
		if err != nil {
			return err
		}

		// the very first article becomes the home page and goes live immediately
		if count == 0 {
			a.URL = model.RootURL
			published := now
			a.Published = &published
		} else {
			a.URL = Slugify(a.Title)
		}

		maxNumber, err := tx.MaxArticleNumber(ctx)
		if err != nil {
			return err
		}
		a.ArticleNumber = maxNumber + 1
		a.VersionNumber = 1
		a.Status = model.StatusActive
		if a.Guid == "" {
			a.Guid = uuid.NewString()
		}
		if groupRef != "" {
			a.OwnerGroup = groupRef
		}
		a.Updated = now

		a.Log(fmt.Sprintf("New article %d", a.ArticleNumber), actorID)
		a.Log("New version 1", actorID)
		if a.Published != nil {
			a.Log("Publish", actorID)
		}

		if err := tx.DeleteRedirectsByURL(ctx, a.URL); err != nil {
			return err
		}

		return tx.CreateArticle(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("created article %d %q at /%s", a.ArticleNumber, a.Title, a.URL)
	return a, nil
}

func (s *ArticleService) saveExisting(ctx context.Context, a *model.Article, actorID, groupRef string) (*model.Article, error) {
	lock := s.lockNumber(a.ArticleNumber)
	defer lock.Unlock()

	var target *model.Article
	now := time.Now().UTC()

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		siblings, err := tx.ListByNumber(ctx, a.ArticleNumber)
		if err != nil {
			return err
		}
		if len(siblings) == 0 {
			return ErrNotFound
		}

		source, err := tx.GetArticle(ctx, a.ID)
		if errors.Is(err, store.ErrArticleNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		newVersion := a.VersionNumber == 0
		requested := a.Published
		if newVersion {
			maxVersion, err := tx.MaxVersionNumber(ctx, a.ArticleNumber)
			if err != nil {
				return err
			}
			target = &model.Article{
				Guid:          uuid.NewString(),
				ArticleNumber: a.ArticleNumber,
				VersionNumber: maxVersion + 1,
				Title:         source.Title,
				URL:           source.URL,
				Body:          source.Body,
				HeaderScript:  source.HeaderScript,
				FooterScript:  source.FooterScript,
				RoleList:      source.RoleList,
				LayoutRef:     source.LayoutRef,
				OwnerGroup:    source.OwnerGroup,
				Status:        model.StatusActive,
			}
			// a fresh version is born unpublished no matter what the caller asked
			requested = nil
			target.Log("New version", actorID)
		} else {
			target = source
			target.Log("Edit existing", actorID)
		}

		// a title change renames the whole group and leaves a redirect behind;
		// the home page keeps its url
		if !strings.EqualFold(target.Title, a.Title) && !target.IsRoot() {
			oldURL := target.URL
			newURL := Slugify(a.Title)
			target.URL = newURL

			// a rename back to an earlier title must not leave the old
			// redirect behind, it would shadow the article itself
			if err := tx.DeleteRedirectsByURL(ctx, newURL); err != nil {
				return err
			}

			yesterday := now.Add(-24 * time.Hour)
			redirect := &model.Article{
				Guid:      uuid.NewString(),
				Title:     model.RedirectTitle,
				URL:       oldURL,
				Body:      newURL,
				Status:    model.StatusRedirect,
				Published: &yesterday,
				Updated:   now,
			}
			if err := tx.CreateArticle(ctx, redirect); err != nil {
				return err
			}

			for _, sib := range siblings {
				if sib.ID == target.ID {
					continue
				}
				sib.Title = a.Title
				sib.URL = newURL
				sib.Updated = now
				if err := tx.SaveArticle(ctx, sib); err != nil {
					return err
				}
			}

			target.Log(fmt.Sprintf("Redirect %s to %s", oldURL, newURL), actorID)
		}

		// role list changes apply to every version
		if a.RoleList != target.RoleList {
			for _, sib := range siblings {
				if sib.ID == target.ID {
					continue
				}
				sib.RoleList = a.RoleList
				sib.Updated = now
				if err := tx.SaveArticle(ctx, sib); err != nil {
					return err
				}
			}
			target.Log(fmt.Sprintf("Role list changed from %q to %q", target.RoleList, a.RoleList), actorID)
		}

		if !publishedEqual(target.Published, requested) {
			if requested != nil {
				target.Log("Publish", actorID)
			} else {
				target.Log("Un-publish", actorID)
			}
		}

		target.Title = a.Title
		target.Body = a.Body
		target.HeaderScript = a.HeaderScript
		target.FooterScript = a.FooterScript
		target.RoleList = a.RoleList
		if a.LayoutRef != "" {
			target.LayoutRef = a.LayoutRef
		}
		if groupRef != "" {
			target.OwnerGroup = groupRef
		}
		target.Published = requested
		target.Updated = now

		if newVersion {
			return tx.CreateArticle(ctx, target)
		}
		return tx.SaveArticle(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("saved article %d version %d %q", target.ArticleNumber, target.VersionNumber, target.Title)
	return target, nil
}

// SetStatus applies a status to every row of a group and returns the number of
// rows touched.
func (s *ArticleService) SetStatus(ctx context.Context, number int, status model.Status, actorID string) (int, error) {
	if err := s.requireActor(ctx, actorID); err != nil {
		return 0, err
	}

	var count int
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		n, err := setStatusTx(ctx, tx, number, status, actorID)
		count = n
		return err
	})
	if err != nil {
		return 0, err
	}

	s.invalidateAfterWrite(ctx)
	return count, nil
}

func setStatusTx(ctx context.Context, tx store.Store, number int, status model.Status, actorID string) (int, error) {
	siblings, err := tx.ListByNumber(ctx, number)
	if err != nil {
		return 0, err
	}
	if len(siblings) == 0 {
		return 0, ErrNotFound
	}

	now := time.Now().UTC()
	for _, sib := range siblings {
		sib.Status = status
		sib.Updated = now
		sib.Log("Status changed to "+status.Label(), actorID)
		if err := tx.SaveArticle(ctx, sib); err != nil {
			return 0, err
		}
	}

	return len(siblings), nil
}

// TrashArticleGroup moves a whole group to the deleted state. The home page
// cannot be trashed.
func (s *ArticleService) TrashArticleGroup(ctx context.Context, number int, actorID string) (int, error) {
	if err := s.requireActor(ctx, actorID); err != nil {
		return 0, err
	}

	var count int
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		siblings, err := tx.ListByNumber(ctx, number)
		if err != nil {
			return err
		}
		if len(siblings) == 0 {
			return ErrNotFound
		}
		for _, sib := range siblings {
			if sib.IsRoot() {
				return ErrForbidden
			}
		}

		n, err := setStatusTx(ctx, tx, number, model.StatusDeleted, actorID)
		count = n
		return err
	})
	if err != nil {
		return 0, err
	}

	s.invalidateAfterWrite(ctx)
	return count, nil
}

// RestoreArticleGroup brings a trashed group back as active and unpublished.
// A title collision with a live group renames the restored one.
func (s *ArticleService) RestoreArticleGroup(ctx context.Context, number int, actorID string) (int, error) {
	if err := s.requireActor(ctx, actorID); err != nil {
		return 0, err
	}

	var count int
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		siblings, err := tx.ListByNumber(ctx, number)
		if err != nil {
			return err
		}
		if len(siblings) == 0 {
			return ErrNotFound
		}

		latest := siblings[len(siblings)-1]
		title := latest.Title
		url := latest.URL

		exists, err := tx.TitleExists(ctx, title, number)
		if err != nil {
			return err
		}
		if exists {
			groups, err := tx.CountGroups(ctx)
			if err != nil {
				return err
			}
			title = fmt.Sprintf("%s (%d)", title, groups)
			url = Slugify(title)
		}

		now := time.Now().UTC()
		for _, sib := range siblings {
			sib.Status = model.StatusActive
			sib.Published = nil
			sib.Title = title
			sib.URL = url
			sib.Updated = now
			sib.Log("Status changed to active", actorID)
			if err := tx.SaveArticle(ctx, sib); err != nil {
				return err
			}
		}

		count = len(siblings)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.invalidateAfterWrite(ctx)
	return count, nil
}

// SwapHomePage makes the given group the home page. The group must own at
// least one live version; the outgoing home page is re-slugged from its title.
func (s *ArticleService) SwapHomePage(ctx context.Context, number int, actorID string) error {
	if err := s.requireActor(ctx, actorID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx store.Store) error {
		incoming, err := tx.ListByNumber(ctx, number)
		if err != nil {
			return err
		}
		if len(incoming) == 0 {
			return ErrNotFound
		}

		now := time.Now().UTC()
		var announce *model.Article
		for _, sib := range incoming {
			if sib.IsLive(now) && (announce == nil || sib.ID > announce.ID) {
				announce = sib
			}
		}
		if announce == nil {
			return ErrNotPublishedYet
		}

		// the old home page steps aside before the new group takes "root"
		rootRows, err := tx.ListByURL(ctx, model.RootURL)
		if err != nil {
			return err
		}
		seen := make(map[int]bool)
		for _, row := range rootRows {
			if row.ArticleNumber == number || seen[row.ArticleNumber] {
				continue
			}
			seen[row.ArticleNumber] = true

			outgoing, err := tx.ListByNumber(ctx, row.ArticleNumber)
			if err != nil {
				return err
			}
			for _, sib := range outgoing {
				sib.URL = Slugify(sib.Title)
				sib.Updated = now
				if err := tx.SaveArticle(ctx, sib); err != nil {
					return err
				}
			}
		}

		announce.Log("Set as home page", actorID)
		for _, sib := range incoming {
			sib.URL = model.RootURL
			sib.Updated = now
			if err := tx.SaveArticle(ctx, sib); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateAfterWrite(ctx)
	return nil
}

func (s *ArticleService) requireActor(ctx context.Context, actorID string) error {
	ok, err := s.users.UserExists(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolving acting user %q: %w", actorID, err)
	}
	if !ok {
		return ErrUnknownActor
	}
	return nil
}

func (s *ArticleService) validateTitle(ctx context.Context, title string, number int) error {
	if strings.EqualFold(strings.TrimSpace(title), reservedTitle) {
		return fmt.Errorf("%w: %q is reserved", ErrTitleConflict, title)
	}

	exists, err := s.store.TitleExists(ctx, title, number)
	if err != nil {
		return err
	}
	if exists {
		return ErrTitleConflict
	}
	return nil
}

func publishedEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
