package model

import (
	"time"
)

// Status is the visibility state of an article row.
type Status int

const (
	StatusActive   Status = 0
	StatusInactive Status = 1
	StatusDeleted  Status = 2
	StatusRedirect Status = 3
)

// Label returns the human readable status name used in list views and audit notes.
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusDeleted:
		return "deleted"
	case StatusRedirect:
		return "redirect"
	}
	return "unknown"
}

// RootURL is the url of the site home page. Exactly one live row may hold it.
const RootURL = "root"

// RedirectTitle is the title stored on synthetic redirect rows.
const RedirectTitle = "Redirect"

// Article is one version row of a content group. All rows sharing an
// ArticleNumber are versions of the same page; a redirect row uses
// ArticleNumber 0 and VersionNumber 0 and stores the old url in URL and the
// target url in Body.
type Article struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	Guid          string `gorm:"index"`
	ArticleNumber int    `gorm:"index:idx_article_version,priority:1"`
	VersionNumber int    `gorm:"index:idx_article_version,priority:2"`
	Title         string
	URL           string `gorm:"index"`
	Body          string
	HeaderScript  string
	FooterScript  string
	RoleList      string
	LayoutRef     string
	OwnerGroup    string
	Status        Status `gorm:"index"`
	Published     *time.Time
	Updated       time.Time
	Logs          []ActivityLog `gorm:"foreignKey:ArticleID"`
}

// IsRoot reports whether this row belongs to the site home page.
func (a *Article) IsRoot() bool {
	return a.URL == RootURL
}

// IsLive reports whether the row is published as of now.
func (a *Article) IsLive(now time.Time) bool {
	return a.Published != nil && !a.Published.After(now)
}

// Log appends an audit entry to the row. The entry is persisted together with
// the row by the store.
func (a *Article) Log(note, userID string) {
	a.Logs = append(a.Logs, ActivityLog{
		Note:    note,
		UserID:  userID,
		Created: time.Now().UTC(),
	})
}

// ActivityLog is one immutable audit entry owned by an article row.
type ActivityLog struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	ArticleID uint `gorm:"index"`
	Note      string
	UserID    string
	Created   time.Time
}
