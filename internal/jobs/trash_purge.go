package jobs

import (
	"context"
	"time"

	"github.com/pagecraft/article/internal/store"
	"github.com/sirupsen/logrus"
)

// TrashPurge physically erases article rows that have sat in the trash longer
// than the retention window. The engine only ever soft-deletes; this job is
// the external purge.
type TrashPurge struct {
	store     store.Store
	retention time.Duration
	cron      string
}

func NewTrashPurge(schedule string, retention time.Duration, store store.Store) *TrashPurge {
	return &TrashPurge{
		store:     store,
		retention: retention,
		cron:      schedule,
	}
}

func (p *TrashPurge) Schedule() string {
	return p.cron
}

func (p *TrashPurge) Run() {
	cutoff := time.Now().UTC().Add(-p.retention)

	purged, err := p.store.PurgeDeletedBefore(context.Background(), cutoff)
	if err != nil {
		logrus.Errorf("purging trashed articles: %v", err)
		return
	}

	if purged > 0 {
		logrus.Infof("purged %d trashed article rows older than %s", purged, p.retention)
	}
}
