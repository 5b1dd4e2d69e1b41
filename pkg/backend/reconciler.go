package backend

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/model"
	"golang.org/x/exp/maps"
	"k8s.io/apimachinery/pkg/util/wait"
)

func (b *backend) StartReconcilerDaemon(ctx context.Context) {
	if b.cfg.ReconcileIntervalSeconds <= 0 {
		logrus.Info("reconciler disabled")
		return
	}
	logrus.Infof("starting reconcile daemon. Interval: %vs, grace: %vs",
		b.cfg.ReconcileIntervalSeconds, b.cfg.ReconcileGraceSeconds)
	wait.JitterUntilWithContext(ctx, b.reconcile, time.Duration(b.cfg.ReconcileIntervalSeconds)*time.Second, .002, true)
}

// reconcile deletes provider SRV records that no registration row references. The
// database is the source of truth.
func (b *backend) reconcile(ctx context.Context) {
	deleted, err := b.reconcileOnce(ctx, time.Now())
	if err != nil {
		logrus.Errorf("reconcile failed: %v", err)
		return
	}
	logrus.Infof("Records reconciled away from the DNS provider: %v", deleted)
}

func (b *backend) reconcileOnce(ctx context.Context, now time.Time) (int, error) {
	records, err := b.provider.ListSRV(ctx, model.SRVPrefix)
	if err != nil {
		return 0, err
	}

	referenced, err := b.db.GetRegisteredDNSIDs()
	if err != nil {
		return 0, err
	}

	grace := time.Duration(b.cfg.ReconcileGraceSeconds) * time.Second
	seen := make(map[string]bool, len(records))
	deleted := 0
	for _, record := range records {
		seen[record.ID] = true

		// only tagged records are ours, unless the provider cannot keep comments
		if !record.CommentUnsupported && !strings.HasPrefix(record.Comment, b.cfg.CommentTag) {
			continue
		}
		if referenced[record.ID] {
			continue
		}

		created := record.Created
		if created.IsZero() {
			first, ok := b.firstSeen[record.ID]
			if !ok {
				first = now
				b.firstSeen[record.ID] = now
			}
			created = first
		}
		if now.Sub(created) < grace {
			continue
		}

		if err := b.provider.Delete(ctx, record.ID); err != nil {
			logrus.Warnf("failed to delete orphaned record %s (%s): %v", record.ID, record.Name, err)
			continue
		}
		logrus.Infof("deleted orphaned record %s (%s)", record.ID, record.Name)
		delete(b.firstSeen, record.ID)
		deleted++
	}

	for _, id := range maps.Keys(b.firstSeen) {
		if !seen[id] {
			delete(b.firstSeen, id)
		}
	}

	return deleted, nil
}
