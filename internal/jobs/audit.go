// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"time"

	"epaper-app/internal/editions"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const auditTimeout = 2 * time.Minute

// Auditor is the part of the editions service the audit job needs.
type Auditor interface {
	AuditSoftReferences(ctx context.Context) ([]editions.DanglingReference, error)
}

// RunSoftReferenceAudit runs one audit pass and logs its outcome.
func RunSoftReferenceAudit(ctx context.Context, a Auditor, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	dangling, err := a.AuditSoftReferences(ctx)
	if err != nil {
		log.Error("soft reference audit failed", zap.Error(err))
		return
	}
	for _, d := range dangling {
		log.Debug("dangling target page",
			zap.Uint("edition_id", d.EditionID),
			zap.Uint("hotspot_id", d.HotspotID),
			zap.Int("target_page_no", d.TargetPageNo),
		)
	}
}

// NewScheduler registers the soft reference audit on schedule. Overlapping
// runs are skipped. The caller starts and stops the returned scheduler.
func NewScheduler(schedule string, a Auditor, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		log.Info("running scheduled soft reference audit")
		RunSoftReferenceAudit(context.Background(), a, log)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
