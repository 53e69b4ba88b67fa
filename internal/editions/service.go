// Package editions keeps an edition's page numbering, hotspot page targets and
// hotspot-to-hotspot links consistent across admin edits.
package editions

import (
	"context"
	"fmt"
	"time"

	"epaper-app/internal/domain/sequence"
	"epaper-app/internal/infra/lock"
	"epaper-app/internal/infra/storage"
	"epaper-app/internal/metrics"
	"epaper-app/internal/store"

	"go.uber.org/zap"
)

const (
	StaleTargetsKeep  = "keep"
	StaleTargetsClear = "clear"
)

type Options struct {
	// MaxPageNo bounds page numbers and category positions.
	MaxPageNo int
	// StaleTargetPolicy decides what happens to hotspots on other pages that
	// target a deleted page's number: keep them, or clear target_page_no.
	StaleTargetPolicy string
	BulkDeleteMax     int
}

func (o Options) withDefaults() Options {
	if o.MaxPageNo <= 0 {
		o.MaxPageNo = sequence.DefaultMaxValue
	}
	if o.StaleTargetPolicy == "" {
		o.StaleTargetPolicy = StaleTargetsKeep
	}
	if o.BulkDeleteMax <= 0 {
		o.BulkDeleteMax = 200
	}
	return o
}

type Service struct {
	store  store.Store
	images storage.ImageDeleter
	locker lock.Locker
	log    *zap.Logger
	opts   Options
	now    func() time.Time
}

func NewService(st store.Store, images storage.ImageDeleter, locker lock.Locker, log *zap.Logger, opts Options) *Service {
	if images == nil {
		images = storage.NoopDeleter{}
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  st,
		images: images,
		locker: locker,
		log:    log,
		opts:   opts.withDefaults(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// locked runs fn in one transaction while holding the advisory lock for key.
func (s *Service) locked(ctx context.Context, key string, fn func(tx store.Tx) error) error {
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return s.store.Transaction(ctx, fn)
}

func editionKey(id uint) string {
	return fmt.Sprintf("edition:%d", id)
}

func (s *Service) read(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.store.Transaction(ctx, fn)
}

// record counts the outcome of a mutation.
func record(op string, err error) error {
	switch {
	case err == nil:
		metrics.Mutations.WithLabelValues(op).Inc()
	case IsValidation(err):
		metrics.ValidationFailures.WithLabelValues(op).Inc()
	}
	return err
}

func (s *Service) editionOfPage(ctx context.Context, pageID uint) (uint, error) {
	var editionID uint
	err := s.read(ctx, func(tx store.Tx) error {
		p, err := tx.GetPage(pageID)
		if err != nil {
			return fmt.Errorf("page %d: %w", pageID, err)
		}
		editionID = p.EditionID
		return nil
	})
	return editionID, err
}

func (s *Service) editionOfHotspot(ctx context.Context, hotspotID uint) (uint, error) {
	var editionID uint
	err := s.read(ctx, func(tx store.Tx) error {
		h, err := tx.GetHotspot(hotspotID)
		if err != nil {
			return fmt.Errorf("hotspot %d: %w", hotspotID, err)
		}
		p, err := tx.GetPage(h.PageID)
		if err != nil {
			return fmt.Errorf("page %d: %w", h.PageID, err)
		}
		editionID = p.EditionID
		return nil
	})
	return editionID, err
}
