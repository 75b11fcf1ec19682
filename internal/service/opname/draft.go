package opname

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"opnamecore/internal/domain/models"
)

// SaveFunc persists a draft payload.
type SaveFunc func(ctx context.Context, items []models.SOWorkingItem, lastStep models.SOStep) error

// DraftSaver coalesces rapid draft submissions so a count edited keystroke
// by keystroke is not persisted on every change. Only the latest payload
// submitted during a quiet period is written: last write wins.
type DraftSaver struct {
	save     SaveFunc
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *draftPayload
	closed  bool
}

type draftPayload struct {
	items    []models.SOWorkingItem
	lastStep models.SOStep
}

// NewDraftSaver builds a debouncing draft saver around the given persist
// function.
func NewDraftSaver(save SaveFunc, interval time.Duration, logger *zap.Logger) *DraftSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftSaver{
		save:     save,
		interval: interval,
		timeout:  10 * time.Second,
		logger:   logger,
	}
}

// Submit records the latest draft state and (re)starts the quiet-period
// timer. Earlier unsent payloads are discarded.
func (d *DraftSaver) Submit(items []models.SOWorkingItem, lastStep models.SOStep) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.pending = &draftPayload{items: items, lastStep: lastStep}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

// Flush persists any pending payload immediately. It is safe to call with
// nothing pending.
func (d *DraftSaver) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	payload := d.pending
	d.pending = nil
	d.mu.Unlock()

	d.persist(payload)
}

// Close flushes the pending payload and rejects further submissions.
func (d *DraftSaver) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Flush()
}

func (d *DraftSaver) fire() {
	d.mu.Lock()
	payload := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	d.persist(payload)
}

func (d *DraftSaver) persist(payload *draftPayload) {
	if payload == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.save(ctx, payload.items, payload.lastStep); err != nil {
		d.logger.Error("debounced draft save failed", zap.Error(err))
	}
}
