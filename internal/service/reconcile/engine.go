package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"opnamecore/internal/domain/models"
	"opnamecore/internal/repository/mongodb"
	"opnamecore/internal/repository/sheets"
	"opnamecore/pkg/clients/inventory"
)

// DiffClass labels the sign of an item's counted difference.
type DiffClass string

const (
	DiffMinus DiffClass = "minus"
	DiffPlus  DiffClass = "plus"
	DiffMatch DiffClass = "match"
)

// Difference returns physical minus system quantity. Zero means the count
// matched the records.
func Difference(item models.SOWorkingItem) int {
	return item.PhysicalQty - item.SystemQty
}

// LineTotal returns the rupiah value of an item's difference. The sign
// follows the difference: shortages are negative, overages positive.
func LineTotal(item models.SOWorkingItem) float64 {
	return float64(Difference(item)) * item.Price
}

// Classify buckets an item by the sign of its difference.
func Classify(item models.SOWorkingItem) DiffClass {
	switch diff := Difference(item); {
	case diff < 0:
		return DiffMinus
	case diff > 0:
		return DiffPlus
	default:
		return DiffMatch
	}
}

// FinalizeMeta carries the session context a finalize needs beyond the
// working items themselves.
type FinalizeMeta struct {
	UserID    string
	UserName  string
	StartTime time.Time
}

// Engine validates and commits a finished count: it applies corrections to
// the inventory backend, snapshots the result into the history ledger and
// releases the session slot.
type Engine struct {
	gateway  inventory.Gateway
	ledger   mongodb.HistoryLedger
	sessions mongodb.SessionStore
	exporter sheets.Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine wires a reconciliation engine. The exporter may be nil, in
// which case finalized counts are not exported.
func NewEngine(gateway inventory.Gateway, ledger mongodb.HistoryLedger, sessions mongodb.SessionStore, exporter sheets.Exporter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		gateway:  gateway,
		ledger:   ledger,
		sessions: sessions,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// RefreshSystemQuantities re-reads the current system quantity for every
// item, preserving the user-entered physical quantities. Lookups are
// best-effort per item: an item whose fetch fails keeps its prior system
// quantity.
func (e *Engine) RefreshSystemQuantities(ctx context.Context, items []models.SOWorkingItem) []models.SOWorkingItem {
	refreshed := make([]models.SOWorkingItem, len(items))
	copy(refreshed, items)

	for i := range refreshed {
		current, err := e.gateway.GetItem(ctx, refreshed[i].Code)
		if err != nil {
			e.logger.Warn("keeping stale system quantity",
				zap.String("code", refreshed[i].Code),
				zap.Error(err))
			continue
		}
		refreshed[i].SystemQty = current.SystemQty
	}

	return refreshed
}

// Finalize applies every physical quantity to the inventory backend and, on
// full success, writes the history record and discards the active session.
//
// Inventory updates are sequential and fail-fast with no rollback: a failure
// partway leaves earlier items corrected and later ones untouched. The
// history record is written last so a retried finalize re-applies the same
// quantities (idempotent on the backend) without double-appending history.
func (e *Engine) Finalize(ctx context.Context, items []models.SOWorkingItem, meta FinalizeMeta) (models.SOHistoryRecord, error) {
	for _, item := range items {
		if err := e.gateway.SetQuantity(ctx, item.Code, item.PhysicalQty); err != nil {
			return models.SOHistoryRecord{}, fmt.Errorf("apply correction for %s: %w", item.Code, err)
		}
	}

	completedAt := e.now()
	record := models.SOHistoryRecord{
		Date:            completedAt,
		UserID:          meta.UserID,
		UserName:        meta.UserName,
		TotalItems:      len(items),
		DurationSeconds: int64(completedAt.Sub(meta.StartTime) / time.Second),
		Items:           make([]models.SOHistoryItem, 0, len(items)),
	}
	for _, item := range items {
		diff := Difference(item)
		total := LineTotal(item)
		record.TotalQtyDifference += diff
		record.TotalRpDifference += total
		record.Items = append(record.Items, models.SOHistoryItem{
			Code:        item.Code,
			Name:        item.Name,
			SystemQty:   item.SystemQty,
			PhysicalQty: item.PhysicalQty,
			Difference:  diff,
			Price:       item.Price,
			Total:       total,
		})
	}

	record, err := e.ledger.Append(ctx, record)
	if err != nil {
		return models.SOHistoryRecord{}, fmt.Errorf("persist history record: %w", err)
	}

	if err := e.sessions.Delete(ctx); err != nil {
		// The count itself succeeded; a dangling session slot is better
		// reported than a lost record.
		e.logger.Error("failed to release session after finalize", zap.Error(err))
	}

	if e.exporter != nil {
		if err := e.exporter.AppendHistoryRow(ctx, record); err != nil {
			e.logger.Warn("history export failed", zap.String("record_id", record.ID), zap.Error(err))
		}
	}

	e.logger.Info("opname finalized",
		zap.String("record_id", record.ID),
		zap.Int("items", record.TotalItems),
		zap.Int("qty_difference", record.TotalQtyDifference))

	return record, nil
}
