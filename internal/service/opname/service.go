package opname

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"opnamecore/internal/domain/models"
	"opnamecore/internal/repository/mongodb"
	"opnamecore/internal/service/reconcile"
)

// Service owns the opname session lifecycle: there is at most one active
// session, it survives restarts through the session store, and it ends only
// by completion or an explicit discard.
type Service struct {
	store  mongodb.SessionStore
	engine *reconcile.Engine
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs a session lifecycle service.
func NewService(store mongodb.SessionStore, engine *reconcile.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// Start creates and persists a new session. It fails with
// models.ErrSessionConflict while another session is active; the caller must
// discard explicitly first.
func (s *Service) Start(ctx context.Context, soType models.SOType) (*models.SOSession, error) {
	if soType != models.SOTypePartial && soType != models.SOTypeGrand {
		return nil, fmt.Errorf("unknown opname type %q", soType)
	}

	existing, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrSessionConflict
	}

	session := models.SOSession{
		Type:         soType,
		StartTime:    s.now(),
		LastStep:     models.StepItemSelection,
		WorkingItems: []models.SOWorkingItem{},
	}
	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("opname session started", zap.String("type", string(soType)))
	return &session, nil
}

// Current returns the active session, or nil when none exists.
func (s *Service) Current(ctx context.Context) (*models.SOSession, error) {
	return s.store.Get(ctx)
}

// SaveDraft overwrites the working items and resume step of the active
// session. A missing session is logged, not an error: the caller may race
// with a discard.
func (s *Service) SaveDraft(ctx context.Context, items []models.SOWorkingItem, lastStep models.SOStep) error {
	matched, err := s.store.UpdateDraft(ctx, items, lastStep)
	if err != nil {
		return err
	}
	if !matched {
		s.logger.Warn("draft save skipped, no active session")
	}
	return nil
}

// Discard deletes the active session. Discarding when none exists is a
// no-op.
func (s *Service) Discard(ctx context.Context) error {
	if err := s.store.Delete(ctx); err != nil {
		return err
	}
	s.logger.Info("opname session discarded")
	return nil
}

// RefreshDraft re-reads system quantities for the active session's working
// items, keeping physical quantities intact, and persists the refreshed
// draft.
func (s *Service) RefreshDraft(ctx context.Context) ([]models.SOWorkingItem, error) {
	session, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, models.ErrNoActiveSession
	}

	refreshed := s.engine.RefreshSystemQuantities(ctx, session.WorkingItems)
	if err := s.SaveDraft(ctx, refreshed, session.LastStep); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// Complete finalizes the active session: corrections are applied to
// inventory, the history record is written and the session slot released.
// On failure the session remains active so the user can retry.
func (s *Service) Complete(ctx context.Context, userID, userName string) (models.SOHistoryRecord, error) {
	session, err := s.store.Get(ctx)
	if err != nil {
		return models.SOHistoryRecord{}, err
	}
	if session == nil {
		return models.SOHistoryRecord{}, models.ErrNoActiveSession
	}

	return s.engine.Finalize(ctx, session.WorkingItems, reconcile.FinalizeMeta{
		UserID:    userID,
		UserName:  userName,
		StartTime: session.StartTime,
	})
}
