package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/factdeck-backend/internal/data/repos"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

// ModerationEngine reads and mutates a user's toggle rows. Set and clear are idempotent and
// return the user's state for the fact after the call.
type ModerationEngine interface {
	SetToggle(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind, rationale string) (facts.ToggleState, error)
	ClearToggle(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) (facts.ToggleState, error)
	IsActive(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) (bool, error)
	// ClearStatuses removes suspend and report in one step. Mark is kept.
	ClearStatuses(dbc dbctx.Context, userID, factID uuid.UUID) (facts.ToggleState, error)
	State(dbc dbctx.Context, userID uuid.UUID, factIDs []uuid.UUID) (map[uuid.UUID]facts.ToggleState, error)
}

type moderationEngine struct {
	log     *logger.Logger
	facts   repos.FactRepo
	toggles repos.ToggleRepo
}

func NewModerationEngine(log *logger.Logger, factRepo repos.FactRepo, toggleRepo repos.ToggleRepo) ModerationEngine {
	return &moderationEngine{
		log:     log.With("service", "ModerationEngine"),
		facts:   factRepo,
		toggles: toggleRepo,
	}
}

func (m *moderationEngine) SetToggle(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind, rationale string) (facts.ToggleState, error) {
	if err := m.check(dbc, userID, factID, kind); err != nil {
		return facts.ToggleState{}, err
	}
	row := &types.ModerationToggle{UserID: userID, FactID: factID, Kind: kind}
	if kind == facts.KindReport {
		row.Rationale = rationale
	}
	inserted, err := m.toggles.Insert(dbc, row)
	if err != nil {
		return facts.ToggleState{}, fmt.Errorf("set %s toggle: %w", kind, err)
	}
	if !inserted {
		m.log.Debug("toggle already active", "fact_id", factID, "kind", kind)
	}
	return m.stateOf(dbc, userID, factID)
}

func (m *moderationEngine) ClearToggle(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) (facts.ToggleState, error) {
	if err := m.check(dbc, userID, factID, kind); err != nil {
		return facts.ToggleState{}, err
	}
	if _, err := m.toggles.Delete(dbc, userID, factID, kind); err != nil {
		return facts.ToggleState{}, fmt.Errorf("clear %s toggle: %w", kind, err)
	}
	return m.stateOf(dbc, userID, factID)
}

func (m *moderationEngine) IsActive(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) (bool, error) {
	if err := m.check(dbc, userID, factID, kind); err != nil {
		return false, err
	}
	return m.toggles.Exists(dbc, userID, factID, kind)
}

func (m *moderationEngine) ClearStatuses(dbc dbctx.Context, userID, factID uuid.UUID) (facts.ToggleState, error) {
	if err := m.check(dbc, userID, factID, facts.KindSuspend); err != nil {
		return facts.ToggleState{}, err
	}
	if _, err := m.toggles.Delete(dbc, userID, factID, facts.KindSuspend, facts.KindReport); err != nil {
		return facts.ToggleState{}, fmt.Errorf("clear statuses: %w", err)
	}
	return m.stateOf(dbc, userID, factID)
}

func (m *moderationEngine) State(dbc dbctx.Context, userID uuid.UUID, factIDs []uuid.UUID) (map[uuid.UUID]facts.ToggleState, error) {
	return m.toggles.StatesFor(dbc, userID, factIDs)
}

func (m *moderationEngine) check(dbc dbctx.Context, userID, factID uuid.UUID, kind facts.Kind) error {
	if !kind.Valid() {
		return apierr.Validation("unknown toggle kind %q", kind)
	}
	if userID == uuid.Nil {
		return apierr.Unauthorized("toggles require an authenticated user")
	}
	if _, err := m.facts.GetByID(dbc, factID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return apierr.NotFound("fact %s not found", factID)
		}
		return fmt.Errorf("load fact: %w", err)
	}
	return nil
}

func (m *moderationEngine) stateOf(dbc dbctx.Context, userID, factID uuid.UUID) (facts.ToggleState, error) {
	states, err := m.toggles.StatesFor(dbc, userID, []uuid.UUID{factID})
	if err != nil {
		return facts.ToggleState{}, err
	}
	return states[factID], nil
}
