package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/factdeck-backend/internal/data/repos"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/domain/facts"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

// PermissionResolver derives a user's role on a fact. Resolution never fails: lookup errors
// are logged and degrade to viewer.
type PermissionResolver interface {
	Resolve(dbc dbctx.Context, userID uuid.UUID, fact *types.Fact) facts.Permission
	ResolveMany(dbc dbctx.Context, userID uuid.UUID, rows []*types.Fact) map[uuid.UUID]facts.Permission
	// CanAccess reports whether the user may read or toggle the fact: owner, editor, or a public deck.
	CanAccess(dbc dbctx.Context, userID uuid.UUID, fact *types.Fact) bool
}

type permissionResolver struct {
	log   *logger.Logger
	decks repos.DeckRepo
}

func NewPermissionResolver(log *logger.Logger, decks repos.DeckRepo) PermissionResolver {
	return &permissionResolver{log: log.With("service", "PermissionResolver"), decks: decks}
}

func (p *permissionResolver) Resolve(dbc dbctx.Context, userID uuid.UUID, fact *types.Fact) facts.Permission {
	if fact == nil || userID == uuid.Nil {
		return facts.PermissionViewer
	}
	if fact.UserID == userID {
		return facts.PermissionOwner
	}
	ok, err := p.decks.IsPossessor(dbc, userID, fact.DeckID)
	if err != nil {
		p.log.Warn("possession lookup failed, resolving as viewer", "fact_id", fact.ID, "error", err)
		return facts.PermissionViewer
	}
	if ok {
		return facts.PermissionEditor
	}
	return facts.PermissionViewer
}

func (p *permissionResolver) ResolveMany(dbc dbctx.Context, userID uuid.UUID, rows []*types.Fact) map[uuid.UUID]facts.Permission {
	out := make(map[uuid.UUID]facts.Permission, len(rows))
	possessed := map[uuid.UUID]bool{}
	if userID != uuid.Nil && len(rows) > 0 {
		decks, err := p.decks.ListByPossessor(dbc, userID)
		if err != nil {
			p.log.Warn("possession lookup failed, resolving as viewer", "error", err)
		}
		for _, d := range decks {
			possessed[d.ID] = true
		}
	}
	for _, f := range rows {
		if f == nil {
			continue
		}
		switch {
		case userID != uuid.Nil && f.UserID == userID:
			out[f.ID] = facts.PermissionOwner
		case possessed[f.DeckID]:
			out[f.ID] = facts.PermissionEditor
		default:
			out[f.ID] = facts.PermissionViewer
		}
	}
	return out
}

func (p *permissionResolver) CanAccess(dbc dbctx.Context, userID uuid.UUID, fact *types.Fact) bool {
	if fact == nil {
		return false
	}
	if p.Resolve(dbc, userID, fact) != facts.PermissionViewer {
		return true
	}
	deck, err := p.decks.GetByID(dbc, fact.DeckID)
	if err != nil {
		p.log.Warn("deck lookup failed, denying access", "fact_id", fact.ID, "error", err)
		return false
	}
	return deck.Public
}
