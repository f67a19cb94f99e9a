package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/factdeck-backend/internal/data/repos"
	types "github.com/yungbote/factdeck-backend/internal/domain"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/factdeck-backend/internal/platform/dbctx"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

type DeckService interface {
	Create(ctx context.Context, title string, public bool) (*types.Deck, error)
	ListMine(ctx context.Context) ([]*types.Deck, error)
	AddPossessor(ctx context.Context, deckID, userID uuid.UUID) error
	// RequirePossession returns NotFound for a missing deck and Forbidden when userID does not possess it.
	RequirePossession(dbc dbctx.Context, userID, deckID uuid.UUID) (*types.Deck, error)
}

type deckService struct {
	db    *gorm.DB
	log   *logger.Logger
	decks repos.DeckRepo
	users repos.UserRepo
}

func NewDeckService(db *gorm.DB, log *logger.Logger, deckRepo repos.DeckRepo, userRepo repos.UserRepo) DeckService {
	return &deckService{
		db:    db,
		log:   log.With("service", "DeckService"),
		decks: deckRepo,
		users: userRepo,
	}
}

func (s *deckService) Create(ctx context.Context, title string, public bool) (*types.Deck, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.Validation("title is required")
	}
	var deck *types.Deck
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		created, err := s.decks.Create(dbc, &types.Deck{Title: title, Public: public, CreatedBy: userID})
		if err != nil {
			return fmt.Errorf("create deck: %w", err)
		}
		if _, err := s.decks.AddPossessor(dbc, created.ID, userID); err != nil {
			return fmt.Errorf("add creator possession: %w", err)
		}
		deck = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("deck created", "deck_id", deck.ID, "user_id", userID, "public", public)
	return deck, nil
}

func (s *deckService) ListMine(ctx context.Context) ([]*types.Deck, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	return s.decks.ListByPossessor(dbctx.Context{Ctx: ctx}, userID)
}

// AddPossessor lets a possessor share the deck, or lets anyone join a public deck themself.
func (s *deckService) AddPossessor(ctx context.Context, deckID, userID uuid.UUID) error {
	caller := ctxutil.UserID(ctx)
	if caller == uuid.Nil {
		return apierr.Unauthorized("not authenticated")
	}
	dbc := dbctx.Context{Ctx: ctx}
	deck, err := s.loadDeck(dbc, deckID)
	if err != nil {
		return err
	}
	possesses, err := s.decks.IsPossessor(dbc, caller, deckID)
	if err != nil {
		return fmt.Errorf("possession lookup: %w", err)
	}
	if !possesses && !(deck.Public && userID == caller) {
		return apierr.Forbidden("you do not possess deck %s", deckID)
	}
	users, err := s.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return apierr.NotFound("user %s not found", userID)
	}
	added, err := s.decks.AddPossessor(dbc, deckID, userID)
	if err != nil {
		return fmt.Errorf("add possessor: %w", err)
	}
	if added {
		s.log.Info("deck possessor added", "deck_id", deckID, "user_id", userID)
	}
	return nil
}

func (s *deckService) RequirePossession(dbc dbctx.Context, userID, deckID uuid.UUID) (*types.Deck, error) {
	deck, err := s.loadDeck(dbc, deckID)
	if err != nil {
		return nil, err
	}
	ok, err := s.decks.IsPossessor(dbc, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("possession lookup: %w", err)
	}
	if !ok {
		return nil, apierr.Forbidden("you do not possess deck %s", deckID)
	}
	return deck, nil
}

func (s *deckService) loadDeck(dbc dbctx.Context, deckID uuid.UUID) (*types.Deck, error) {
	deck, err := s.decks.GetByID(dbc, deckID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apierr.NotFound("deck %s not found", deckID)
	}
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	return deck, nil
}
