package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/factdeck-backend/internal/http/response"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/services"
)

type DeckHandler struct {
	decks services.DeckService
}

func NewDeckHandler(decks services.DeckService) *DeckHandler {
	return &DeckHandler{decks: decks}
}

type createDeckBody struct {
	Title  string `json:"title"`
	Public bool   `json:"public"`
}

// POST /api/decks
func (h *DeckHandler) Create(c *gin.Context) {
	var body createDeckBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid deck body: %v", err))
		return
	}
	deck, err := h.decks.Create(c.Request.Context(), body.Title, body.Public)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, deck)
}

// GET /api/decks
func (h *DeckHandler) ListMine(c *gin.Context) {
	decks, err := h.decks.ListMine(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"decks": decks})
}

type addPossessorBody struct {
	UserID uuid.UUID `json:"user_id"`
}

// POST /api/decks/:id/users
func (h *DeckHandler) AddPossessor(c *gin.Context) {
	deckID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var body addPossessorBody
	if err := c.ShouldBindJSON(&body); err != nil || body.UserID == uuid.Nil {
		response.RespondAPIError(c, apierr.Validation("user_id is required"))
		return
	}
	if err := h.decks.AddPossessor(c.Request.Context(), deckID, body.UserID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
