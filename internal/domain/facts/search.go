package facts

import "github.com/google/uuid"

const DefaultLimit = 100

// Search is the structured filter set for browsing facts. Nil pointers are "not requested".
type Search struct {
	All        string      `json:"all,omitempty"`
	Text       string      `json:"text,omitempty"`
	Answer     string      `json:"answer,omitempty"`
	Category   string      `json:"category,omitempty"`
	Identifier string      `json:"identifier,omitempty"`
	DeckID     *uuid.UUID  `json:"deck_id,omitempty"`
	DeckIDs    []uuid.UUID `json:"deck_ids,omitempty"`
	Marked     *bool       `json:"marked,omitempty"`
	Suspended  *bool       `json:"suspended,omitempty"`
	Reported   *bool       `json:"reported,omitempty"`
	Skip       int         `json:"skip"`
	Limit      int         `json:"limit"`
	Randomize  bool        `json:"randomize"`
	Studyable  bool        `json:"studyable"`
}

// Normalize fills defaults and the derived studyable tag.
func (s Search) Normalize() Search {
	if s.Limit == 0 {
		s.Limit = DefaultLimit
	}
	s.Studyable = isTrue(s.Suspended) && isTrue(s.Reported)
	return s
}

func isTrue(b *bool) bool { return b != nil && *b }
