// Package parsers turns uploaded fact files into records for the normal create path.
package parsers

import (
	"io"
	"strings"
)

const (
	FormatTxt  = "txt"
	FormatJSON = "json"
)

const (
	FieldText        = "text"
	FieldAnswer      = "answer"
	FieldCategory    = "category"
	FieldIdentifier  = "identifier"
	FieldDeckID      = "deck_id"
	FieldAnswerLines = "answer_lines"
)

// Record is one fact as read from a file, before validation.
type Record struct {
	Line        int            `json:"line"`
	Text        string         `json:"text"`
	Answer      string         `json:"answer"`
	Category    string         `json:"category,omitempty"`
	Identifier  string         `json:"identifier,omitempty"`
	DeckID      string         `json:"deck_id,omitempty"`
	AnswerLines []string       `json:"answer_lines,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Options carries the field mapping for delimited text. JSON ignores it.
type Options struct {
	Delimiter string
	Headers   []string
}

type Parser interface {
	Parse(r io.Reader, opts Options) ([]Record, error)
}

// ForFormat returns nil for unknown formats.
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case FormatTxt, "csv", "tsv":
		return &TxtParser{}
	case FormatJSON:
		return &JSONParser{}
	default:
		return nil
	}
}

// FormatForContentType maps an upload content type to a format, or "" when unsupported.
func FormatForContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "text/plain", "text/csv":
		return FormatTxt
	case "application/json":
		return FormatJSON
	default:
		return ""
	}
}
