package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const answerLineSeparator = "|"

var DefaultHeaders = []string{FieldText, FieldAnswer}

// TxtParser reads delimited rows without a header line. Column meaning comes from Options.Headers.
type TxtParser struct{}

func (p *TxtParser) Parse(r io.Reader, opts Options) ([]Record, error) {
	delim, err := delimiterRune(opts.Delimiter)
	if err != nil {
		return nil, err
	}
	headers := opts.Headers
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	if err := validateHeaders(headers); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var out []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("line %d: %w", perr.StartLine, perr.Err)
			}
			return nil, err
		}
		if isBlank(row) {
			continue
		}
		// csv skips blank lines and joins quoted multi-line fields, so count from the reader.
		line, _ := reader.FieldPos(0)
		out = append(out, p.parseRow(row, headers, line))
	}
	return out, nil
}

func (p *TxtParser) parseRow(row []string, headers []string, lineNum int) Record {
	rec := Record{Line: lineNum}
	for i, h := range headers {
		if i >= len(row) {
			break
		}
		val := strings.TrimSpace(row[i])
		switch h {
		case FieldText:
			rec.Text = val
		case FieldAnswer:
			rec.Answer = val
		case FieldCategory:
			rec.Category = val
		case FieldIdentifier:
			rec.Identifier = val
		case FieldDeckID:
			rec.DeckID = val
		case FieldAnswerLines:
			for _, part := range strings.Split(val, answerLineSeparator) {
				if part = strings.TrimSpace(part); part != "" {
					rec.AnswerLines = append(rec.AnswerLines, part)
				}
			}
		default:
			if rec.Extra == nil {
				rec.Extra = map[string]any{}
			}
			rec.Extra[h] = val
		}
	}
	return rec
}

func delimiterRune(d string) (rune, error) {
	switch d {
	case "", `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(d)
	if r == utf8.RuneError || size != len(d) {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", d)
	}
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", d)
	}
	return r, nil
}

func validateHeaders(headers []string) error {
	seen := map[string]bool{}
	for _, h := range headers {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("empty header name")
		}
		if seen[h] {
			return fmt.Errorf("duplicate header %q", h)
		}
		seen[h] = true
	}
	if !seen[FieldText] || !seen[FieldAnswer] {
		return fmt.Errorf("headers must include %q and %q", FieldText, FieldAnswer)
	}
	return nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
