package parsers

import (
	"slices"
	"strings"
	"testing"
)

func TestForFormat(t *testing.T) {
	if _, ok := ForFormat("txt").(*TxtParser); !ok {
		t.Fatalf("txt: got %T", ForFormat("txt"))
	}
	if _, ok := ForFormat("CSV").(*TxtParser); !ok {
		t.Fatalf("CSV: got %T", ForFormat("CSV"))
	}
	if _, ok := ForFormat("json").(*JSONParser); !ok {
		t.Fatalf("json: got %T", ForFormat("json"))
	}
	if p := ForFormat("xml"); p != nil {
		t.Fatalf("xml: got %T", p)
	}
}

func TestFormatForContentType(t *testing.T) {
	cases := map[string]string{
		"text/plain; charset=utf-8": FormatTxt,
		"text/csv":                  FormatTxt,
		"application/json":          FormatJSON,
		"image/png":                 "",
		"":                          "",
	}
	for ct, want := range cases {
		if got := FormatForContentType(ct); got != want {
			t.Fatalf("FormatForContentType(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestTxtParserDefaultsToTabTextAnswer(t *testing.T) {
	in := "2+2\t4\n\nCapital of France\tParis\n"
	recs, err := ForFormat(FormatTxt).Parse(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	r := recs[0]
	if r.Line != 1 || r.Text != "2+2" || r.Answer != "4" || len(r.AnswerLines) != 0 || len(r.Extra) != 0 {
		t.Fatalf("first record: %+v", r)
	}
	if recs[1].Line != 3 || recs[1].Answer != "Paris" {
		t.Fatalf("second record: %+v", recs[1])
	}
}

func TestTxtParserLinesFollowSource(t *testing.T) {
	in := "a\t1\n\n\nb\t2\n\"multi\nline\"\t3\nc\t4\n"
	recs, err := (&TxtParser{}).Parse(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var lines []int
	for _, r := range recs {
		lines = append(lines, r.Line)
	}
	if !slices.Equal(lines, []int{1, 4, 5, 7}) {
		t.Fatalf("lines: got %v want [1 4 5 7]", lines)
	}
	if recs[2].Text != "multi\nline" {
		t.Fatalf("quoted field: got %q", recs[2].Text)
	}
}

func TestTxtParserCustomHeaders(t *testing.T) {
	in := "geo-1,Paris,Capital of France,Geography,paris|city of light,easy\n"
	recs, err := (&TxtParser{}).Parse(strings.NewReader(in), Options{
		Delimiter: ",",
		Headers:   []string{"identifier", "answer", "text", "category", "answer_lines", "difficulty"},
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.Identifier != "geo-1" || r.Text != "Capital of France" || r.Category != "Geography" {
		t.Fatalf("record: %+v", r)
	}
	if !slices.Equal(r.AnswerLines, []string{"paris", "city of light"}) {
		t.Fatalf("answer lines: %v", r.AnswerLines)
	}
	if len(r.Extra) != 1 || r.Extra["difficulty"] != "easy" {
		t.Fatalf("extra: %v", r.Extra)
	}
}

func TestTxtParserShortRowLeavesFieldsEmpty(t *testing.T) {
	recs, err := (&TxtParser{}).Parse(strings.NewReader("only text\n"), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 || recs[0].Text != "only text" || recs[0].Answer != "" {
		t.Fatalf("records: %+v", recs)
	}
}

func TestTxtParserRejectsBadOptions(t *testing.T) {
	cases := map[string]Options{
		"multi-char delimiter":  {Delimiter: "::"},
		"no answer column":      {Headers: []string{"text", "category"}},
		"duplicate text column": {Headers: []string{"text", "answer", "text"}},
	}
	for name, opts := range cases {
		if _, err := (&TxtParser{}).Parse(strings.NewReader("a\tb"), opts); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestJSONParser(t *testing.T) {
	in := `[
		{"text": "2+2", "answer": "4", "answer_lines": ["4", "four"]},
		{"text": "Largest planet", "answer": "Jupiter", "deck_id": "6c0f0d1e-0000-4000-8000-000000000001", "extra": {"src": "nasa"}}
	]`
	recs, err := ForFormat(FormatJSON).Parse(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Line != 1 || !slices.Equal(recs[0].AnswerLines, []string{"4", "four"}) {
		t.Fatalf("first record: %+v", recs[0])
	}
	if recs[1].Line != 2 || recs[1].Extra["src"] != "nasa" {
		t.Fatalf("second record: %+v", recs[1])
	}

	if _, err := (&JSONParser{}).Parse(strings.NewReader(`{"text": "not an array"}`), Options{}); err == nil {
		t.Fatalf("object body accepted")
	}
}
