package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser reads an array of fact objects. Line is the 1-based array index.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, _ Options) ([]Record, error) {
	var out []Record
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	for i := range out {
		out[i].Line = i + 1
	}
	return out, nil
}
