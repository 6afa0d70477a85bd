package vlm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// ErrParseFailed is returned when a model answer holds no JSON table,
// either bare or inside a markdown code fence.
var ErrParseFailed = errors.New("failed to parse table")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

type tableJSON struct {
	Header []string `json:"header"`
	Rows   [][]any  `json:"rows"`
}

// ParseTable extracts a table from a model answer. Non-string cells such
// as numbers are converted to their JSON text.
func ParseTable(content string) (*tablegraph.Table, error) {
	content = strings.TrimSpace(content)

	tj, err := decodeTable(content)
	if err != nil {
		m := jsonBlockRegex.FindStringSubmatch(content)
		if len(m) < 2 {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
		if tj, err = decodeTable(strings.TrimSpace(m[1])); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	t := &tablegraph.Table{Header: tj.Header, Rows: make([][]string, len(tj.Rows))}
	for i, row := range tj.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellText(cell)
		}
		t.Rows[i] = cells
	}
	return t, nil
}

func decodeTable(s string) (tableJSON, error) {
	var tj tableJSON
	if err := json.Unmarshal([]byte(s), &tj); err != nil {
		return tj, err
	}
	if tj.Header == nil {
		return tj, errors.New("missing header")
	}
	return tj, nil
}

func cellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		b, _ := json.Marshal(c)
		return string(b)
	}
}
