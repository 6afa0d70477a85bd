package tablegraph

import "slices"

// Image is an encoded document image.
type Image struct {
	Data []byte `json:"data"`
	// Format is the encoding name reported by image.Decode ("png", "jpeg").
	Format string `json:"format,omitempty"`
}

// Table is a parsed table: one header row and any number of body rows.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// NumRows returns the number of body rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the header width.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Header)
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = slices.Clone(r)
	}
	return &Table{Header: slices.Clone(t.Header), Rows: rows}
}

// Extraction is what the VLM agent returns for one image.
type Extraction struct {
	Table *Table `json:"table"`
	// Raw is the unparsed model output, kept for debugging.
	Raw string `json:"raw,omitempty"`
}

// Report is the quality-check summary of an extracted table.
type Report struct {
	Rows       int `json:"rows"`
	Columns    int `json:"columns"`
	EmptyCells int `json:"empty_cells"`
	// FillRatio is the share of non-empty body cells.
	FillRatio float64 `json:"fill_ratio"`
	// NumericRatio is the share of columns whose cells all parse as numbers.
	NumericRatio float64  `json:"numeric_ratio"`
	Score        float64  `json:"score"`
	Issues       []string `json:"issues,omitempty"`
}

// State is carried through one pipeline run.
//
// Each stage receives its own copy and returns the updated copy. Table is
// nil until the vlm stage runs and Valid is false until validate runs.
type State struct {
	RunID  string `json:"run_id"`
	Source string `json:"source,omitempty"`

	Image Image  `json:"image"`
	Table *Table `json:"table,omitempty"`
	Valid bool   `json:"valid"`

	// Attempts counts retry stage visits.
	Attempts int `json:"attempts"`
	// Stored is set once the table has been persisted.
	Stored bool `json:"stored"`
}
