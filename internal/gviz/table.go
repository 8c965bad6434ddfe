package gviz

import (
	"bytes"
	"strings"

	"github.com/go-json-experiment/json"
)

// Column is one declared column of a sheet table
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Cell is a single table value. V holds the raw scalar, F the sheet's formatted text.
type Cell struct {
	V any    `json:"v"`
	F string `json:"f"`
}

// Row holds position-correlated cells; missing cells are nil entries
type Row struct {
	C []*Cell `json:"c"`
}

// Table is the raw tabular payload of one sheet tab
type Table struct {
	Cols []Column `json:"cols"`
	Rows []Row    `json:"rows"`
}

// Headers returns the column labels in declared order
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Cols))
	for i, col := range t.Cols {
		headers[i] = col.Label
	}
	return headers
}

// Value returns the raw value at (row, col), or nil when the cell is absent
func (t *Table) Value(row, col int) any {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return nil
	}
	cells := t.Rows[row].C
	if col >= len(cells) || cells[col] == nil {
		return nil
	}
	return cells[col].V
}

type envelope struct {
	Status string `json:"status"`
	Errors []struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"errors"`
	Table *Table `json:"table"`

	// Some exports put cols/rows at the top level instead of under "table".
	Cols []Column `json:"cols"`
	Rows []Row    `json:"rows"`
}

// ParseEnvelope extracts the table from a call-wrapped response body such as
// `/*O_o*/ google.visualization.Query.setResponse({...});`. Only the span from
// the first '{' to the last '}' is decoded.
func ParseEnvelope(body []byte) (*Table, error) {
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, &EnvelopeError{Reason: "no JSON object in response"}
	}

	var env envelope
	if err := json.Unmarshal(body[start:end+1], &env); err != nil {
		return nil, &EnvelopeError{Reason: "decoding embedded JSON", Err: err}
	}

	if strings.EqualFold(env.Status, "error") {
		msg := "source reported an error"
		if len(env.Errors) > 0 {
			msg = env.Errors[0].Message
			if msg == "" {
				msg = env.Errors[0].Reason
			}
		}
		return nil, &EnvelopeError{Reason: msg}
	}

	if env.Table != nil {
		return env.Table, nil
	}
	if env.Cols == nil && env.Rows == nil {
		return nil, &EnvelopeError{Reason: "response has no table"}
	}
	return &Table{Cols: env.Cols, Rows: env.Rows}, nil
}
