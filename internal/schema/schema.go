// Package schema maps a sheet's free-form column headers onto the fixed set
// of usage-log fields.
package schema

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Field is a semantic column of the usage log
type Field string

const (
	Timestamp  Field = "timestamp"
	RoomNumber Field = "room_number"
	PowerWatts Field = "power_watts"
	KWhUsage   Field = "kwh_usage"
	CostBaht   Field = "cost_baht"
	Level      Field = "level"
	AmountPaid Field = "amount_paid"
)

// Fields lists every field the resolver knows about
var Fields = []Field{Timestamp, RoomNumber, PowerWatts, KWhUsage, CostBaht, Level, AmountPaid}

// Required fields trigger a diagnostic when they cannot be resolved
var Required = []Field{Timestamp, KWhUsage, CostBaht}

// synonyms are tried in order after an exact match fails. Entries are already normalized.
var synonyms = map[Field][]string{
	Timestamp:  {"timestamp", "datetime", "time", "date", "วันที่", "เวลา"},
	RoomNumber: {"roomnumber", "roomno", "room", "ห้อง"},
	PowerWatts: {"powerwatts", "power", "watts", "watt"},
	KWhUsage:   {"kwhusage", "kwh", "usage", "energy"},
	CostBaht:   {"costbaht", "cost", "baht", "price"},
	Level:      {"level", "status", "severity"},
	AmountPaid: {"amountpaid", "paid", "payment", "amount"},
}

// positions is the fixed column layout used when headers give no hint
var positions = map[Field]int{
	Timestamp:  0,
	RoomNumber: 1,
	PowerWatts: 2,
	KWhUsage:   3,
	CostBaht:   4,
}

// Strategy records how a field was resolved
type Strategy int

const (
	Unresolved Strategy = iota
	Exact
	Synonym
	Positional
)

func (s Strategy) String() string {
	switch s {
	case Exact:
		return "exact"
	case Synonym:
		return "synonym"
	case Positional:
		return "positional"
	default:
		return "unresolved"
	}
}

type resolution struct {
	col      int
	strategy Strategy
}

// Index maps fields to zero-based column positions
type Index struct {
	columns  int
	resolved map[Field]resolution
}

// Lookup returns the column for f, or false when f is unresolved
func (ix Index) Lookup(f Field) (int, bool) {
	r, ok := ix.resolved[f]
	if !ok {
		return -1, false
	}
	return r.col, true
}

// Strategy reports which rule resolved f
func (ix Index) Strategy(f Field) Strategy {
	return ix.resolved[f].strategy
}

// Columns is the header count the index was built from
func (ix Index) Columns() int {
	return ix.columns
}

// Unresolved returns the given fields that have no column
func (ix Index) Unresolved(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if _, ok := ix.resolved[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// LogUnresolved emits a warning when required fields have no column.
// Processing continues either way; the missing values are defaulted.
func (ix Index) LogUnresolved(logger zerolog.Logger, table string) {
	missing := ix.Unresolved(Required...)
	if len(missing) == 0 {
		return
	}
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}
	logger.Warn().
		Str("table", table).
		Strs("fields", names).
		Int("columns", ix.columns).
		Msg("Required columns not found; values will default")
}

// Normalize trims, lowercases and strips all whitespace from a header
func Normalize(header string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, header)
}

// Resolve builds an Index from a header row. It never fails: fields that
// match nothing are left unresolved.
func Resolve(headers []string) Index {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	ix := Index{columns: len(headers), resolved: make(map[Field]resolution)}
	claimed := make(map[int]bool)

	// Name-based matches first, so the positional pass can see which columns are taken
	for _, f := range Fields {
		if col := find(normalized, string(f), claimed); col >= 0 {
			ix.resolved[f] = resolution{col: col, strategy: Exact}
			claimed[col] = true
		}
	}
	for _, f := range Fields {
		if _, ok := ix.resolved[f]; ok {
			continue
		}
		for _, syn := range synonyms[f] {
			if col := find(normalized, syn, claimed); col >= 0 {
				ix.resolved[f] = resolution{col: col, strategy: Synonym}
				claimed[col] = true
				break
			}
		}
	}

	for _, f := range Fields {
		pos, ok := positions[f]
		if !ok {
			continue
		}
		if _, done := ix.resolved[f]; done {
			continue
		}
		if pos < len(headers) && !claimed[pos] {
			ix.resolved[f] = resolution{col: pos, strategy: Positional}
		}
	}

	return ix
}

// find returns the first unclaimed column named s
func find(list []string, s string, claimed map[int]bool) int {
	for i, v := range list {
		if v == s && !claimed[i] {
			return i
		}
	}
	return -1
}
