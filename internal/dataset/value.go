package dataset

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind discriminates the cell types a column can hold.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindTime
)

// Value is a single table cell. Exactly one of the payload fields is
// meaningful, selected by Kind; a KindNull value carries no payload.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	T    time.Time
}

// Null returns the null cell.
func Null() Value {
	return Value{Kind: KindNull}
}

// Text returns a text cell.
func Text(s string) Value {
	return Value{Kind: KindText, Str: s}
}

// Number returns a numeric cell.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Date returns a time cell.
func Date(t time.Time) Value {
	return Value{Kind: KindTime, T: t}
}

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// AsNumber returns the numeric payload. Text cells that parse as a
// number are converted; everything else reports ok=false.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindText:
		return ParseNumber(v.Str)
	default:
		return 0, false
	}
}

// Equal reports full equality of two cells, used for duplicate-row
// detection. Times compare by instant.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindText:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindTime:
		return v.T.Equal(o.T)
	}
	return false
}

// String renders the cell for delimited export. Nulls render empty,
// times as ISO dates, numbers without trailing zeros.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindTime:
		return v.T.Format("2006-01-02")
	default:
		return ""
	}
}

// missingTokens are cell contents treated as null on load, matching the
// usual conventions of the source extracts.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"nan":  true,
	"none": true,
	"-":    true,
}

// IsMissingToken reports whether a raw cell string denotes a missing value.
func IsMissingToken(s string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(s))]
}

// ParseNumber parses a cell as a float, tolerating surrounding space.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dateLayouts are tried in order when parsing date and month columns.
// Month-granularity values parse to the first day of the month.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan-2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
	"01/2006",
}

// ParseDate parses a cell as a date using the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
