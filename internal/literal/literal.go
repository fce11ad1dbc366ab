// Package literal coerces lexical literal text into typed document values.
//
// Coerce is total: text that does not parse as its declared kind falls back
// to a String holding the raw text, so a literal never aborts a translation.
package literal

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/odataq/internal/doc"
)

// Kind is the declared type of a literal, named after the OData EDM
// primitive types.
type Kind int

const (
	Null Kind = iota
	String
	Boolean
	Byte
	SByte
	Int16
	Int32
	Int64
	Decimal
	Double
	Single
	Date
	DateTimeOffset
	TimeOfDay
	Duration
	Guid
)

var kindNames = map[Kind]string{
	Null:           "null",
	String:         "Edm.String",
	Boolean:        "Edm.Boolean",
	Byte:           "Edm.Byte",
	SByte:          "Edm.SByte",
	Int16:          "Edm.Int16",
	Int32:          "Edm.Int32",
	Int64:          "Edm.Int64",
	Decimal:        "Edm.Decimal",
	Double:         "Edm.Double",
	Single:         "Edm.Single",
	Date:           "Edm.Date",
	DateTimeOffset: "Edm.DateTimeOffset",
	TimeOfDay:      "Edm.TimeOfDay",
	Duration:       "Edm.Duration",
	Guid:           "Edm.Guid",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Edm.Unknown"
}

// Coerce converts raw literal text into a document value of the declared kind.
func Coerce(raw string, kind Kind) doc.Value {
	switch kind {
	case Null:
		return doc.Null{}
	case String:
		return doc.String(unquote(raw))
	case Boolean:
		switch strings.ToLower(raw) {
		case "true":
			return doc.Bool(true)
		case "false":
			return doc.Bool(false)
		}
	case Byte, SByte, Int16, Int32, Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return doc.Int(n)
		}
	case Decimal:
		if d, err := doc.NewDecimal(strings.TrimRight(raw, "mM")); err == nil {
			return d
		}
	case Double, Single:
		if f, ok := parseFloat(raw); ok {
			return doc.Float(f)
		}
	case Date:
		if t, err := time.Parse(time.DateOnly, raw); err == nil {
			return doc.NewTime(t)
		}
	case DateTimeOffset:
		if t, ok := parseDateTime(raw); ok {
			return doc.NewTime(t)
		}
	case Guid:
		if id, err := uuid.Parse(raw); err == nil {
			return doc.UUID(id)
		}
	case TimeOfDay, Duration:
		return doc.String(unquoteDuration(raw))
	}
	return doc.String(raw)
}

// unquote strips single quotes and collapses the '' escape.
func unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		raw = raw[1 : len(raw)-1]
	}
	return strings.ReplaceAll(raw, "''", "'")
}

// unquoteDuration strips the duration'...' wrapper.
func unquoteDuration(raw string) string {
	if len(raw) > len("duration") && strings.EqualFold(raw[:len("duration")], "duration") {
		return unquote(raw[len("duration"):])
	}
	return raw
}

func parseFloat(raw string) (float64, bool) {
	switch raw {
	case "INF":
		return math.Inf(1), true
	case "-INF":
		return math.Inf(-1), true
	case "NaN":
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(strings.TrimRight(raw, "dDfF"), 64)
	return f, err == nil
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
}

func parseDateTime(raw string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	guidPattern     = regexp.MustCompile(`^[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:\d{2})?$`)
	timePattern     = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`)
	intPattern      = regexp.MustCompile(`^[+-]?\d+$`)
	decimalPattern  = regexp.MustCompile(`^[+-]?\d+\.\d+[mM]?$`)
	doublePattern   = regexp.MustCompile(`^[+-]?\d+(\.\d+)?[eE][+-]?\d+$`)
)

// Classify infers the kind of a literal from its lexical shape.
// Integers that overflow int32 are Int64.
func Classify(raw string) Kind {
	lower := strings.ToLower(raw)
	switch {
	case raw == "null":
		return Null
	case lower == "true" || lower == "false":
		return Boolean
	case strings.HasPrefix(raw, "'"):
		return String
	case strings.HasPrefix(lower, "duration'"):
		return Duration
	case raw == "INF" || raw == "-INF" || raw == "NaN":
		return Double
	case guidPattern.MatchString(raw):
		return Guid
	case datePattern.MatchString(raw):
		return Date
	case dateTimePattern.MatchString(raw):
		return DateTimeOffset
	case timePattern.MatchString(raw):
		return TimeOfDay
	case intPattern.MatchString(raw):
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return Int64
		}
		return Int32
	case decimalPattern.MatchString(raw):
		return Decimal
	case doublePattern.MatchString(raw):
		return Double
	}
	return String
}
