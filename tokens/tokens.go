// Package tokens implements the style token store - the only legal origin of
// spacing, color, font and indentation facet values used during document
// generation.
package tokens

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ParseError is returned when a token value cannot be converted to the
// requested type. A corrupt token indicates an authoring bug upstream, so
// this is the one fatal token condition.
type ParseError struct {
	Key   string
	Value string
	Kind  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed token %q: %q is not a valid %s", e.Key, e.Value, e.Kind)
}

// Set holds loaded token values. Values are kept as strings and parsed lazily
// into the requested type. Missing keys are never fatal - the caller supplied
// default is used and a warning is logged once per key per run.
type Set struct {
	values map[string]string
	log    *zap.Logger
	warned map[string]struct{}
}

// Load wraps a flat key to string mapping into a token set. The mapping comes
// from a single configuration artifact and is treated as read-only.
func Load(values map[string]string, log *zap.Logger) *Set {
	return &Set{
		values: values,
		log:    log.Named("tokens"),
		warned: make(map[string]struct{}),
	}
}

func (s *Set) lookup(key, def string) (string, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	if _, done := s.warned[key]; !done {
		s.warned[key] = struct{}{}
		s.log.Warn("Token not set, using default", zap.String("token", key), zap.String("default", def))
	}
	return def, false
}

// String returns raw token value or default when absent.
func (s *Set) String(key, def string) string {
	v, _ := s.lookup(key, def)
	return v
}

// Bool parses token as boolean.
func (s *Set) Bool(key string, def bool) (bool, error) {
	v, ok := s.lookup(key, strconv.FormatBool(def))
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, &ParseError{Key: key, Value: v, Kind: "boolean"}
	}
	return b, nil
}

// Pt parses token as a point value.
func (s *Set) Pt(key string, def float64) (float64, error) {
	return s.number(key, def, "point value")
}

// Cm parses token as a centimeter value.
func (s *Set) Cm(key string, def float64) (float64, error) {
	return s.number(key, def, "centimeter value")
}

func (s *Set) number(key string, def float64, kind string) (float64, error) {
	v, ok := s.lookup(key, strconv.FormatFloat(def, 'f', -1, 64))
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Key: key, Value: v, Kind: kind}
	}
	return f, nil
}

// Color parses token as an RRGGBB hex color. Leading '#' is tolerated, the
// returned value never carries it.
func (s *Set) Color(key, def string) (string, error) {
	v, ok := s.lookup(key, def)
	if !ok {
		return strings.TrimPrefix(def, "#"), nil
	}
	c := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(c) != 6 {
		return "", &ParseError{Key: key, Value: v, Kind: "RRGGBB color"}
	}
	if _, err := strconv.ParseUint(c, 16, 32); err != nil {
		return "", &ParseError{Key: key, Value: v, Kind: "RRGGBB color"}
	}
	return strings.ToUpper(c), nil
}
