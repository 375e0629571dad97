// Package validate checks flat named-field requests against declared
// constraints and decodes them into typed structs.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Kind is the value type a field must carry.
type Kind int

// Field kinds.
const (
	KindNumber Kind = iota
	KindInteger
	KindString
)

// Field declares one required field and its constraint.
type Field struct {
	Name     string
	Kind     Kind
	Min      float64
	Max      float64
	Enum     []string
	NonEmpty bool
}

// Number declares a numeric field in [min, max]. Use math.Inf for open ends.
func Number(name string, min, max float64) Field {
	return Field{Name: name, Kind: KindNumber, Min: min, Max: max}
}

// Integer declares an integral field in [min, max].
func Integer(name string, min, max float64) Field {
	return Field{Name: name, Kind: KindInteger, Min: min, Max: max}
}

// MaxInteger caps integral fields declared with AtLeast so every accepted
// value fits the int fields requests decode into.
const MaxInteger = math.MaxInt32

// AtLeast declares an integral field in [min, MaxInteger].
func AtLeast(name string, min float64) Field {
	return Integer(name, min, MaxInteger)
}

// OneOf declares a string field restricted to values.
func OneOf(name string, values ...string) Field {
	return Field{Name: name, Kind: KindString, Enum: values}
}

// NonEmpty declares a string field that must contain at least one character.
func NonEmpty(name string) Field {
	return Field{Name: name, Kind: KindString, NonEmpty: true}
}

// Text declares an unconstrained string field.
func Text(name string) Field {
	return Field{Name: name, Kind: KindString}
}

// Schema is an ordered set of required fields.
type Schema struct {
	name   string
	fields []Field
}

// NewSchema builds a schema. Field order determines violation order.
func NewSchema(name string, fields ...Field) *Schema {
	return &Schema{name: name, fields: slices.Clone(fields)}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the declared field names in order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Validate checks every declared field of in. Unknown keys are ignored.
// It returns a *Error listing all violations, or nil.
func (s *Schema) Validate(in map[string]any) error {
	var violations []Violation
	for _, f := range s.fields {
		raw, ok := in[f.Name]
		if !ok || raw == nil {
			violations = append(violations, Violation{Field: f.Name, Constraint: "is required"})
			continue
		}
		if c := f.check(raw); c != "" {
			violations = append(violations, Violation{Field: f.Name, Constraint: c})
		}
	}
	if len(violations) > 0 {
		return &Error{Schema: s.name, Violations: violations}
	}
	return nil
}

// Decode validates in and, when it passes, decodes it into out (a pointer to
// a struct whose json tags name the fields).
func (s *Schema) Decode(in map[string]any, out any) error {
	if err := s.Validate(in); err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		DecodeHook: jsonNumberHook,
	})
	if err != nil {
		return fmt.Errorf("decode %s request: %w", s.name, err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode %s request: %w", s.name, err)
	}
	return nil
}

func (f Field) check(raw any) string {
	if f.Kind == KindString {
		s, ok := raw.(string)
		switch {
		case !ok:
			return "must be a string"
		case f.NonEmpty && s == "":
			return "must not be empty"
		case len(f.Enum) > 0 && !slices.Contains(f.Enum, s):
			return fmt.Sprintf("must be one of %s", strings.Join(f.Enum, ", "))
		}
		return ""
	}

	v, ok := toFloat(raw)
	switch {
	case !ok || math.IsNaN(v) || math.IsInf(v, 0):
		return "must be a number"
	case f.Kind == KindInteger && v != math.Trunc(v):
		return "must be an integer"
	case v < f.Min:
		return "must be >= " + formatBound(f.Min)
	case v > f.Max:
		return "must be <= " + formatBound(f.Max)
	}
	return ""
}

func formatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// jsonNumberHook lets requests decoded with UseNumber reach numeric fields.
func jsonNumberHook(_ reflect.Type, _ reflect.Type, data any) (any, error) {
	if n, ok := data.(json.Number); ok {
		return n.Float64()
	}
	return data, nil
}
