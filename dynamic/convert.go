package dynamic

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/anirudhraja/protocodec/schema"
	"github.com/anirudhraja/protocodec/wire"
	"github.com/anirudhraja/protocodec/wkt"
)

// ToMap renders the set fields as a map keyed by field name. Enums become
// their value names when known, embedded dynamic messages become nested
// maps and map fields become map[any]any. Unknown fields are left out.
func (m *Message) ToMap() map[string]any {
	out := make(map[string]any, len(m.values))
	for _, num := range m.numbers() {
		fi := m.typ.field(num)
		if !m.has(fi) {
			continue
		}
		name := fi.name
		if m.typ.byNum[num] != fi {
			name = "[" + fi.name + "]"
		}
		out[name] = exportField(fi, m.values[num])
	}
	return out
}

func exportField(fi *fieldInfo, v any) any {
	switch {
	case fi.mapCodec != nil:
		src := v.(map[any]any)
		dst := make(map[any]any, len(src))
		for k, e := range src {
			dst[k] = exportElem(fi.elem, e)
		}
		return dst
	case fi.repeated:
		src := v.([]any)
		dst := make([]any, len(src))
		for i, e := range src {
			dst[i] = exportElem(fi.elem, e)
		}
		return dst
	}
	return exportElem(fi.elem, v)
}

func exportElem(et elemType, v any) any {
	switch et.kind {
	case schema.KindEnum:
		if name, ok := et.enum.NameOf(v.(int32)); ok {
			return name
		}
	case schema.KindMessage, schema.KindGroup:
		if dm, ok := v.(*Message); ok {
			return dm.ToMap()
		}
	}
	return v
}

// FromMap sets fields from a map keyed by field name or JSON name. Values
// are converted as by Set. On error the message is left partially filled.
func (m *Message) FromMap(values map[string]any) error {
	for name, v := range values {
		fi, err := m.lookup(name)
		if err != nil {
			return err
		}
		if v == nil {
			delete(m.values, fi.num)
			continue
		}
		if err := m.set(fi, v); err != nil {
			return err
		}
	}
	return nil
}

func (f *Factory) convertField(fi *fieldInfo, v any) (any, error) {
	switch {
	case fi.mapCodec != nil:
		return f.convertMap(fi, v)
	case fi.repeated:
		return f.convertList(fi.elem, v)
	}
	return f.convertElem(fi.elem, v)
}

func (f *Factory) convertList(et elemType, v any) ([]any, error) {
	if vs, ok := v.([]any); ok {
		out := make([]any, len(vs))
		for i, e := range vs {
			c, err := f.convertElem(et, e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		c, err := f.convertElem(et, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

func (f *Factory) convertMap(fi *fieldInfo, v any) (map[any]any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected map, got %T", v)
	}
	out := make(map[any]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := convertPrimitive(fi.key.prim, iter.Key().Interface())
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		e, err := f.convertElem(fi.elem, iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("map value for %v: %w", k, err)
		}
		out[k] = e
	}
	return out, nil
}

func (f *Factory) convertElem(et elemType, v any) (any, error) {
	switch et.kind {
	case schema.KindPrimitive, schema.KindWrapper:
		return convertPrimitive(et.prim, v)
	case schema.KindEnum:
		return convertEnum(et.enum, v)
	case schema.KindMessage, schema.KindGroup:
		return f.convertMessage(et.message, v)
	}
	return nil, fmt.Errorf("unknown type kind %q", et.kind)
}

func (f *Factory) convertMessage(fullName string, v any) (wire.Message, error) {
	if m, ok, err := convertWellKnown(fullName, v); ok {
		return m, err
	}
	switch t := v.(type) {
	case interface {
		wire.Message
		FullName() string
	}:
		if t.FullName() != fullName {
			return nil, fmt.Errorf("expected %s, got %s", fullName, t.FullName())
		}
		return t, nil
	case map[string]any:
		m, err := f.res.New(fullName)
		if err != nil {
			return nil, err
		}
		dm, ok := m.(*Message)
		if !ok {
			return nil, fmt.Errorf("%s is a Go type and cannot be built from a map", fullName)
		}
		if err := dm.FromMap(t); err != nil {
			return nil, err
		}
		return dm, nil
	}
	return nil, fmt.Errorf("expected message %s, got %T", fullName, v)
}

// convertWellKnown accepts the native forms of Timestamp and Duration: Go
// time values and the strings of the JSON mapping.
func convertWellKnown(fullName string, v any) (wire.Message, bool, error) {
	var ts wkt.Timestamp
	var dur wkt.Duration
	switch fullName {
	case ts.FullName():
		switch t := v.(type) {
		case time.Time:
			m := wkt.NewTimestamp(t)
			return m, true, m.CheckValid()
		case string:
			m, err := wkt.ParseTimestamp(t)
			return m, true, err
		}
	case dur.FullName():
		switch t := v.(type) {
		case time.Duration:
			return wkt.NewDuration(t), true, nil
		case string:
			m, err := wkt.ParseDuration(t)
			return m, true, err
		}
	}
	return nil, false, nil
}

func convertEnum(e *schema.Enum, v any) (int32, error) {
	if s, ok := v.(string); ok {
		if n, ok := e.ValueByName(s); ok {
			return n, nil
		}
	}
	n, err := coerceToInt64(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value %v for enum %s", v, e.Name)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("enum value %d out of range", n)
	}
	return int32(n), nil
}

func convertPrimitive(p schema.PrimitiveType, v any) (any, error) {
	switch p {
	case schema.TypeInt32, schema.TypeSint32, schema.TypeSfixed32:
		n, err := coerceToInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d overflows %s", n, p)
		}
		return int32(n), nil
	case schema.TypeInt64, schema.TypeSint64, schema.TypeSfixed64:
		return coerceToInt64(v)
	case schema.TypeUint32, schema.TypeFixed32:
		n, err := coerceToUint64(v)
		if err != nil {
			return nil, err
		}
		if n > math.MaxUint32 {
			return nil, fmt.Errorf("value %d overflows %s", n, p)
		}
		return uint32(n), nil
	case schema.TypeUint64, schema.TypeFixed64:
		return coerceToUint64(v)
	case schema.TypeDouble:
		return coerceToFloat64(v)
	case schema.TypeFloat:
		f, err := coerceToFloat64(v)
		return float32(f), err
	case schema.TypeBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			return strconv.ParseBool(t)
		}
		return nil, fmt.Errorf("expected bool, got %T", v)
	case schema.TypeString:
		switch t := v.(type) {
		case string:
			return t, nil
		case []byte:
			return string(t), nil
		}
		return nil, fmt.Errorf("expected string, got %T", v)
	case schema.TypeBytes:
		switch t := v.(type) {
		case []byte:
			return t, nil
		case string:
			return []byte(t), nil
		}
		return nil, fmt.Errorf("expected bytes, got %T", v)
	}
	return nil, fmt.Errorf("unknown primitive type %q", p)
}

// jsonName returns the field's JSON name, lowerCamelCase of the field name
// unless overridden.
func jsonName(fd *schema.Field) string {
	if fd.JsonName != "" {
		return fd.JsonName
	}
	return toLowerCamel(fd.Name)
}

// toLowerCamel converts snake_case to lowerCamelCase
func toLowerCamel(s string) string {
	if s == "" || !strings.Contains(s, "_") {
		if s != "" && s[0] >= 'A' && s[0] <= 'Z' {
			return string(s[0]-'A'+'a') + s[1:]
		}
		return s
	}
	out := make([]byte, 0, len(s))
	upperNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			upperNext = true
			continue
		}
		if len(out) == 0 {
			// first rune lowercased
			if c >= 'A' && c <= 'Z' {
				c = c - 'A' + 'a'
			}
		} else if upperNext && c >= 'a' && c <= 'z' {
			c = c - 'a' + 'A'
		}
		upperNext = false
		out = append(out, c)
	}
	return string(out)
}

var errNonInteger = errors.New("non-integer numeric for integer field")

// coerceToInt64 accepts Go integers, integral floats, json.Number and
// integer strings, including exponent forms that are integral.
func coerceToInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", t)
		}
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", t)
		}
		return int64(t), nil
	case json.Number:
		if iv, err := t.Int64(); err == nil {
			return iv, nil
		}
		return integralFloat(t.String())
	case float32:
		return coerceToInt64(float64(t))
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, errNonInteger
		}
		return int64(t), nil
	case string:
		if strings.ContainsAny(t, ".eE") {
			return integralFloat(t)
		}
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("expected integer-like, got %T", v)
	}
}

func integralFloat(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errNonInteger
	}
	return int64(f), nil
}

func coerceToUint64(v any) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case uint:
		return uint64(t), nil
	case uint32:
		return uint64(t), nil
	case uint16:
		return uint64(t), nil
	case uint8:
		return uint64(t), nil
	case json.Number:
		if uv, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return uv, nil
		}
		return coerceToUint64(t.String())
	case float64:
		if t < 0 || t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, fmt.Errorf("non-integer numeric for unsigned field")
		}
		return uint64(t), nil
	case string:
		if strings.ContainsAny(t, ".eE") {
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return 0, err
			}
			return coerceToUint64(f)
		}
		return strconv.ParseUint(t, 10, 64)
	}
	n, err := coerceToInt64(v)
	if err != nil {
		return 0, fmt.Errorf("expected unsigned-integer-like, got %T", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d for unsigned field", n)
	}
	return uint64(n), nil
}

func coerceToFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		switch t {
		case "NaN":
			return math.NaN(), nil
		case "Infinity", "inf":
			return math.Inf(1), nil
		case "-Infinity", "-inf":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(t, 64)
	}
	if n, err := coerceToInt64(v); err == nil {
		return float64(n), nil
	}
	if n, err := coerceToUint64(v); err == nil {
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}
