package books

import (
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/bookshelf/pkg/binder"
	"github.com/shishobooks/bookshelf/pkg/models"
)

type fieldType int

const (
	typeString fieldType = iota
	typeInteger
)

func (t fieldType) String() string {
	switch t {
	case typeInteger:
		return "integer"
	default:
		return "string"
	}
}

// accepts reports whether a decoded JSON value has this type. Integers must be
// whole numbers that fit the 32-bit INTEGER columns of both supported drivers.
func (t fieldType) accepts(value interface{}) bool {
	switch t {
	case typeInteger:
		_, ok := asInteger(value)
		return ok
	default:
		_, ok := value.(string)
		return ok
	}
}

// asInteger converts a decoded JSON number to an int64 when it is whole and
// within the int32 range.
func asInteger(value interface{}) (int64, bool) {
	var n int64
	switch v := value.(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			// Exponent or trailing zero fraction forms such as 2e3 or 2016.0.
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return asInteger(f)
		}
		n = i
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
			return 0, false
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, false
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	default:
		return 0, false
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return n, true
}

// numberHook hands mapstructure plain integers instead of json.Number values.
func numberHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	n, ok := data.(json.Number)
	if !ok || to.Kind() != reflect.Int {
		return data, nil
	}
	i, ok := asInteger(n)
	if !ok {
		return nil, errors.Errorf("%s is not a valid integer", n)
	}
	return i, nil
}

type field struct {
	name string
	typ  fieldType
}

// bookSchema is checked in order, so violations are reported in this order too.
var bookSchema = []field{
	{"isbn", typeString},
	{"amazon_url", typeString},
	{"author", typeString},
	{"language", typeString},
	{"pages", typeInteger},
	{"publisher", typeString},
	{"title", typeString},
	{"year", typeInteger},
}

// ValidateBookPayload checks that every book field is present with the right
// JSON type and returns one message per violation. Extra fields are ignored and
// empty strings are accepted.
func ValidateBookPayload(payload map[string]interface{}) []string {
	msgs := []string{}
	for _, f := range bookSchema {
		value, ok := payload[f.name]
		if !ok {
			msgs = append(msgs, binder.FormatRequired(f.name))
			continue
		}
		if !f.typ.accepts(value) {
			msgs = append(msgs, binder.FormatType(f.name, f.typ.String()))
		}
	}
	return msgs
}

// bookFromPayload converts a payload that passed ValidateBookPayload into a
// Book.
func bookFromPayload(payload map[string]interface{}) (*models.Book, error) {
	book := &models.Book{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     book,
		DecodeHook: numberHook,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := dec.Decode(payload); err != nil {
		return nil, errors.WithStack(err)
	}
	return book, nil
}
