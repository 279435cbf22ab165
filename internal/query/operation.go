package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Operation is a Descriptor bound to the Go type T its response data decodes
// into.
type Operation[T any] struct {
	*Descriptor
}

// Define validates text against s and binds its response shape to T. Any
// disagreement between the document, the schema and T is returned as an
// error here, before a request is ever sent.
func Define[T any](s *Schema, name, text string) (*Operation[T], error) {
	d, err := newDescriptor(s, name, text)
	if err != nil {
		return nil, err
	}
	if err := bindType(name, "", reflect.TypeFor[T](), d.shape); err != nil {
		return nil, err
	}
	return &Operation[T]{Descriptor: d}, nil
}

// MustDefine is like Define but panics on error. It is meant for
// package-level operation variables.
func MustDefine[T any](s *Schema, name, text string) *Operation[T] {
	op, err := Define[T](s, name, text)
	if err != nil {
		panic(err)
	}
	return op
}

// Decode checks data against the declared shape and decodes it into a new T.
// A missing or null non-null field is reported as *SchemaMismatchError
// instead of surfacing later as a zero value.
func (o *Operation[T]) Decode(data json.RawMessage) (*T, error) {
	var generic any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("query: %s: decode data: %w", o.name, err)
		}
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return nil, mismatch(o.name, "", "response data is %s, want object", describe(generic))
	}
	if err := checkObject(o.name, "", obj, o.shape); err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			return nil, mismatch(o.name, ute.Field, "%s value cannot be decoded into %s", ute.Value, ute.Type)
		}
		return nil, fmt.Errorf("query: %s: decode data: %w", o.name, err)
	}
	return &out, nil
}

func checkObject(op, path string, obj map[string]any, shape []Field) error {
	for _, f := range shape {
		p := joinPath(path, f.Key)
		v, ok := obj[f.Key]
		if !ok {
			return mismatch(op, p, "missing from response")
		}
		if err := checkValue(op, p, v, f, f.NonNull, f.List); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(op, path string, v any, f Field, nonNull, list bool) error {
	if v == nil {
		if nonNull {
			return mismatch(op, path, "null for non-null %s", f.Type)
		}
		return nil
	}
	if list {
		items, ok := v.([]any)
		if !ok {
			return mismatch(op, path, "got %s, want list", describe(v))
		}
		for i, item := range items {
			if err := checkValue(op, fmt.Sprintf("%s[%d]", path, i), item, f, f.ElemNonNull, false); err != nil {
				return err
			}
		}
		return nil
	}
	if f.IsObject() {
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(op, path, "got %s, want %s object", describe(v), f.Type)
		}
		return checkObject(op, path, obj, f.Selections)
	}
	switch v.(type) {
	case map[string]any, []any:
		return mismatch(op, path, "got %s, want %s scalar", describe(v), f.Type)
	}
	return nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
