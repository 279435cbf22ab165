package query

import (
	"encoding"
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// bindType checks that t, a struct type, has exactly the fields in shape,
// keyed by their json names, with pointer-ness matching nullability.
func bindType(op, path string, t reflect.Type, shape []Field) error {
	if t.Kind() != reflect.Struct {
		return mismatch(op, path, "bound to %s, want struct", t)
	}

	goFields := jsonFields(t)
	for _, f := range shape {
		p := joinPath(path, f.Key)
		sf, ok := goFields[f.Key]
		if !ok {
			return mismatch(op, p, "selected but %s has no field tagged %q", t, f.Key)
		}
		delete(goFields, f.Key)
		if err := bindField(op, p, sf.Type, f); err != nil {
			return err
		}
	}
	if len(goFields) > 0 {
		key := slices.Sorted(maps.Keys(goFields))[0]
		return mismatch(op, joinPath(path, key), "%s field is not selected by the document", t)
	}
	return nil
}

func bindField(op, path string, t reflect.Type, f Field) error {
	t, err := checkNullability(op, path, t, f.NonNull)
	if err != nil {
		return err
	}

	if f.List {
		if t.Kind() != reflect.Slice {
			return mismatch(op, path, "list field bound to %s, want slice", t)
		}
		t, err = checkNullability(op, path+"[]", t.Elem(), f.ElemNonNull)
		if err != nil {
			return err
		}
	}

	if f.IsObject() {
		return bindType(op, path, t, f.Selections)
	}
	return checkScalar(op, path, t, f.Type)
}

// checkNullability returns the element type behind an optional pointer.
// Nullable fields must be pointers, except slices which already have nil.
func checkNullability(op, path string, t reflect.Type, nonNull bool) (reflect.Type, error) {
	isPtr := t.Kind() == reflect.Pointer
	switch {
	case nonNull && isPtr:
		return nil, mismatch(op, path, "non-null field bound to pointer %s", t)
	case !nonNull && !isPtr && t.Kind() != reflect.Slice && t.Kind() != reflect.Interface:
		return nil, mismatch(op, path, "nullable field bound to non-pointer %s", t)
	case isPtr:
		return t.Elem(), nil
	}
	return t, nil
}

func checkScalar(op, path string, t reflect.Type, gqlType string) error {
	if t.Kind() == reflect.Interface {
		return nil
	}
	pt := reflect.PointerTo(t)
	if pt.Implements(reflect.TypeFor[json.Unmarshaler]()) || pt.Implements(reflect.TypeFor[encoding.TextUnmarshaler]()) {
		return nil
	}

	var ok bool
	switch gqlType {
	case "String", "ID":
		ok = t.Kind() == reflect.String
	case "Int":
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			ok = true
		}
	case "Float":
		ok = t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
	case "Boolean":
		ok = t.Kind() == reflect.Bool
	default:
		// Enums and custom scalars travel as strings unless the type decodes
		// itself.
		ok = t.Kind() == reflect.String
	}
	if !ok {
		return mismatch(op, path, "%s field bound to %s", gqlType, t)
	}
	return nil
}

// jsonFields indexes the exported fields of struct t by the key
// encoding/json would use for them.
func jsonFields(t reflect.Type) map[string]reflect.StructField {
	out := make(map[string]reflect.StructField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		out[name] = sf
	}
	return out
}
