// Package query defines GraphQL operations as immutable descriptors whose
// response shape is derived from the schema and bound to a Go type when the
// descriptor is created.
package query

import (
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"
)

// Field is one selected field of a response shape.
type Field struct {
	// Key is the response key: the alias if one is set, otherwise Name.
	Key     string
	Name    string
	Type    string
	NonNull bool
	// List is set for list-typed fields; ElemNonNull then describes the
	// elements.
	List        bool
	ElemNonNull bool
	// Selections is non-empty for object-typed fields.
	Selections []Field
}

// IsObject reports whether the field selects sub-fields.
func (f Field) IsObject() bool { return len(f.Selections) > 0 }

// Descriptor is a validated GraphQL operation. It is never modified after
// creation, so every request built from it carries identical text.
type Descriptor struct {
	name   string
	text   string
	schema *Schema
	op     *ast.OperationDefinition
	shape  []Field
}

// Name returns the operation name.
func (d *Descriptor) Name() string { return d.name }

// Text returns the document text exactly as declared.
func (d *Descriptor) Text() string { return d.text }

// Kind returns the operation type (query, mutation, subscription).
func (d *Descriptor) Kind() string { return string(d.op.Operation) }

// Shape returns a copy of the declared response shape.
func (d *Descriptor) Shape() []Field { return cloneFields(d.shape) }

// VariableNames returns the names of the declared variables in declaration
// order.
func (d *Descriptor) VariableNames() []string {
	names := make([]string, 0, len(d.op.VariableDefinitions))
	for _, v := range d.op.VariableDefinitions {
		names = append(names, v.Variable)
	}
	return names
}

// ValidateVariables checks vars against the declared variable definitions:
// every key must be declared and every required variable must be present
// with a value of the declared type.
func (d *Descriptor) ValidateVariables(vars map[string]any) error {
	for k := range vars {
		if d.op.VariableDefinitions.ForName(k) == nil {
			return fmt.Errorf("query: %s: unknown variable $%s", d.name, k)
		}
	}
	if _, err := validator.VariableValues(d.schema.s, d.op, vars); err != nil {
		return fmt.Errorf("query: %s: %w", d.name, err)
	}
	return nil
}

// newDescriptor parses text, validates it against s and derives the response
// shape. The document must hold exactly one operation, named name.
func newDescriptor(s *Schema, name, text string) (*Descriptor, error) {
	if s == nil {
		return nil, fmt.Errorf("query: %s: nil schema", name)
	}
	doc, errs := gqlparser.LoadQuery(s.s, text)
	if len(errs) > 0 {
		return nil, fmt.Errorf("query: %s: %w", name, errs)
	}
	if len(doc.Operations) != 1 {
		return nil, mismatch(name, "", "document declares %d operations, want 1", len(doc.Operations))
	}
	op := doc.Operations[0]
	if op.Name != name {
		return nil, mismatch(name, "", "document declares operation %q", op.Name)
	}

	shape, err := deriveShape(name, "", op.SelectionSet)
	if err != nil {
		return nil, err
	}

	return &Descriptor{name: name, text: text, schema: s, op: op, shape: shape}, nil
}

// deriveShape flattens a validated selection set into Fields. Fragments are
// inlined; type-conditional fragments on a different type than their parent
// are rejected because a single Go struct cannot represent them.
func deriveShape(op, path string, set ast.SelectionSet) ([]Field, error) {
	var out []Field
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			f, err := deriveField(op, path, s)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		case *ast.InlineFragment:
			if s.TypeCondition != "" && s.ObjectDefinition != nil && s.TypeCondition != s.ObjectDefinition.Name {
				return nil, mismatch(op, path, "fragment on %s cannot be bound to a struct", s.TypeCondition)
			}
			fs, err := deriveShape(op, path, s.SelectionSet)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		case *ast.FragmentSpread:
			if s.Definition == nil {
				return nil, mismatch(op, path, "undefined fragment %s", s.Name)
			}
			if s.ObjectDefinition != nil && s.Definition.TypeCondition != s.ObjectDefinition.Name {
				return nil, mismatch(op, path, "fragment %s on %s cannot be bound to a struct", s.Name, s.Definition.TypeCondition)
			}
			fs, err := deriveShape(op, path, s.Definition.SelectionSet)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
	}
	return mergeFields(op, path, out)
}

func deriveField(op, path string, f *ast.Field) (Field, error) {
	key := f.Alias
	if key == "" {
		key = f.Name
	}
	p := joinPath(path, key)
	if f.Definition == nil || f.Definition.Type == nil {
		return Field{}, mismatch(op, p, "field %s has no schema definition", f.Name)
	}

	t := f.Definition.Type
	out := Field{
		Key:     key,
		Name:    f.Name,
		Type:    t.Name(),
		NonNull: t.NonNull,
	}
	if t.Elem != nil {
		if t.Elem.Elem != nil {
			return Field{}, mismatch(op, p, "nested lists are not supported")
		}
		out.List = true
		out.ElemNonNull = t.Elem.NonNull
	}

	if len(f.SelectionSet) > 0 {
		sub, err := deriveShape(op, p, f.SelectionSet)
		if err != nil {
			return Field{}, err
		}
		out.Selections = sub
	}
	return out, nil
}

// mergeFields collapses repeated selections of the same response key, which
// GraphQL allows and the server answers once.
func mergeFields(op, path string, fields []Field) ([]Field, error) {
	seen := make(map[string]int, len(fields))
	var out []Field
	for _, f := range fields {
		i, ok := seen[f.Key]
		if !ok {
			seen[f.Key] = len(out)
			out = append(out, f)
			continue
		}
		prev := out[i]
		if prev.Name != f.Name {
			return nil, mismatch(op, joinPath(path, f.Key), "key selects both %s and %s", prev.Name, f.Name)
		}
		merged, err := mergeFields(op, joinPath(path, f.Key), append(cloneFields(prev.Selections), f.Selections...))
		if err != nil {
			return nil, err
		}
		out[i].Selections = merged
	}
	return out, nil
}

func cloneFields(in []Field) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, len(in))
	for i, f := range in {
		f.Selections = cloneFields(f.Selections)
		out[i] = f
	}
	return out
}
