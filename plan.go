package redact

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register projection tags with sentinel
	sentinel.Tag("column")
	sentinel.Tag("redact")
}

// Plan flattens values of a nested struct type T into a Table.
//
// Leaf fields tagged with column become columns, in declaration order. A
// column tag on a nested struct field is a prefix joined to its children's
// names with "_"; a nested struct without one contributes no prefix.
//
// Plans are immutable after construction and safe for concurrent use.
type Plan[T any] struct {
	typeName string
	fields   []planField
}

// planField describes how to project a single leaf field.
type planField struct {
	index      []int // reflect.Value.FieldByIndex access path
	name       string
	column     string
	typ        Type
	ptrIndices []int // indices where pointer dereference is needed
	nullable   bool  // leaf is a pointer
	rule       *Rule
}

// NewPlan scans T's struct tags and builds its projection plan.
func NewPlan[T any]() (*Plan[T], error) {
	spec := sentinel.Scan[T]()
	p := &Plan[T]{typeName: spec.TypeName}

	if err := p.build(spec, reflect.TypeFor[T](), nil, nil, "", ""); err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(p.fields))
	for _, f := range p.fields {
		if other, dup := seen[f.column]; dup {
			return nil, fmt.Errorf("%w: fields %s and %s both project to column %q", ErrInvalidTag, other, f.name, f.column)
		}
		seen[f.column] = f.name
	}

	emitPlanBuilt(context.Background(), p.typeName, len(p.fields), len(p.Rules()))
	return p, nil
}

// build recursively processes fields and nested structs. Tags are read from
// owner's struct tags, since the scanned metadata omits empty tag values.
func (p *Plan[T]) build(spec sentinel.Metadata, owner reflect.Type, parentIndex, ptrIndices []int, namePrefix, columnPrefix string) error {
	for _, field := range spec.Fields {
		tags := parseProjectionTags(owner.FieldByIndex(field.Index).Tag)
		fullIndex := append(append([]int{}, parentIndex...), field.Index...)
		fullName := field.Name
		if namePrefix != "" {
			fullName = namePrefix + "." + field.Name
		}

		column, tagged := tags["column"]
		if tagged && column == "" {
			return fmt.Errorf("%w: empty column tag on field %s", ErrInvalidTag, fullName)
		}
		if tagged && columnPrefix != "" {
			column = columnPrefix + "_" + column
		}

		// Handle nested structs
		if field.Kind == sentinel.KindStruct {
			if _, ok := tags["redact"]; ok {
				return fmt.Errorf("%w: redact tag on struct field %s", ErrInvalidTag, fullName)
			}
			prefix := columnPrefix
			if tagged {
				prefix = column
			}
			nestedSpec := scanNestedType(field.ReflectType)
			if nestedSpec != nil {
				if err := p.build(*nestedSpec, field.ReflectType, fullIndex, ptrIndices, fullName, prefix); err != nil {
					return err
				}
			}
			continue
		}

		// Handle pointer to struct
		if field.Kind == sentinel.KindPointer && field.ReflectType.Elem().Kind() == reflect.Struct {
			prefix := columnPrefix
			if tagged {
				prefix = column
			}
			nestedSpec := scanNestedType(field.ReflectType.Elem())
			if nestedSpec != nil {
				newPtrIndices := append(append([]int{}, ptrIndices...), len(fullIndex)-1)
				if err := p.build(*nestedSpec, field.ReflectType.Elem(), fullIndex, newPtrIndices, fullName, prefix); err != nil {
					return err
				}
			}
			continue
		}

		if !tagged {
			continue
		}

		leaf := field.ReflectType
		nullable := false
		if leaf.Kind() == reflect.Ptr {
			leaf = leaf.Elem()
			nullable = true
		}

		typ, ok := columnType(leaf.Kind())
		if !ok {
			return fmt.Errorf("%w: field %s of type %s cannot be projected", ErrInvalidTag, fullName, field.ReflectType)
		}

		plan := planField{
			index:      fullIndex,
			name:       fullName,
			column:     column,
			typ:        typ,
			ptrIndices: ptrIndices,
			nullable:   nullable,
		}

		if val, ok := tags["redact"]; ok {
			rule, err := ParseRule(val)
			if err != nil {
				return fmt.Errorf("field %s: %w", fullName, err)
			}
			if !rule.accepts(typ) {
				return fmt.Errorf("%w: rule %s on %s field %s", ErrInvalidTag, rule, typ, fullName)
			}
			plan.rule = &rule
		}

		p.fields = append(p.fields, plan)
	}

	return nil
}

// columnType maps a leaf kind to its column type.
func columnType(k reflect.Kind) (Type, bool) {
	switch k {
	case reflect.String:
		return TypeString, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return TypeInt64, true
	case reflect.Float32, reflect.Float64:
		return TypeFloat64, true
	default:
		return 0, false
	}
}

// scanNestedType scans a nested struct type and returns its metadata.
func scanNestedType(rt reflect.Type) *sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return &spec
	}

	if rt.Kind() != reflect.Struct {
		return nil
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseProjectionTags(sf.Tag),
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		spec.Fields = append(spec.Fields, fm)
	}

	return &spec
}

// parseProjectionTags extracts column and redact tags from a struct tag.
func parseProjectionTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, key := range []string{"column", "redact"} {
		if val, ok := tag.Lookup(key); ok {
			tags[key] = val
		}
	}
	return tags
}

// TypeName returns the name of the scanned type.
func (p *Plan[T]) TypeName() string { return p.typeName }

// Columns returns the projected column names in order.
func (p *Plan[T]) Columns() []string {
	names := make([]string, len(p.fields))
	for i, f := range p.fields {
		names[i] = f.column
	}
	return names
}

// Rules returns the redaction rules declared on the projected columns.
func (p *Plan[T]) Rules() []ColumnRule {
	var rules []ColumnRule
	for _, f := range p.fields {
		if f.rule != nil {
			rules = append(rules, ColumnRule{Column: f.column, Rule: *f.rule})
		}
	}
	return rules
}

// Project flattens rows into a Table with one row per value and one column
// per tagged leaf field.
func (p *Plan[T]) Project(rows []T) (*Table, error) {
	columns := make([]Column, len(p.fields))
	for i, f := range p.fields {
		columns[i] = Column{
			Name:   f.column,
			Type:   f.typ,
			Values: make([]Value, len(rows)),
		}
	}

	for r := range rows {
		rv := reflect.ValueOf(&rows[r]).Elem()
		for i, f := range p.fields {
			columns[i].Values[r] = f.value(rv)
		}
	}

	t, err := NewTable(columns...)
	emitProjectComplete(context.Background(), p.typeName, len(rows), len(columns), err)
	return t, err
}

// value reads the field from a struct value as a cell.
func (f planField) value(rv reflect.Value) Value {
	field, ok := f.get(rv)
	if !ok {
		return NullValue(f.typ)
	}
	if f.nullable {
		if field.IsNil() {
			return NullValue(f.typ)
		}
		field = field.Elem()
	}

	switch f.typ {
	case TypeInt64:
		return IntValue(field.Int())
	case TypeFloat64:
		return FloatValue(field.Float())
	default:
		return StringValue(field.String())
	}
}

// get navigates a field path, dereferencing pointers as needed.
func (f planField) get(rv reflect.Value) (reflect.Value, bool) {
	if len(f.ptrIndices) == 0 {
		return rv.FieldByIndex(f.index), true
	}

	current := rv
	ptrSet := make(map[int]bool, len(f.ptrIndices))
	for _, idx := range f.ptrIndices {
		ptrSet[idx] = true
	}

	for i, idx := range f.index {
		current = current.Field(idx)

		if ptrSet[i] {
			if current.IsNil() {
				return reflect.Value{}, false
			}
			current = current.Elem()
		}
	}

	return current, true
}
