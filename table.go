package redact

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Type is the physical type of a column.
type Type int

const (
	TypeString Type = iota
	TypeInt64
	TypeFloat64
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Value is a single nullable cell. The zero Value is a null string.
type Value struct {
	typ   Type
	valid bool
	s     string
	i     int64
	f     float64
}

// NullValue returns an absent cell of type t.
func NullValue(t Type) Value {
	return Value{typ: t}
}

// StringValue returns a present text cell.
func StringValue(s string) Value {
	return Value{typ: TypeString, valid: true, s: s}
}

// IntValue returns a present integer cell.
func IntValue(i int64) Value {
	return Value{typ: TypeInt64, valid: true, i: i}
}

// FloatValue returns a present floating point cell.
func FloatValue(f float64) Value {
	return Value{typ: TypeFloat64, valid: true, f: f}
}

// Type returns the physical type of the cell.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether the cell is absent.
func (v Value) IsNull() bool { return !v.valid }

// Str returns the text of a string cell.
func (v Value) Str() string { return v.s }

// Int returns the integer of an int64 cell.
func (v Value) Int() int64 { return v.i }

// Float returns the number of a float64 cell.
func (v Value) Float() float64 { return v.f }

// Text returns the string representation of a present cell.
func (v Value) Text() (string, bool) {
	if !v.valid {
		return "", false
	}
	switch v.typ {
	case TypeInt64:
		return strconv.FormatInt(v.i, 10), true
	case TypeFloat64:
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	default:
		return v.s, true
	}
}

func (v Value) String() string {
	if s, ok := v.Text(); ok {
		return s
	}
	return "NULL"
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Type   Type
	Values []Value
}

// Table is an ordered set of equally long columns. Column order is the
// insertion order of the projection and row order matches the source.
//
// A Table is never mutated in place by this package: Replace swaps a column
// wholesale, and Clone shares cell slices between tables.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns, checking that every column has the
// same length, a unique name, and cells of the declared type.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if i == 0 {
			t.rows = len(c.Values)
		}
		if err := t.check(c); err != nil {
			return nil, err
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidTable, c.Name)
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

func (t *Table) check(c Column) error {
	if c.Name == "" {
		return fmt.Errorf("%w: unnamed column", ErrInvalidTable)
	}
	if len(c.Values) != t.rows {
		return fmt.Errorf("%w: column %q has %d rows, want %d", ErrInvalidTable, c.Name, len(c.Values), t.rows)
	}
	for i, v := range c.Values {
		if v.typ != c.Type {
			return fmt.Errorf("%w: column %q row %d is %s, want %s", ErrInvalidTable, c.Name, i, v.typ, c.Type)
		}
	}
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Replace swaps the column with the same name for c. The column keeps its
// position; its type may change.
func (t *Table) Replace(c Column) error {
	i, ok := t.index[c.Name]
	if !ok {
		return fmt.Errorf("%w %q", ErrMissingColumn, c.Name)
	}
	if err := t.check(c); err != nil {
		return err
	}
	t.columns[i] = c
	return nil
}

// Clone returns a table with its own column list. Cell slices are shared,
// which is safe because columns are only ever replaced wholesale.
func (t *Table) Clone() *Table {
	clone := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    t.rows,
	}
	copy(clone.columns, t.columns)
	for k, v := range t.index {
		clone.index[k] = v
	}
	return clone
}

// Equal reports whether both tables have the same columns, types and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Type != oc.Type {
			return false
		}
		for j := range c.Values {
			if c.Values[j] != oc.Values[j] {
				return false
			}
		}
	}
	return true
}

// Preview renders the first n rows as an aligned text grid.
func (t *Table) Preview(w io.Writer, n int) error {
	if n > t.rows || n < 0 {
		n = t.rows
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(t.Names(), "\t")); err != nil {
		return err
	}
	cells := make([]string, len(t.columns))
	for i := 0; i < n; i++ {
		for j, v := range t.Row(i) {
			cells[j] = v.String()
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(tw, "[%d rows x %d columns]\n", t.rows, len(t.columns)); err != nil {
		return err
	}
	return tw.Flush()
}
