package redact

// AverageInt returns the mean of the non-null cells of an integer column.
// ok is false when every cell is null.
func AverageInt(t *Table, column string) (avg float64, ok bool, err error) {
	if t == nil {
		return 0, false, &ConfigError{Err: ErrInvalidTable, Column: column}
	}
	col, found := t.Column(column)
	if !found {
		return 0, false, &ConfigError{Err: ErrMissingColumn, Column: column}
	}
	if col.Type != TypeInt64 {
		return 0, false, &ConfigError{Err: ErrColumnType, Column: column}
	}

	var sum int64
	var n int
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		sum += v.Int()
		n++
	}
	if n == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(n), true, nil
}
