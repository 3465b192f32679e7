package parquet

import (
	"context"
	"errors"
	"fmt"
	"time"

	pq "github.com/apache/arrow/go/v11/parquet"
	"github.com/apache/arrow/go/v11/parquet/file"

	"github.com/zoobzio/redact"
)

// ErrUnreadable indicates a file that could not be opened or decoded,
// including an encrypted file read without its key.
var ErrUnreadable = errors.New("unreadable parquet file")

// Read decodes a file produced by Write back into a Table.
//
// Encrypted files need WithFooterKey; the key is resolved from the footer key
// metadata. Reading an encrypted file without the key, or with the wrong
// one, fails with ErrUnreadable.
func Read(ctx context.Context, r pq.ReaderAtSeeker, opts ...Option) (t *redact.Table, err error) {
	start := time.Now()
	o := newOptions(opts)
	rows, cols := 0, 0
	defer func() {
		emitReadComplete(ctx, rows, cols, o.keyName, time.Since(start), err)
	}()

	// The decoder panics on some corrupt or mis-keyed input.
	defer func() {
		if rec := recover(); rec != nil {
			t = nil
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	props := pq.NewReaderProperties(o.alloc)
	if o.keys != nil {
		props.FileDecryptProps = pq.NewFileDecryptionProperties(pq.WithKeyRetriever(o.keys.Retriever()))
	}

	reader, err := file.NewParquetReader(r, file.WithReadProps(props))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer reader.Close()

	columns, err := readColumns(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	t, err = redact.NewTable(columns...)
	if err != nil {
		return nil, err
	}
	rows, cols = t.NumRows(), t.NumColumns()
	return t, nil
}

// readColumns reads every row group and concatenates the cells per column.
func readColumns(reader *file.Reader) ([]redact.Column, error) {
	sch := reader.MetaData().Schema
	columns := make([]redact.Column, sch.NumColumns())
	for i := range columns {
		desc := sch.Column(i)
		typ, err := columnType(desc.PhysicalType())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", desc.Name(), err)
		}
		columns[i] = redact.Column{
			Name:   desc.Name(),
			Type:   typ,
			Values: make([]redact.Value, 0, reader.NumRows()),
		}
	}

	for rg := 0; rg < reader.NumRowGroups(); rg++ {
		rgr := reader.RowGroup(rg)
		n := rgr.NumRows()
		for i := range columns {
			cr, err := rgr.Column(i)
			if err != nil {
				return nil, err
			}
			values, err := readColumn(cr, columns[i].Type, n)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", columns[i].Name, err)
			}
			columns[i].Values = append(columns[i].Values, values...)
		}
	}
	return columns, nil
}

func columnType(t pq.Type) (redact.Type, error) {
	switch t {
	case pq.Types.ByteArray:
		return redact.TypeString, nil
	case pq.Types.Int64:
		return redact.TypeInt64, nil
	case pq.Types.Double:
		return redact.TypeFloat64, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedColumn, t)
	}
}

// readColumn reads n cells from a column chunk, turning undefined entries
// into null cells. Byte array values alias page buffers, so they are copied
// before the next batch is read.
func readColumn(cr file.ColumnChunkReader, typ redact.Type, n int64) ([]redact.Value, error) {
	defLevels := make([]int16, n)
	out := make([]redact.Value, 0, n)

	var err error
	switch r := cr.(type) {
	case *file.ByteArrayColumnChunkReader:
		values := make([]pq.ByteArray, n)
		err = readBatches(r.HasNext, n, func(size int64) (int64, error) {
			total, _, err := r.ReadBatch(size, values, defLevels, nil)
			out = appendCells(out, defLevels[:total], typ, func(i int) redact.Value {
				return redact.StringValue(string(values[i]))
			})
			return total, err
		})
	case *file.Int64ColumnChunkReader:
		values := make([]int64, n)
		err = readBatches(r.HasNext, n, func(size int64) (int64, error) {
			total, _, err := r.ReadBatch(size, values, defLevels, nil)
			out = appendCells(out, defLevels[:total], typ, func(i int) redact.Value {
				return redact.IntValue(values[i])
			})
			return total, err
		})
	case *file.Float64ColumnChunkReader:
		values := make([]float64, n)
		err = readBatches(r.HasNext, n, func(size int64) (int64, error) {
			total, _, err := r.ReadBatch(size, values, defLevels, nil)
			out = appendCells(out, defLevels[:total], typ, func(i int) redact.Value {
				return redact.FloatValue(values[i])
			})
			return total, err
		})
	default:
		return nil, fmt.Errorf("%w: reader %T", ErrUnsupportedColumn, cr)
	}
	if err != nil {
		return nil, err
	}

	if int64(len(out)) != n {
		return nil, fmt.Errorf("read %d of %d cells", len(out), n)
	}
	return out, nil
}

// readBatches calls batch with the number of levels still wanted until n
// levels have been read or the chunk is drained.
func readBatches(hasNext func() bool, n int64, batch func(size int64) (int64, error)) error {
	var read int64
	for read < n && hasNext() {
		total, err := batch(n - read)
		if err != nil {
			return err
		}
		if total == 0 {
			break
		}
		read += total
	}
	return nil
}

// appendCells appends one cell per definition level. Defined entries take
// the next value from the batch; the rest are null.
func appendCells(out []redact.Value, levels []int16, typ redact.Type, value func(i int) redact.Value) []redact.Value {
	next := 0
	for _, d := range levels {
		if d == 0 {
			out = append(out, redact.NullValue(typ))
			continue
		}
		out = append(out, value(next))
		next++
	}
	return out
}
