// Package parquet writes and reads redact tables as encrypted Parquet files.
//
// Every column is stored as an optional primitive so that null cells survive
// the round trip: text as BYTE_ARRAY with the String logical type, integers
// as INT64 and floats as DOUBLE. The footer and all columns are encrypted
// with a single AES key whose name is recorded as footer key metadata.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow/go/v11/arrow/memory"
	pq "github.com/apache/arrow/go/v11/parquet"
	"github.com/apache/arrow/go/v11/parquet/compress"
	"github.com/apache/arrow/go/v11/parquet/file"
	"github.com/apache/arrow/go/v11/parquet/schema"

	"github.com/zoobzio/redact"
)

// ContentType is the media type of files produced by Write.
const ContentType = "application/vnd.apache.parquet"

// CreatedBy is recorded in the footer of every written file.
const CreatedBy = "redact"

// ErrUnsupportedColumn indicates a column type with no Parquet mapping.
var ErrUnsupportedColumn = errors.New("unsupported column type")

type options struct {
	keys        *KeyRing
	keyName     string
	compression compress.Compression
	alloc       memory.Allocator
}

// Option configures Write and Read.
type Option func(*options)

// WithFooterKey encrypts with, or decrypts through, the keys in ring. Write
// uses the key registered under name.
func WithFooterKey(ring *KeyRing, name string) Option {
	return func(o *options) {
		o.keys = ring
		o.keyName = name
	}
}

// WithCompression sets the column compression codec. The default is snappy.
func WithCompression(c compress.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithAllocator sets the memory allocator used for encoding and decoding.
func WithAllocator(alloc memory.Allocator) Option {
	return func(o *options) {
		o.alloc = alloc
	}
}

func newOptions(opts []Option) options {
	o := options{
		compression: compress.Codecs.Snappy,
		alloc:       memory.DefaultAllocator,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Write encodes t as a single row group. Without WithFooterKey the file is
// written in plaintext.
func Write(ctx context.Context, w io.Writer, t *redact.Table, opts ...Option) (err error) {
	start := time.Now()
	o := newOptions(opts)
	defer func() {
		emitWriteComplete(ctx, t.NumRows(), t.NumColumns(), o.keyName, time.Since(start), err)
	}()

	root, err := buildSchema(t)
	if err != nil {
		return err
	}

	props := []pq.WriterProperty{
		pq.WithCreatedBy(CreatedBy),
		pq.WithCompression(o.compression),
		pq.WithAllocator(o.alloc),
		pq.WithDictionaryDefault(false),
	}
	if o.keys != nil {
		key, err := o.keys.Lookup(o.keyName)
		if err != nil {
			return err
		}
		// Encryption properties are consumed by a single file.
		enc := pq.NewFileEncryptionProperties(string(key), pq.WithFooterKeyMetadata(o.keyName))
		wipe(key)
		props = append(props, pq.WithEncryptionProperties(enc))
	}

	writer := file.NewParquetWriter(w, root, file.WithWriterProps(pq.NewWriterProperties(props...)))
	if err := writeRowGroup(writer, t); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// buildSchema maps table columns to optional primitive nodes.
func buildSchema(t *redact.Table) (*schema.GroupNode, error) {
	fields := make(schema.FieldList, 0, t.NumColumns())
	for _, c := range t.Columns() {
		var (
			node schema.Node
			err  error
		)
		switch c.Type {
		case redact.TypeString:
			node, err = schema.NewPrimitiveNodeLogical(c.Name, pq.Repetitions.Optional, schema.StringLogicalType{}, pq.Types.ByteArray, -1, -1)
		case redact.TypeInt64:
			node, err = schema.NewPrimitiveNode(c.Name, pq.Repetitions.Optional, pq.Types.Int64, -1, -1)
		case redact.TypeFloat64:
			node, err = schema.NewPrimitiveNode(c.Name, pq.Repetitions.Optional, pq.Types.Double, -1, -1)
		default:
			return nil, fmt.Errorf("%w: column %q is %s", ErrUnsupportedColumn, c.Name, c.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		fields = append(fields, node)
	}
	return schema.NewGroupNode("schema", pq.Repetitions.Required, fields, -1)
}

// writeRowGroup writes every column of t into one buffered row group.
func writeRowGroup(writer *file.Writer, t *redact.Table) error {
	rgw := writer.AppendBufferedRowGroup()
	for i, c := range t.Columns() {
		cw, err := rgw.Column(i)
		if err != nil {
			return err
		}
		if err := writeColumn(cw, c); err != nil {
			return fmt.Errorf("column %q: %w", c.Name, err)
		}
		if err := cw.Close(); err != nil {
			return err
		}
	}
	return rgw.Close()
}

// writeColumn writes the present cells of c as values and marks every cell
// in the definition levels.
func writeColumn(cw file.ColumnChunkWriter, c redact.Column) error {
	defLevels := make([]int16, len(c.Values))
	for i, v := range c.Values {
		if !v.IsNull() {
			defLevels[i] = 1
		}
	}

	switch w := cw.(type) {
	case *file.ByteArrayColumnChunkWriter:
		values := make([]pq.ByteArray, 0, len(c.Values))
		for _, v := range c.Values {
			if !v.IsNull() {
				values = append(values, pq.ByteArray(v.Str()))
			}
		}
		_, err := w.WriteBatch(values, defLevels, nil)
		return err
	case *file.Int64ColumnChunkWriter:
		values := make([]int64, 0, len(c.Values))
		for _, v := range c.Values {
			if !v.IsNull() {
				values = append(values, v.Int())
			}
		}
		_, err := w.WriteBatch(values, defLevels, nil)
		return err
	case *file.Float64ColumnChunkWriter:
		values := make([]float64, 0, len(c.Values))
		for _, v := range c.Values {
			if !v.IsNull() {
				values = append(values, v.Float())
			}
		}
		_, err := w.WriteBatch(values, defLevels, nil)
		return err
	default:
		return fmt.Errorf("%w: writer %T", ErrUnsupportedColumn, cw)
	}
}
