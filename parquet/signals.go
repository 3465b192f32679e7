package parquet

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/zoobzio/redact"
)

// Signals for file events.
var (
	SignalWriteComplete = capitan.NewSignal("redact.parquet.write.complete", "Table encoded as a Parquet file")
	SignalReadComplete  = capitan.NewSignal("redact.parquet.read.complete", "Parquet file decoded into a table")
)

// KeyKeyName carries the footer key name; it is empty for plaintext files.
var KeyKeyName = capitan.NewStringKey("key_name")

func emitWriteComplete(ctx context.Context, rows, columns int, keyName string, duration time.Duration, err error) {
	fields := fileFields(rows, columns, keyName, duration)
	if err != nil {
		fields = append(fields, redact.KeyError.Field(err))
		capitan.Error(ctx, SignalWriteComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalWriteComplete, fields...)
	}
}

func emitReadComplete(ctx context.Context, rows, columns int, keyName string, duration time.Duration, err error) {
	fields := fileFields(rows, columns, keyName, duration)
	if err != nil {
		fields = append(fields, redact.KeyError.Field(err))
		capitan.Error(ctx, SignalReadComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalReadComplete, fields...)
	}
}

func fileFields(rows, columns int, keyName string, duration time.Duration) []capitan.Field {
	return []capitan.Field{
		redact.KeyRows.Field(rows),
		redact.KeyColumns.Field(columns),
		KeyKeyName.Field(keyName),
		redact.KeyDuration.Field(duration),
	}
}
