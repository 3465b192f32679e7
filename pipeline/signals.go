package pipeline

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/zoobzio/redact"
)

// Signals for pipeline stages.
var (
	SignalLoadComplete   = capitan.NewSignal("pipeline.load.complete", "Source object loaded into a table")
	SignalWriteComplete  = capitan.NewSignal("pipeline.write.complete", "Encrypted file stored")
	SignalVerifyComplete = capitan.NewSignal("pipeline.verify.complete", "Stored file read back")
)

// Keys for object locations.
var (
	KeyBucket = capitan.NewStringKey("bucket")
	KeyObject = capitan.NewStringKey("object_key")
	KeyBytes  = capitan.NewIntKey("bytes")
)

func emitLoadComplete(ctx context.Context, bucket, key string, size, rows int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyBucket.Field(bucket),
		KeyObject.Field(key),
		KeyBytes.Field(size),
		redact.KeyRows.Field(rows),
		redact.KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, redact.KeyError.Field(err))
		capitan.Error(ctx, SignalLoadComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalLoadComplete, fields...)
	}
}

func emitWriteComplete(ctx context.Context, bucket, key string, size, rows int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyBucket.Field(bucket),
		KeyObject.Field(key),
		KeyBytes.Field(size),
		redact.KeyRows.Field(rows),
		redact.KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, redact.KeyError.Field(err))
		capitan.Error(ctx, SignalWriteComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalWriteComplete, fields...)
	}
}

func emitVerifyComplete(ctx context.Context, bucket, key string, rows int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyBucket.Field(bucket),
		KeyObject.Field(key),
		redact.KeyRows.Field(rows),
		redact.KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, redact.KeyError.Field(err))
		capitan.Error(ctx, SignalVerifyComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalVerifyComplete, fields...)
	}
}
