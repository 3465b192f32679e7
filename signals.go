package redact

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for redaction events.
var (
	SignalPlanBuilt       = capitan.NewSignal("redact.plan.built", "Projection plan scanned from struct tags")
	SignalDecodeComplete  = capitan.NewSignal("redact.decode.complete", "Source document decoded")
	SignalProjectComplete = capitan.NewSignal("redact.project.complete", "Records flattened into a table")
	SignalRedactStart     = capitan.NewSignal("redact.table.start", "Table redaction beginning")
	SignalRedactComplete  = capitan.NewSignal("redact.table.complete", "Table redaction finished")
)

// Keys for typed event data.
var (
	KeyContentType     = capitan.NewStringKey("content_type")
	KeyTypeName        = capitan.NewStringKey("type_name")
	KeyRows            = capitan.NewIntKey("rows")
	KeyColumns         = capitan.NewIntKey("columns")
	KeyRules           = capitan.NewIntKey("rules")
	KeyDuration        = capitan.NewDurationKey("duration")
	KeyError           = capitan.NewErrorKey("error")
	KeyMaskedCount     = capitan.NewIntKey("masked_count")
	KeyUnmaskableCount = capitan.NewIntKey("unmaskable_count")
	KeyAbsentCount     = capitan.NewIntKey("absent_count")
)

// emitPlanBuilt emits an event when a plan is scanned.
func emitPlanBuilt(ctx context.Context, typeName string, columns, rules int) {
	capitan.Emit(ctx, SignalPlanBuilt,
		KeyTypeName.Field(typeName),
		KeyColumns.Field(columns),
		KeyRules.Field(rules),
	)
}

// emitProjectComplete emits an event when records have been flattened.
func emitProjectComplete(ctx context.Context, typeName string, rows, columns int, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyRows.Field(rows),
		KeyColumns.Field(columns),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalProjectComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalProjectComplete, fields...)
	}
}

// emitDecodeComplete emits an event when a document has been decoded.
func emitDecodeComplete(ctx context.Context, contentType string, rows int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyRows.Field(rows),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// emitRedactStart emits an event when redaction begins.
func emitRedactStart(ctx context.Context, rows, rules int) {
	capitan.Emit(ctx, SignalRedactStart,
		KeyRows.Field(rows),
		KeyRules.Field(rules),
	)
}

// emitRedactComplete emits an event when redaction finishes.
func emitRedactComplete(ctx context.Context, rows int, duration time.Duration, masked, unmaskable, absent int, err error) {
	fields := []capitan.Field{
		KeyRows.Field(rows),
		KeyDuration.Field(duration),
		KeyMaskedCount.Field(masked),
		KeyUnmaskableCount.Field(unmaskable),
		KeyAbsentCount.Field(absent),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalRedactComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalRedactComplete, fields...)
	}
}
