package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/redact"
	"github.com/zoobzio/redact/config"
	"github.com/zoobzio/redact/logger"
)

// PreviewRows is the number of rows logged from each table.
const PreviewRows = 5

// AgeColumn is summarized after redaction.
const AgeColumn = "registered_age"

// Run executes the job described by cfg: load the source object, redact it,
// write the encrypted file and, when cfg.Verify is set, read it back.
func Run(ctx context.Context, store ObjectStore, cfg *config.Config, log *logger.Logger) error {
	ctx = log.WithContext(ctx)

	s, err := Open(ctx, store,
		WithKey(cfg.Encryption.KeyName, []byte(cfg.Encryption.Key)),
		WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer s.Close()

	raw, err := s.Load(ctx, cfg.Source.Bucket, cfg.Source.Key)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Source, err)
	}
	logPreview(log, "source", raw)

	redacted, _, err := s.Redact(ctx, raw)
	if err != nil {
		return fmt.Errorf("redact %s: %w", cfg.Source, err)
	}
	logPreview(log, "redacted", redacted)

	avg, ok, err := redact.AverageInt(redacted, AgeColumn)
	switch {
	case err != nil:
		return err
	case ok:
		log.Info().Float64("average_registered_age", avg).Msg("registration summary")
	default:
		log.Info().Msg("registration summary: no ages")
	}

	if err := s.Write(ctx, redacted, cfg.Target.Bucket, cfg.Target.Key); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Target, err)
	}

	if !cfg.Verify {
		return nil
	}
	if _, err := s.Verify(ctx, redacted, cfg.Target.Bucket, cfg.Target.Key); err != nil {
		return fmt.Errorf("verify %s: %w", cfg.Target, err)
	}
	return nil
}

func logPreview(log *logger.Logger, name string, t *redact.Table) {
	var b strings.Builder
	if err := t.Preview(&b, PreviewRows); err != nil {
		log.Warn().Err(err).Str("table", name).Msg("preview failed")
		return
	}
	log.Debug().Str("table", name).Msg("\n" + b.String())
}
