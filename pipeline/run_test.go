package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/redact/config"
	"github.com/zoobzio/redact/logger"
	"github.com/zoobzio/redact/parquet"
	"github.com/zoobzio/redact/pipeline"
	redacttest "github.com/zoobzio/redact/testing"
)

func testConfig(t *testing.T, verify bool) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{
		"MINIO_ROOT_USER":        "minioadmin",
		"MINIO_ROOT_PASSWORD":    "minioadmin",
		"PARQUET_ENCRYPTION_KEY": string(redacttest.TestKey(t)),
	})
	require.NoError(t, err)
	cfg.Verify = verify
	return cfg
}

// logLines decodes the JSON log output into one map per line.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		lines = append(lines, m)
	}
	return lines
}

func TestRun(t *testing.T) {
	store := seededStore(t)
	var buf bytes.Buffer
	log := logger.New(&buf, "redact-users")

	require.NoError(t, pipeline.Run(context.Background(), store, testConfig(t, true), log))
	assert.Equal(t, parquet.ContentType, store.ContentType(config.DefaultBucket, config.DefaultTargetKey))

	var avg any
	var verified bool
	for _, line := range logLines(t, &buf) {
		assert.Equal(t, "redact-users", line["role"])
		if v, ok := line["average_registered_age"]; ok {
			avg = v
		}
		if line["message"] == "cannot read encrypted data without key" {
			verified = true
		}
	}
	assert.Equal(t, 8.0, avg)
	assert.True(t, verified)
}

func TestRun_NoVerify(t *testing.T) {
	store := seededStore(t)
	var buf bytes.Buffer

	require.NoError(t, pipeline.Run(context.Background(), store, testConfig(t, false), logger.New(&buf, "redact-users")))
	assert.NotContains(t, buf.String(), "cannot read encrypted data")
	assert.Equal(t, 2, store.Len())
}

func TestRun_MissingSource(t *testing.T) {
	err := pipeline.Run(context.Background(), redacttest.NewMemoryStore(), testConfig(t, false), logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://users/rand_users100.json")
}
