package integration

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/redact"
	"github.com/zoobzio/redact/bson"
	"github.com/zoobzio/redact/json"
	"github.com/zoobzio/redact/msgpack"
	"github.com/zoobzio/redact/parquet"
	redacttest "github.com/zoobzio/redact/testing"
	"github.com/zoobzio/redact/yaml"
)

func TestRoundTrip_JSON(t *testing.T) {
	testRoundTrip(t, json.New())
}

func TestRoundTrip_YAML(t *testing.T) {
	testRoundTrip(t, yaml.New())
}

func TestRoundTrip_MessagePack(t *testing.T) {
	testRoundTrip(t, msgpack.New())
}

func TestRoundTrip_BSON(t *testing.T) {
	testRoundTrip(t, bson.New())
}

// testRoundTrip encodes the sample records with c, decodes and redacts them,
// and checks that the encrypted file reads back only with the key.
func testRoundTrip(t *testing.T, c redact.Codec) {
	t.Helper()
	ctx := context.Background()

	data, err := c.Marshal(map[string]any{"results": redacttest.SampleRecords()})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	records, err := redact.DecodeRecords(ctx, c, data)
	if err != nil {
		t.Fatalf("DecodeRecords() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("DecodeRecords() = %d records, want 3", len(records))
	}

	plan, err := redact.DefaultPlan()
	if err != nil {
		t.Fatalf("DefaultPlan() error: %v", err)
	}
	raw, err := plan.Project(records)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}

	r, err := redact.DefaultRedactor()
	if err != nil {
		t.Fatalf("DefaultRedactor() error: %v", err)
	}
	masked, _, err := r.Redact(ctx, raw)
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}

	ring := parquet.NewKeyRing()
	if err := ring.Register(redacttest.TestKeyName, redacttest.TestKey(t)); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	defer ring.Wipe()

	var buf bytes.Buffer
	if err := parquet.Write(ctx, &buf, masked, parquet.WithFooterKey(ring, redacttest.TestKeyName)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := parquet.Read(ctx, bytes.NewReader(buf.Bytes()), parquet.WithFooterKey(ring, redacttest.TestKeyName))
	if err != nil {
		t.Fatalf("Read() with key error: %v", err)
	}
	if !got.Equal(masked) {
		var want, have bytes.Buffer
		_ = masked.Preview(&want, 3)
		_ = got.Preview(&have, 3)
		t.Fatalf("Read() table differs\nwant:\n%s\ngot:\n%s", want.String(), have.String())
	}

	if _, err := parquet.Read(ctx, bytes.NewReader(buf.Bytes())); !errors.Is(err, parquet.ErrUnreadable) {
		t.Errorf("Read() without key error = %v, want ErrUnreadable", err)
	}

	first, _ := got.Column("name_first")
	if first.Values[0] != redact.StringValue("J******r") {
		t.Errorf("name_first[0] = %v, want J******r", first.Values[0])
	}
}

func TestRoundTrip_CodecsAgree(t *testing.T) {
	ctx := context.Background()
	plan, err := redact.DefaultPlan()
	if err != nil {
		t.Fatalf("DefaultPlan() error: %v", err)
	}

	var tables []*redact.Table
	for _, c := range []redact.Codec{json.New(), yaml.New(), msgpack.New(), bson.New()} {
		data, err := c.Marshal(map[string]any{"results": redacttest.SampleRecords()})
		if err != nil {
			t.Fatalf("%s Marshal() error: %v", c.ContentType(), err)
		}
		records, err := redact.DecodeRecords(ctx, c, data)
		if err != nil {
			t.Fatalf("%s DecodeRecords() error: %v", c.ContentType(), err)
		}
		tbl, err := plan.Project(records)
		if err != nil {
			t.Fatalf("%s Project() error: %v", c.ContentType(), err)
		}
		tables = append(tables, tbl)
	}

	for i := 1; i < len(tables); i++ {
		if !tables[i].Equal(tables[0]) {
			t.Errorf("codec %d produced a different table than json", i)
		}
	}
}
