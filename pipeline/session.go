// Package pipeline runs the redaction job: load a source document from the
// object store, redact it, write it back as an encrypted Parquet file and
// optionally verify the result.
//
// All stages run on a Session. A Session owns the encryption keys and must be
// closed when the job ends; Close wipes the keys.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zoobzio/redact"
	"github.com/zoobzio/redact/bson"
	"github.com/zoobzio/redact/json"
	"github.com/zoobzio/redact/logger"
	"github.com/zoobzio/redact/msgpack"
	"github.com/zoobzio/redact/parquet"
	"github.com/zoobzio/redact/yaml"
)

// Errors returned by a Session.
var (
	// ErrClosed indicates use of a session after Close.
	ErrClosed = errors.New("session closed")

	// ErrNoKey indicates a session opened without an encryption key.
	ErrNoKey = errors.New("no encryption key")

	// ErrVerify indicates a written file that did not read back as expected.
	ErrVerify = errors.New("verification failed")
)

// ObjectStore reads and writes whole objects. s3.Client implements it.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

type secret struct {
	name  string
	value []byte
}

type options struct {
	keys     []secret
	log      *logger.Logger
	codecs   map[string]redact.Codec
	redactor *redact.Redactor
	parquet  []parquet.Option
}

// Option configures Open.
type Option func(*options)

// WithKey registers an encryption key. The first key registered is the one
// used for writing. value is copied.
func WithKey(name string, value []byte) Option {
	return func(o *options) {
		o.keys = append(o.keys, secret{name: name, value: value})
	}
}

// WithLogger sets the logger for stage diagnostics. The default discards
// output.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithCodec decodes source objects whose key ends in ext (for example
// ".json") with c, replacing any builtin codec for that extension.
func WithCodec(ext string, c redact.Codec) Option {
	return func(o *options) {
		o.codecs[strings.ToLower(ext)] = c
	}
}

// WithRedactor replaces the redactor derived from redact.Record.
func WithRedactor(r *redact.Redactor) Option {
	return func(o *options) {
		o.redactor = r
	}
}

// WithParquetOptions passes extra options to the Parquet writer and reader,
// such as a compression codec.
func WithParquetOptions(opts ...parquet.Option) Option {
	return func(o *options) {
		o.parquet = append(o.parquet, opts...)
	}
}

func builtinCodecs() map[string]redact.Codec {
	y := yaml.New()
	return map[string]redact.Codec{
		"":         json.New(),
		".json":    json.New(),
		".yaml":    y,
		".yml":     y,
		".msgpack": msgpack.New(),
		".bson":    bson.New(),
	}
}

// Session holds the keys, codecs and redactor for one job.
// Stages may run concurrently; Close must not race with them.
type Session struct {
	id       string
	store    ObjectStore
	plan     *redact.Plan[redact.Record]
	redactor *redact.Redactor
	codecs   map[string]redact.Codec
	keys     *parquet.KeyRing
	keyName  string
	parquet  []parquet.Option
	log      *logger.Logger

	mu     sync.RWMutex
	closed bool
}

// Open prepares a session over store. At least one key is required.
// The caller must Close the session.
func Open(ctx context.Context, store ObjectStore, opts ...Option) (*Session, error) {
	o := options{
		log:    logger.Nop(),
		codecs: builtinCodecs(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.keys) == 0 {
		return nil, ErrNoKey
	}

	plan, err := redact.DefaultPlan()
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}
	if o.redactor == nil {
		o.redactor, err = redact.NewRedactor(plan.Rules())
		if err != nil {
			return nil, fmt.Errorf("build redactor: %w", err)
		}
	}

	ring := parquet.NewKeyRing()
	for _, k := range o.keys {
		if err := ring.Register(k.name, k.value); err != nil {
			ring.Wipe()
			return nil, fmt.Errorf("register key %q: %w", k.name, err)
		}
	}

	id := ulid.Make().String()
	s := &Session{
		id:       id,
		store:    store,
		plan:     plan,
		redactor: o.redactor,
		codecs:   o.codecs,
		keys:     ring,
		keyName:  o.keys[0].name,
		parquet:  o.parquet,
		log:      &logger.Logger{Logger: o.log.With().Str("session", id).Logger()},
	}
	s.log.Debug().
		Strs("keys", ring.Names()).
		Int("rules", len(s.redactor.Rules())).
		Msg("session opened")
	return s, nil
}

// ID returns the session identifier carried by every log entry.
func (s *Session) ID() string {
	return s.id
}

// Close wipes the session keys. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.keys.Wipe()
	s.log.Debug().Msg("session closed")
	return nil
}

func (s *Session) acquire() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	return nil
}

func (s *Session) release() {
	s.mu.RUnlock()
}

// codecFor picks a codec from the object key extension. Keys without an
// extension are read as JSON.
func (s *Session) codecFor(key string) (redact.Codec, error) {
	ext := strings.ToLower(path.Ext(key))
	c, ok := s.codecs[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", redact.ErrUnknownCodec, ext)
	}
	return c, nil
}

// Load reads a source object and flattens its records into a table.
func (s *Session) Load(ctx context.Context, bucket, key string) (t *redact.Table, err error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	start := time.Now()
	size := 0
	defer func() {
		rows := 0
		if t != nil {
			rows = t.NumRows()
		}
		emitLoadComplete(ctx, bucket, key, size, rows, time.Since(start), err)
	}()

	codec, err := s.codecFor(key)
	if err != nil {
		return nil, err
	}

	data, err := s.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	size = len(data)

	records, err := redact.DecodeRecords(ctx, codec, data)
	if err != nil {
		return nil, fmt.Errorf("decode s3://%s/%s: %w", bucket, key, err)
	}

	t, err = s.plan.Project(records)
	if err != nil {
		return nil, err
	}

	s.log.Stage("load").Info().
		Str("object", "s3://"+bucket+"/"+key).
		Str("content_type", codec.ContentType()).
		Int("bytes", size).
		Int("rows", t.NumRows()).
		Int("columns", t.NumColumns()).
		Msg("source loaded")
	return t, nil
}

// Redact applies the session rules to t.
func (s *Session) Redact(ctx context.Context, t *redact.Table) (*redact.Table, redact.Report, error) {
	if err := s.acquire(); err != nil {
		return nil, redact.Report{}, err
	}
	defer s.release()

	out, report, err := s.redactor.Redact(ctx, t)
	if err != nil {
		return nil, redact.Report{}, err
	}

	masked, unmaskable, absent := report.Totals()
	s.log.Stage("redact").Info().
		Int("rows", report.Rows).
		Int("masked", masked).
		Int("unmaskable", unmaskable).
		Int("absent", absent).
		Msg("table redacted")
	return out, report, nil
}

// Write encrypts t with the session key and stores it as a Parquet object.
func (s *Session) Write(ctx context.Context, t *redact.Table, bucket, key string) (err error) {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	start := time.Now()
	size := 0
	defer func() {
		rows := 0
		if t != nil {
			rows = t.NumRows()
		}
		emitWriteComplete(ctx, bucket, key, size, rows, time.Since(start), err)
	}()

	var buf bytes.Buffer
	opts := append([]parquet.Option{parquet.WithFooterKey(s.keys, s.keyName)}, s.parquet...)
	if err := parquet.Write(ctx, &buf, t, opts...); err != nil {
		return fmt.Errorf("encode s3://%s/%s: %w", bucket, key, err)
	}
	size = buf.Len()

	if err := s.store.Put(ctx, bucket, key, buf.Bytes(), parquet.ContentType); err != nil {
		return err
	}

	s.log.Stage("write").Info().
		Str("object", "s3://"+bucket+"/"+key).
		Str("key_name", s.keyName).
		Int("bytes", size).
		Msg("encrypted file written")
	return nil
}

// Verification is the outcome of a successful Verify.
type Verification struct {
	Rows    int
	Columns int
	// Keyless is the error returned when the file was read without a key.
	Keyless error
}

// Verify reads a written object back twice. With the session keys the file
// must decode to want; without them it must not decode at all.
func (s *Session) Verify(ctx context.Context, want *redact.Table, bucket, key string) (v Verification, err error) {
	if err := s.acquire(); err != nil {
		return Verification{}, err
	}
	defer s.release()

	start := time.Now()
	defer func() {
		emitVerifyComplete(ctx, bucket, key, v.Rows, time.Since(start), err)
	}()

	data, err := s.store.Get(ctx, bucket, key)
	if err != nil {
		return Verification{}, err
	}

	readOpts := append([]parquet.Option{parquet.WithFooterKey(s.keys, s.keyName)}, s.parquet...)
	got, err := parquet.Read(ctx, bytes.NewReader(data), readOpts...)
	if err != nil {
		return Verification{}, fmt.Errorf("%w: read with key: %v", ErrVerify, err)
	}
	if !got.Equal(want) {
		return Verification{}, fmt.Errorf("%w: s3://%s/%s does not match the redacted table", ErrVerify, bucket, key)
	}

	_, keyless := parquet.Read(ctx, bytes.NewReader(data), s.parquet...)
	if keyless == nil {
		return Verification{}, fmt.Errorf("%w: s3://%s/%s is readable without a key", ErrVerify, bucket, key)
	}

	v = Verification{Rows: got.NumRows(), Columns: got.NumColumns(), Keyless: keyless}
	s.log.Stage("verify").Info().
		Int("rows", v.Rows).
		Int("columns", v.Columns).
		Msg("file reads back with key")
	s.log.Stage("verify").Info().
		Err(keyless).
		Msg("cannot read encrypted data without key")
	return v, nil
}
