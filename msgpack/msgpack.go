// Package msgpack provides a MessagePack codec implementation.
//
// Struct fields are keyed by their json tag so that records produced by the
// JSON source round-trip through MessagePack under the same names.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/zoobzio/redact"
)

// ContentType is the MIME type reported by the codec.
const ContentType = "application/msgpack"

// msgpackCodec implements redact.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() redact.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return ContentType
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
