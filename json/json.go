// Package json provides a JSON codec implementation.
//
// Source exports are decoded with encoding/json. A leading UTF-8 byte order
// mark, which some object store uploads carry, is ignored.
package json

import (
	"bytes"
	"encoding/json"

	"github.com/zoobzio/redact"
)

// ContentType is the MIME type reported by the codec.
const ContentType = "application/json"

var bom = []byte{0xEF, 0xBB, 0xBF}

// jsonCodec implements redact.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() redact.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return ContentType
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(bytes.TrimPrefix(data, bom), v)
}
