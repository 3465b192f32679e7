// Package bson provides a BSON codec implementation.
//
// BSON documents must be maps at the top level, so records travel inside a
// redact.Envelope rather than as a bare array.
package bson

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/zoobzio/redact"
)

// ContentType is the MIME type reported by the codec.
const ContentType = "application/bson"

// bsonCodec implements redact.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() redact.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return ContentType
}

// Marshal encodes v as a BSON document.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes a BSON document into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}
