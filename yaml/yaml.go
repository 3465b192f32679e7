// Package yaml provides a YAML codec implementation.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/redact"
)

// ContentType is the MIME type reported by the codec.
const ContentType = "application/yaml"

// yamlCodec implements redact.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() redact.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return ContentType
}

// Marshal encodes v as YAML with two-space indentation.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the first YAML document in data into v.
// An empty input is an error rather than a zero value.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(v)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("yaml: empty document")
	}
	return err
}
