package redact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// Record is one nested user profile as published by the random user API.
// Field names lower-case to the source keys, so the yaml and bson codecs
// need no tags of their own.
//
// Every projected leaf is a pointer: a null or missing source field stays
// nil and projects to a null cell.
type Record struct {
	Gender     *string      `json:"gender" column:"gender"`
	Name       Name         `json:"name" column:"name"`
	Location   Location     `json:"location"`
	Email      *string      `json:"email" column:"email" redact:"email"`
	Login      Login        `json:"login"`
	DOB        Birth        `json:"dob" column:"dob"`
	Registered Registration `json:"registered" column:"registered"`
	Phone      *string      `json:"phone" column:"phone" redact:"number"`
	Cell       *string      `json:"cell" column:"cell" redact:"number"`
	ID         Document     `json:"id" column:"id"`
	Picture    Picture      `json:"picture" column:"picture"`
	Nat        *string      `json:"nat" column:"nationality"`
}

// Name is the identity group of a profile.
type Name struct {
	Title *string `json:"title" column:"title"`
	First *string `json:"first" column:"first" redact:"name"`
	Last  *string `json:"last" column:"last" redact:"name"`
}

// Location is the address group of a profile.
type Location struct {
	Street      Street      `json:"street" column:"street"`
	City        *string     `json:"city" column:"city"`
	State       *string     `json:"state" column:"state"`
	Country     *string     `json:"country" column:"country"`
	Postcode    *FlexString `json:"postcode" column:"postcode"`
	Coordinates Coordinates `json:"coordinates"`
	Timezone    Timezone    `json:"timezone" column:"timezone"`
}

// Street is a street number and name.
type Street struct {
	Number *int    `json:"number" column:"number" redact:"number:1"`
	Name   *string `json:"name" column:"name" redact:"name"`
}

// Coordinates are published as decimal strings.
type Coordinates struct {
	Latitude  *FlexString `json:"latitude" column:"latitude" redact:"round"`
	Longitude *FlexString `json:"longitude" column:"longitude" redact:"round"`
}

// Timezone is a UTC offset and its description.
type Timezone struct {
	Offset      *FlexString `json:"offset" column:"offset"`
	Description *string     `json:"description" column:"description"`
}

// Login holds the account identifiers. Password material is never decoded.
type Login struct {
	UUID     *string `json:"uuid" column:"login_uuid"`
	Username *string `json:"username" column:"username" redact:"name"`
}

// Birth is the date of birth and current age.
type Birth struct {
	Date *string `json:"date" column:"date" redact:"date"`
	Age  *int    `json:"age" column:"age"`
}

// Registration is the registration date and account age.
type Registration struct {
	Date *string `json:"date" column:"date"`
	Age  *int    `json:"age" column:"age"`
}

// Document is an identification document. Value is null for some
// nationalities.
type Document struct {
	Name  *string `json:"name" column:"name" redact:"name"`
	Value *string `json:"value" column:"value" redact:"name"`
}

// Picture holds three image URLs.
type Picture struct {
	Large     *string `json:"large" column:"large" redact:"website"`
	Medium    *string `json:"medium" column:"medium" redact:"website"`
	Thumbnail *string `json:"thumbnail" column:"thumbnail" redact:"website"`
}

// Envelope is the random user API response shape. Info is not decoded.
// Results is nil when the document has no results array.
type Envelope struct {
	Results *[]Record `json:"results"`
}

var errNoResults = errors.New("document has no results array")

// DecodeRecords decodes either an envelope with a results array or a bare
// array of records. An object without a results array is a CodecError.
func DecodeRecords(ctx context.Context, c Codec, data []byte) ([]Record, error) {
	var env Envelope
	envErr := c.Unmarshal(data, &env)
	if envErr == nil && env.Results != nil {
		emitDecodeComplete(ctx, c.ContentType(), len(*env.Results), nil)
		return *env.Results, nil
	}
	if envErr == nil {
		envErr = errNoResults
	}

	var records []Record
	if err := c.Unmarshal(data, &records); err != nil {
		decodeErr := newCodecError(c.ContentType(), envErr)
		emitDecodeComplete(ctx, c.ContentType(), 0, decodeErr)
		return nil, decodeErr
	}
	emitDecodeComplete(ctx, c.ContentType(), len(records), nil)
	return records, nil
}

// FlexString is a text field that the source sometimes publishes as a
// number (postcodes, coordinates, offsets). Every codec decodes both forms
// into the same text.
type FlexString string

func (s *FlexString) set(v any) error {
	switch x := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = FlexString(x)
	case int:
		*s = FlexString(strconv.Itoa(x))
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		*s = FlexString(fmt.Sprint(x))
	case float32:
		*s = FlexString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case float64:
		*s = FlexString(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return fmt.Errorf("cannot decode %T into text", v)
	}
	return nil
}

// UnmarshalJSON accepts a JSON string or number.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (s *FlexString) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", value.Line)
	}
	if value.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = FlexString(value.Value)
	return nil
}

// DecodeMsgpack accepts a string or numeric msgpack value.
func (s *FlexString) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	return s.set(v)
}

// UnmarshalBSONValue accepts a string or numeric BSON value.
func (s *FlexString) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		return s.set(rv.StringValue())
	case bsontype.Int32:
		return s.set(rv.Int32())
	case bsontype.Int64:
		return s.set(rv.Int64())
	case bsontype.Double:
		return s.set(rv.Double())
	case bsontype.Null, bsontype.Undefined:
		return s.set(nil)
	default:
		return fmt.Errorf("cannot decode bson %s into text", t)
	}
}
