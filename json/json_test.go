package json

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/redact"
)

const envelope = `{
  "results": [
    {
      "gender": "female",
      "name": {"title": "Ms", "first": "Jennifer", "last": "Rhodes"},
      "location": {
        "street": {"number": 4271, "name": "Oak Lawn Ave"},
        "city": "Bendigo",
        "postcode": 57314,
        "coordinates": {"latitude": "-42.5", "longitude": 77.1},
        "timezone": {"offset": "+9:30", "description": "Adelaide, Darwin"}
      },
      "email": "jennifer.rhodes@example.com",
      "login": {"uuid": "1f0e", "username": "bluebird", "password": "hunter2"},
      "dob": {"date": "1979-03-02T10:11:12.000Z", "age": 45},
      "id": {"name": "TFN", "value": null}
    }
  ],
  "info": {"seed": "abc", "results": 1}
}`

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", New().ContentType())
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	data, err := c.Marshal(payload{Name: "test", Value: 42})
	require.NoError(t, err)

	var restored payload
	require.NoError(t, c.Unmarshal(data, &restored))
	assert.Equal(t, payload{Name: "test", Value: 42}, restored)
}

func TestDecodeRecords_Envelope(t *testing.T) {
	records, err := redact.DecodeRecords(context.Background(), New(), []byte(envelope))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Jennifer", *r.Name.First)
	assert.Equal(t, 4271, *r.Location.Street.Number)
	assert.Equal(t, redact.FlexString("57314"), *r.Location.Postcode)
	assert.Equal(t, redact.FlexString("-42.5"), *r.Location.Coordinates.Latitude)
	assert.Equal(t, redact.FlexString("77.1"), *r.Location.Coordinates.Longitude)
	assert.Equal(t, "bluebird", *r.Login.Username)
	assert.Equal(t, 45, *r.DOB.Age)
	assert.Nil(t, r.ID.Value)
	assert.Nil(t, r.Phone, "missing fields stay nil")
}

func TestDecodeRecords_BareArray(t *testing.T) {
	data := []byte(`[{"email": "a@b.c"}, {"email": "d@e.f"}]`)

	records, err := redact.DecodeRecords(context.Background(), New(), data)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "d@e.f", *records[1].Email)
}

func TestDecodeRecords_ByteOrderMark(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, envelope...)

	records, err := redact.DecodeRecords(context.Background(), New(), data)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDecodeRecords_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated", `{"results": [`},
		{"scalar", `42`},
		{"wrong postcode", `{"results": [{"location": {"postcode": {"a": 1}}}]}`},
		{"empty", ``},
		{"object without results", `{}`},
		{"error body", `{"error": "Uh oh, something has gone wrong."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := redact.DecodeRecords(context.Background(), New(), []byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, redact.ErrDecode)

			var codecErr *redact.CodecError
			require.ErrorAs(t, err, &codecErr)
			assert.Equal(t, ContentType, codecErr.ContentType)
		})
	}
}
