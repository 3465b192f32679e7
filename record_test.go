package redact_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/zoobzio/redact"
	redactjson "github.com/zoobzio/redact/json"
)

const envelope = `{
  "results": [
    {
      "gender": "female",
      "name": {"title": "Ms", "first": "Jennifer", "last": "Rhodes"},
      "location": {
        "street": {"number": 4271, "name": "Oak Lawn Ave"},
        "city": "Bendigo",
        "state": "Victoria",
        "country": "Australia",
        "postcode": 5731,
        "coordinates": {"latitude": "-42.5", "longitude": 77.1},
        "timezone": {"offset": "+9:30", "description": "Adelaide, Darwin"}
      },
      "email": "jennifer.rhodes@example.com",
      "login": {"uuid": "8c5b3a1e", "username": "bluebird414", "password": "hunter2"},
      "dob": {"date": "1979-03-02T10:11:12.674Z", "age": 45},
      "registered": {"date": "2010-06-21T04:32:10.123Z", "age": 14},
      "phone": "08-1234-5678",
      "cell": "0412-345-678",
      "id": {"name": "TFN", "value": null},
      "picture": {"large": "https://randomuser.me/l.jpg", "medium": "https://randomuser.me/m.jpg", "thumbnail": "https://randomuser.me/t.jpg"},
      "nat": "AU"
    }
  ],
  "info": {"seed": "abc", "results": 1, "page": 1, "version": "1.4"}
}`

func TestDecodeRecords_Envelope(t *testing.T) {
	records, err := redact.DecodeRecords(context.Background(), redactjson.New(), []byte(envelope))
	if err != nil {
		t.Fatalf("DecodeRecords() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("DecodeRecords() = %d records, want 1", len(records))
	}

	r := records[0]
	if r.Name.First == nil || *r.Name.First != "Jennifer" {
		t.Errorf("Name.First = %q, want %q", deref(r.Name.First), "Jennifer")
	}
	if r.Location.Street.Number == nil || *r.Location.Street.Number != 4271 {
		t.Errorf("Street.Number = %d, want 4271", deref(r.Location.Street.Number))
	}
	if r.Location.Postcode == nil || *r.Location.Postcode != "5731" {
		t.Errorf("Postcode = %q, want %q", deref(r.Location.Postcode), "5731")
	}
	if r.Location.Coordinates.Longitude == nil || *r.Location.Coordinates.Longitude != "77.1" {
		t.Errorf("Longitude = %q, want %q", deref(r.Location.Coordinates.Longitude), "77.1")
	}
	if r.ID.Value != nil {
		t.Errorf("ID.Value = %q, want nil", *r.ID.Value)
	}
	if r.Registered.Age == nil || *r.Registered.Age != 14 {
		t.Errorf("Registered.Age = %d, want 14", deref(r.Registered.Age))
	}
}

func TestDecodeRecords_BareArray(t *testing.T) {
	data := []byte(`[{"name": {"first": "Olav"}}, {"name": {"first": "Li"}}]`)

	records, err := redact.DecodeRecords(context.Background(), redactjson.New(), data)
	if err != nil {
		t.Fatalf("DecodeRecords() error: %v", err)
	}
	if len(records) != 2 || deref(records[1].Name.First) != "Li" {
		t.Errorf("DecodeRecords() = %+v", records)
	}
}

func TestDecodeRecords_Invalid(t *testing.T) {
	for _, doc := range []string{`{"results": [`, `"just a string"`, `{"results": "nope"}`, `{}`, `{"results": null}`, `{"error": "Uh oh"}`} {
		_, err := redact.DecodeRecords(context.Background(), redactjson.New(), []byte(doc))
		if !errors.Is(err, redact.ErrDecode) {
			t.Errorf("DecodeRecords(%q) error = %v, want ErrDecode", doc, err)
		}
		var ce *redact.CodecError
		if !errors.As(err, &ce) || ce.ContentType != redactjson.ContentType {
			t.Errorf("DecodeRecords(%q) should return a CodecError for %s", doc, redactjson.ContentType)
		}
	}
}

// deref returns the zero value for nil.
func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func TestDecodeRecords_NullsProjectAsNull(t *testing.T) {
	data := []byte(`[
	  {"name": {"first": null, "last": "Rhodes"}, "email": null, "phone": null,
	   "location": {"postcode": null, "coordinates": {"latitude": null}},
	   "registered": {"age": null}},
	  {"name": {"first": "Li"}, "email": "li@example.com", "registered": {"age": 8}}
	]`)
	ctx := context.Background()

	records, err := redact.DecodeRecords(ctx, redactjson.New(), data)
	if err != nil {
		t.Fatalf("DecodeRecords() error: %v", err)
	}
	plan, err := redact.DefaultPlan()
	if err != nil {
		t.Fatalf("DefaultPlan() error: %v", err)
	}
	tbl, err := plan.Project(records)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}

	for _, name := range []string{"name_first", "email", "phone", "postcode", "latitude", "registered_age", "cell", "dob_age"} {
		col, _ := tbl.Column(name)
		if !col.Values[0].IsNull() {
			t.Errorf("%s[0] = %v, want NULL", name, col.Values[0])
		}
	}

	r, err := redact.NewRedactor(plan.Rules())
	if err != nil {
		t.Fatalf("NewRedactor() error: %v", err)
	}
	out, report, err := r.Redact(ctx, tbl)
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}

	email, _ := report.Column("email")
	if email.Absent != 1 || email.Unmaskable != 0 || email.Masked != 1 {
		t.Errorf("email report = %+v, want 1 masked, 0 unmaskable, 1 absent", email)
	}
	first, _ := out.Column("name_first")
	if !first.Values[0].IsNull() || first.Values[1] != redact.StringValue("L*") {
		t.Errorf("name_first = %v, want [NULL L*]", first.Values)
	}

	avg, ok, err := redact.AverageInt(out, "registered_age")
	if err != nil || !ok || avg != 8 {
		t.Errorf("AverageInt(registered_age) = %v, %v, %v, want 8 over non-null rows", avg, ok, err)
	}
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected redact.FlexString
	}{
		{`"4018"`, "4018"},
		{`4018`, "4018"},
		{`-42.5`, "-42.5"},
		{`1e3`, "1e3"},
		{`null`, ""},
		{`"N7 9QH"`, "N7 9QH"},
	}

	for _, tt := range tests {
		var s redact.FlexString
		if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.input, err)
			continue
		}
		if s != tt.expected {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, s, tt.expected)
		}
	}

	var s redact.FlexString
	if err := json.Unmarshal([]byte(`{"a": 1}`), &s); err == nil {
		t.Error("Unmarshal(object) should fail")
	}
}
