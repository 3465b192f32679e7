// Package testing provides fixtures and fakes for testing redact and its
// pipeline.
package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/zoobzio/redact"
)

// TestKeyName is the footer key name used by fixtures.
const TestKeyName = "key128"

// TestKey returns a valid 16-byte AES key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("0123456789112345")
}

// SampleRecords returns three profiles. The first two are well formed; the
// second has no identity document value. The third has no document or city
// and carries an email without "@" and a picture URL without a scheme, which
// the redactor treats as unmaskable.
func SampleRecords() []redact.Record {
	return []redact.Record{
		{
			Gender: ptr("female"),
			Name:   redact.Name{Title: ptr("Ms"), First: ptr("Jennifer"), Last: ptr("Rhodes")},
			Location: redact.Location{
				Street:      redact.Street{Number: ptr(4271), Name: ptr("Oak Lawn Ave")},
				City:        ptr("Bendigo"),
				State:       ptr("Victoria"),
				Country:     ptr("Australia"),
				Postcode:    flex("5731"),
				Coordinates: redact.Coordinates{Latitude: flex("-42.5"), Longitude: flex("77.1")},
				Timezone:    redact.Timezone{Offset: flex("+9:30"), Description: ptr("Adelaide, Darwin")},
			},
			Email:      ptr("jennifer.rhodes@example.com"),
			Login:      redact.Login{UUID: ptr("8c5b3a1e-2f4d-4e4b-9a0c-5d1f3b2e7a10"), Username: ptr("bluebird414")},
			DOB:        redact.Birth{Date: ptr("1979-03-02T10:11:12.674Z"), Age: ptr(45)},
			Registered: redact.Registration{Date: ptr("2010-06-21T04:32:10.123Z"), Age: ptr(14)},
			Phone:      ptr("08-1234-5678"),
			Cell:       ptr("0412-345-678"),
			ID:         redact.Document{Name: ptr("TFN"), Value: ptr("123456789")},
			Picture: redact.Picture{
				Large:     ptr("https://randomuser.me/api/portraits/women/1.jpg"),
				Medium:    ptr("https://randomuser.me/api/portraits/med/women/1.jpg"),
				Thumbnail: ptr("https://randomuser.me/api/portraits/thumb/women/1.jpg"),
			},
			Nat: ptr("AU"),
		},
		{
			Gender: ptr("male"),
			Name:   redact.Name{Title: ptr("Mr"), First: ptr("Olav"), Last: ptr("Nilsen")},
			Location: redact.Location{
				Street:      redact.Street{Number: ptr(12), Name: ptr("Kirkeveien")},
				City:        ptr("Stavanger"),
				State:       ptr("Rogaland"),
				Country:     ptr("Norway"),
				Postcode:    flex("4018"),
				Coordinates: redact.Coordinates{Latitude: flex("58.97"), Longitude: flex("5.73")},
				Timezone:    redact.Timezone{Offset: flex("+1:00"), Description: ptr("Brussels, Copenhagen, Madrid, Paris")},
			},
			Email:      ptr("olav.nilsen@example.com"),
			Login:      redact.Login{UUID: ptr("f1c2d3e4-5a6b-4c7d-8e9f-0a1b2c3d4e5f"), Username: ptr("tinyfish")},
			DOB:        redact.Birth{Date: ptr("1990-12-31T23:59:59.000Z"), Age: ptr(34)},
			Registered: redact.Registration{Date: ptr("2016-02-29T12:00:00.000Z"), Age: ptr(8)},
			Phone:      ptr("53811234"),
			Cell:       ptr("987 65 432"),
			ID:         redact.Document{Name: ptr("FN")},
			Picture: redact.Picture{
				Large:     ptr("https://randomuser.me/api/portraits/men/2.jpg"),
				Medium:    ptr("https://randomuser.me/api/portraits/med/men/2.jpg"),
				Thumbnail: ptr("https://randomuser.me/api/portraits/thumb/men/2.jpg"),
			},
			Nat: ptr("NO"),
		},
		{
			Gender: ptr("female"),
			Name:   redact.Name{Title: ptr("Miss"), First: ptr("Li"), Last: ptr("X")},
			Location: redact.Location{
				Street:      redact.Street{Number: ptr(7), Name: ptr("Rue")},
				Coordinates: redact.Coordinates{Latitude: flex("0.5"), Longitude: flex("-1.5")},
			},
			Email:      ptr("not-an-email"),
			Login:      redact.Login{Username: ptr("ab")},
			DOB:        redact.Birth{Date: ptr("2001-07-04"), Age: ptr(23)},
			Registered: redact.Registration{Date: ptr("2022-01-01T00:00:00.000Z"), Age: ptr(2)},
			Phone:      ptr("12"),
			Cell:       ptr(""),
			Picture: redact.Picture{
				Large:     ptr("randomuser.me/no-scheme.jpg"),
				Medium:    ptr("https://randomuser.me/x.jpg"),
				Thumbnail: ptr("https://randomuser.me/a/b.jpg"),
			},
			Nat: ptr("FR"),
		},
	}
}

func ptr[T any](v T) *T { return &v }

func flex(v string) *redact.FlexString {
	f := redact.FlexString(v)
	return &f
}

// SampleJSON returns SampleRecords wrapped in a results envelope, the shape
// published by the random user API.
func SampleJSON(tb testing.TB) []byte {
	tb.Helper()
	data, err := json.Marshal(map[string]any{
		"results": SampleRecords(),
		"info":    map[string]any{"seed": "fixture", "results": 3, "page": 1, "version": "1.4"},
	})
	if err != nil {
		tb.Fatalf("marshal sample records: %v", err)
	}
	return data
}

// MemoryStore is an in-memory object store. It is safe for concurrent use.
type MemoryStore struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func path(bucket, key string) string {
	return bucket + "/" + key
}

// Get returns a copy of the object, or redact.ErrObjectNotFound.
func (s *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[path(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("%w: s3://%s/%s", redact.ErrObjectNotFound, bucket, key)
	}
	return append([]byte(nil), data...), nil
}

// Put stores a copy of data.
func (s *MemoryStore) Put(_ context.Context, bucket, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path(bucket, key)] = append([]byte(nil), data...)
	s.contentTypes[path(bucket, key)] = contentType
	return nil
}

// ContentType returns the content type recorded by Put.
func (s *MemoryStore) ContentType(bucket, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contentTypes[path(bucket, key)]
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
