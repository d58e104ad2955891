package statestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"availability_watcher/internal/domain/availability"
	"availability_watcher/internal/infra/blobstore"
)

// document is the persisted payload.
type document struct {
	KnownDates []string `json:"knownDates"`
}

// BlobStateStore implements availability.Repository on top of a single blob.
type BlobStateStore struct {
	blob blobstore.Blob
}

func NewBlobStateStore(b blobstore.Blob) *BlobStateStore {
	return &BlobStateStore{blob: b}
}

func (s *BlobStateStore) Location() string {
	return s.blob.Location()
}

// Load returns found=false for a missing object and for an empty or null document.
func (s *BlobStateStore) Load(ctx context.Context) (availability.KnownDateSet, bool, error) {
	data, err := s.blob.Read(ctx)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return availability.NewKnownDateSet(), false, nil
		}
		return nil, false, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return availability.NewKnownDateSet(), false, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, &availability.ParseError{
			Value:  s.blob.Location(),
			Reason: fmt.Sprintf("invalid state document: %v", err),
		}
	}
	if doc.KnownDates == nil {
		return availability.NewKnownDateSet(), false, nil
	}

	set, err := availability.ParseKnown(doc.KnownDates)
	if err != nil {
		return nil, false, fmt.Errorf("state %s: %w", s.blob.Location(), err)
	}
	return set, true, nil
}

// Save overwrites the whole document with set, dates sorted ascending.
func (s *BlobStateStore) Save(ctx context.Context, set availability.KnownDateSet) error {
	data, err := Marshal(set)
	if err != nil {
		return err
	}
	return s.blob.Write(ctx, data)
}

// Marshal renders set as the persisted JSON document.
func Marshal(set availability.KnownDateSet) ([]byte, error) {
	doc := document{KnownDates: set.Strings()}
	return json.Marshal(doc)
}
