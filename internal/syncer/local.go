package syncer

import (
	"context"
	"fmt"

	"github.com/username/timeoff-tracker/internal/gist"
	"github.com/username/timeoff-tracker/internal/kvstore"
)

const documentKey = "timeoff-tracker/document"

// LocalDocumentStore keeps the year document in the local key-value store.
// It backs the tracker when no gist is configured and serves as the offline
// fallback. The configuration section is not stored here; local settings are
// authoritative when working offline.
type LocalDocumentStore struct {
	kv kvstore.Store
}

// NewLocalDocumentStore creates a local document store.
func NewLocalDocumentStore(kv kvstore.Store) *LocalDocumentStore {
	return &LocalDocumentStore{kv: kv}
}

// ReadDocument returns the stored document, or an empty one when nothing has
// been saved yet.
func (l *LocalDocumentStore) ReadDocument() (*gist.Document, error) {
	raw, ok, err := l.kv.Get(context.Background(), documentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read local document: %w", err)
	}
	if !ok {
		return gist.NewDocument(), nil
	}
	return gist.ParseDocument([]byte(raw))
}

// PersistsConfiguration reports that this store drops the configuration
// section, so the syncer must not try to heal it here.
func (l *LocalDocumentStore) PersistsConfiguration() bool {
	return false
}

// WriteDocument stores the document without its configuration section.
func (l *LocalDocumentStore) WriteDocument(doc *gist.Document) error {
	stripped := gist.Document{Years: doc.Years}
	data, err := stripped.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode local document: %w", err)
	}
	if err := l.kv.Set(context.Background(), documentKey, string(data)); err != nil {
		return fmt.Errorf("failed to write local document: %w", err)
	}
	return nil
}
