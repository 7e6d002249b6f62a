// Package memory provides in-memory metadata stores, used in tests and
// as a fallback when no database path is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure MetadataStore implements the store interfaces.
var (
	_ driven.GroupStore    = (*MetadataStore)(nil)
	_ driven.DocumentStore = (*MetadataStore)(nil)
	_ driven.ChunkStore    = (*MetadataStore)(nil)
)

// MetadataStore is an in-memory implementation of the metadata store ports.
type MetadataStore struct {
	mu        sync.RWMutex
	nextID    int64
	groups    map[int64]domain.Group
	documents map[string]domain.Document
	chunks    map[string][]domain.ChunkRecord
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		nextID:    1,
		groups:    make(map[int64]domain.Group),
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.ChunkRecord),
	}
}

// SaveGroup stores a new group and assigns its ID.
func (s *MetadataStore) SaveGroup(_ context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Name == group.Name {
			return domain.ErrAlreadyExists
		}
	}
	group.ID = s.nextID
	s.nextID++
	s.groups[group.ID] = *group
	return nil
}

// GetGroup retrieves a group by ID.
func (s *MetadataStore) GetGroup(_ context.Context, id int64) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &group, nil
}

// ListGroups returns all groups ordered by ID.
func (s *MetadataStore) ListGroups(_ context.Context) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]domain.Group, 0, len(s.groups))
	for id := range s.groups {
		groups = append(groups, s.groups[id])
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

// DeleteGroup removes a group and cascades to its documents and chunk records.
func (s *MetadataStore) DeleteGroup(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.groups, id)
	for docID, doc := range s.documents {
		if doc.GroupID == id {
			delete(s.documents, docID)
			delete(s.chunks, docID)
		}
	}
	return nil
}

// SaveDocument stores or updates a document.
func (s *MetadataStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *MetadataStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents in a group.
func (s *MetadataStore) ListDocuments(_ context.Context, groupID int64) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.GroupID == groupID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// DeleteDocument removes a document row.
func (s *MetadataStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// SaveChunks stores records for a document in a single batch.
func (s *MetadataStore) SaveChunks(_ context.Context, records []domain.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docID := records[0].DocumentID
	s.chunks[docID] = append(s.chunks[docID], records...)
	return nil
}

// GetChunks retrieves all records for a document, ordered by chunk index.
func (s *MetadataStore) GetChunks(_ context.Context, documentID string) ([]domain.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ChunkRecord, len(s.chunks[documentID]))
	copy(records, s.chunks[documentID])
	sort.Slice(records, func(i, j int) bool { return records[i].ChunkIndex < records[j].ChunkIndex })
	return records, nil
}

// DeleteChunks removes all records for a document.
func (s *MetadataStore) DeleteChunks(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}
