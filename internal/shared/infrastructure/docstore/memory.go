package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. Documents are copied through JSON on
// the way in and out so callers never share maps with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

// CreateOrReplace writes the whole document.
func (s *MemoryStore) CreateOrReplace(ctx context.Context, collection, id string, fields Fields) error {
	if err := validate("create", collection, id, true); err != nil {
		return err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return failure(KindInvalid, "create", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		s.collections[collection] = docs
	}
	docs[id] = data
	return nil
}

// Patch merges fields into an existing document.
func (s *MemoryStore) Patch(ctx context.Context, collection, id string, fields Fields) error {
	if err := validate("patch", collection, id, true); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.collections[collection][id]
	if !ok {
		return failure(KindNotFound, "patch", collection, id, nil)
	}
	current, err := decode(data)
	if err != nil {
		return failure(KindInvalid, "patch", collection, id, err)
	}
	maps.Copy(current, fields)
	merged, err := json.Marshal(current)
	if err != nil {
		return failure(KindInvalid, "patch", collection, id, err)
	}
	s.collections[collection][id] = merged
	return nil
}

// Remove deletes a document.
func (s *MemoryStore) Remove(ctx context.Context, collection, id string) error {
	if err := validate("remove", collection, id, true); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

// Get reads one document.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Fields, error) {
	if err := validate("get", collection, id, true); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, failure(KindNotFound, "get", collection, id, nil)
	}
	fields, err := decode(data)
	if err != nil {
		return nil, failure(KindInvalid, "get", collection, id, err)
	}
	return fields, nil
}

// QueryOrdered returns documents ordered by sortField.
func (s *MemoryStore) QueryOrdered(ctx context.Context, collection, sortField string, dir Direction, limit int) ([]Document, error) {
	if err := validateQuery(collection, sortField, dir); err != nil {
		return nil, err
	}

	s.mu.RLock()
	docs := make([]Document, 0, len(s.collections[collection]))
	for id, data := range s.collections[collection] {
		fields, err := decode(data)
		if err != nil {
			s.mu.RUnlock()
			return nil, failure(KindInvalid, "query", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i].Fields[sortField], docs[j].Fields[sortField]
		aok, bok := a != nil, b != nil
		switch {
		case aok != bok:
			return aok
		case !aok:
			return docs[i].ID < docs[j].ID
		}
		c := compareValues(a, b)
		if c == 0 {
			return docs[i].ID < docs[j].ID
		}
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func decode(data []byte) (Fields, error) {
	fields := Fields{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// compareValues orders JSON values: numbers numerically, strings
// lexically, and mixed types by their type name.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	}
	at, bt := fmt.Sprintf("%T", a), fmt.Sprintf("%T", b)
	switch {
	case at < bt:
		return -1
	case at > bt:
		return 1
	}
	return 0
}
