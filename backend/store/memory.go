package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryGateway keeps documents in process memory. It backs local runs
// without a MongoDB instance and the test suite.
type MemoryGateway struct {
	mu   sync.RWMutex
	docs map[string]Document // "userID/collection/key" -> document
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{docs: make(map[string]Document)}
}

func memKey(userID, collection, key string) string {
	return userID + "/" + collection + "/" + key
}

func (g *MemoryGateway) Get(_ context.Context, userID, collection, key string) (Document, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	doc, ok := g.docs[memKey(userID, collection, key)]
	if !ok {
		return nil, ErrNotFound
	}

	copied := make(Document, len(doc))
	for k, v := range doc {
		copied[k] = v
	}
	return copied, nil
}

func (g *MemoryGateway) Set(_ context.Context, userID, collection, key string, fields Document) error {
	copied := make(Document, len(fields))
	for k, v := range fields {
		copied[k] = v
	}

	g.mu.Lock()
	g.docs[memKey(userID, collection, key)] = copied
	g.mu.Unlock()
	return nil
}

func (g *MemoryGateway) Update(_ context.Context, userID, collection, key string, fields Document) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := memKey(userID, collection, key)
	doc, ok := g.docs[k]
	if !ok {
		doc = make(Document, len(fields))
		g.docs[k] = doc
	}
	for field, v := range fields {
		doc[field] = v
	}
	return nil
}

func (g *MemoryGateway) Delete(_ context.Context, userID, collection, key string) error {
	g.mu.Lock()
	delete(g.docs, memKey(userID, collection, key))
	g.mu.Unlock()
	return nil
}

func (g *MemoryGateway) DeleteUser(_ context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	prefix := userID + "/"
	for k := range g.docs {
		if strings.HasPrefix(k, prefix) {
			delete(g.docs, k)
		}
	}
	return nil
}
