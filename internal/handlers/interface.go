package handlers

import (
	"context"
	"sync"
	"time"
)

// DocumentStorage interface for frame and notice document operations
type DocumentStorage interface {
	UploadDocument(ctx context.Context, file []byte, folder, filename, contentType string) (string, error)
	GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error)
}

var (
	documentStorage DocumentStorage
	handlerMu       sync.RWMutex
)

// RegisterDocumentStorage sets the storage backend used by upload handlers
func RegisterDocumentStorage(s DocumentStorage) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	documentStorage = s
}

// GetDocumentStorage returns the registered storage backend
func GetDocumentStorage() DocumentStorage {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return documentStorage
}
