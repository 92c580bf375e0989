package models

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// DocumentURLGenerator resolves a stored document path into a short-lived
// signed URL. Implemented by the S3 storage service.
type DocumentURLGenerator interface {
	GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error)
}

var (
	urlGenerator DocumentURLGenerator
	registryMu   sync.RWMutex
)

// RegisterDocumentURLGenerator sets the URL generator used by AfterFind
// hooks on notice and frame documents.
func RegisterDocumentURLGenerator(generator DocumentURLGenerator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	urlGenerator = generator
}

func resolveSignedURL(tx *gorm.DB, path string, out *string) error {
	if path == "" {
		return nil
	}

	registryMu.RLock()
	generator := urlGenerator
	registryMu.RUnlock()

	if generator == nil {
		return nil
	}

	// URLs are valid for one hour
	url, err := generator.GetSignedURL(tx.Statement.Context, path, time.Hour)
	if err != nil {
		return fmt.Errorf("failed to generate signed URL: %w", err)
	}
	*out = url
	return nil
}
