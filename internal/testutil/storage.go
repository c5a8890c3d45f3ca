package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MockReportStorage keeps uploaded objects in memory
type MockReportStorage struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	UploadErr    error
	PresignErr   error
}

// NewMockReportStorage creates an empty MockReportStorage
func NewMockReportStorage() *MockReportStorage {
	return &MockReportStorage{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// Upload stores the object body
func (m *MockReportStorage) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = body
	m.ContentTypes[objectPath] = contentType
	return objectPath, nil
}

// GeneratePresignedURL returns a fake link for a stored object
func (m *MockReportStorage) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if m.PresignErr != nil {
		return "", m.PresignErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[objectPath]; !ok {
		return "", fmt.Errorf("object %s not found", objectPath)
	}
	return fmt.Sprintf("https://reports.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}
