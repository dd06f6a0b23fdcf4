package mocks

import (
	"sync"

	"github.com/hdwhdw/webpath/pkg/gnoi/client"
)

// Client is an in-memory client.Client whose file service records every call
// made by a workflow
type Client struct {
	mu sync.Mutex

	fileService *FileService

	CloseFunc  func() error
	CloseCalls int
}

// NewClient returns a client backed by a FileService with default behaviors
func NewClient() *Client {
	return NewClientWithFileService(NewFileService())
}

// NewClientWithFileService wraps a preconfigured FileService, for tests that
// stub Stat or Remove before the workflow is built
func NewClientWithFileService(fileService *FileService) *Client {
	return &Client{
		fileService: fileService,
		CloseFunc:   func() error { return nil },
	}
}

// File returns the mock File service
func (m *Client) File() client.FileService {
	return m.fileService
}

// Close records the call and returns CloseFunc's result
func (m *Client) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CloseCalls++
	return m.CloseFunc()
}

// GetFileService returns the mock file service for test assertions
func (m *Client) GetFileService() *FileService {
	return m.fileService
}

// ResetCalls clears the call history of the client and its file service
func (m *Client) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fileService.ResetCalls()
	m.CloseCalls = 0
}

var _ client.Client = (*Client)(nil)
