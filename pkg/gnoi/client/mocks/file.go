package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/hdwhdw/webpath/pkg/gnoi/client"
	gnoifile "github.com/openconfig/gnoi/file"
)

// FileService is a mock implementation of FileService
type FileService struct {
	mu sync.Mutex

	// Mock behavior
	TransferToRemoteFunc func(ctx context.Context, sourceURL, webPath string) error
	StatFunc             func(ctx context.Context, webPath string) ([]*gnoifile.StatInfo, error)
	RemoveFunc           func(ctx context.Context, webPath string) error

	// Call tracking
	TransferToRemoteCalls []TransferToRemoteCall
	StatCalls             []string
	RemoveCalls           []string
}

type TransferToRemoteCall struct {
	SourceURL string
	WebPath   string
}

// NewFileService creates a new mock file service with default behaviors
func NewFileService() *FileService {
	return &FileService{
		TransferToRemoteFunc: func(ctx context.Context, sourceURL, webPath string) error {
			return nil
		},
		StatFunc: func(ctx context.Context, webPath string) ([]*gnoifile.StatInfo, error) {
			return []*gnoifile.StatInfo{{Path: webPath}}, nil
		},
		RemoveFunc: func(ctx context.Context, webPath string) error {
			return nil
		},
	}
}

// TransferToRemote implements FileService.TransferToRemote
func (f *FileService) TransferToRemote(ctx context.Context, sourceURL, webPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.TransferToRemoteCalls = append(f.TransferToRemoteCalls, TransferToRemoteCall{
		SourceURL: sourceURL,
		WebPath:   webPath,
	})

	return f.TransferToRemoteFunc(ctx, sourceURL, webPath)
}

// Stat implements FileService.Stat
func (f *FileService) Stat(ctx context.Context, webPath string) ([]*gnoifile.StatInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.StatCalls = append(f.StatCalls, webPath)
	return f.StatFunc(ctx, webPath)
}

// Remove implements FileService.Remove
func (f *FileService) Remove(ctx context.Context, webPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RemoveCalls = append(f.RemoveCalls, webPath)
	return f.RemoveFunc(ctx, webPath)
}

// GetTransferToRemoteCallCount returns the number of TransferToRemote calls
func (f *FileService) GetTransferToRemoteCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.TransferToRemoteCalls)
}

// GetLastTransferToRemoteCall returns the last TransferToRemote call
func (f *FileService) GetLastTransferToRemoteCall() (TransferToRemoteCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.TransferToRemoteCalls) == 0 {
		return TransferToRemoteCall{}, fmt.Errorf("no TransferToRemote calls recorded")
	}
	return f.TransferToRemoteCalls[len(f.TransferToRemoteCalls)-1], nil
}

// GetStatCallCount returns the number of Stat calls
func (f *FileService) GetStatCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.StatCalls)
}

// GetRemoveCallCount returns the number of Remove calls
func (f *FileService) GetRemoveCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.RemoveCalls)
}

// GetRemovedPaths returns a copy of the web paths passed to Remove, in order
func (f *FileService) GetRemovedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.RemoveCalls...)
}

// ResetCalls resets all call tracking
func (f *FileService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.TransferToRemoteCalls = nil
	f.StatCalls = nil
	f.RemoveCalls = nil
}

// Ensure FileService implements client.FileService interface
var _ client.FileService = (*FileService)(nil)
