package file

import (
	"context"
	"fmt"
	"os"

	"github.com/hdwhdw/webpath/pkg/security/pathvalidator"
	"github.com/openconfig/gnoi/common"
	"github.com/openconfig/gnoi/file"
	"k8s.io/klog/v2"
)

// Service implements the File service for gNOI operations
type Service struct {
	client file.FileClient
}

// NewService creates a new File service
func NewService(client file.FileClient) *Service {
	return &Service{
		client: client,
	}
}

// DryRun reports whether DRY_RUN=true, in which case mutating calls are
// logged instead of sent
func DryRun() bool {
	return os.Getenv("DRY_RUN") == "true"
}

// TransferToRemote asks the server to download sourceURL into webPath
func (s *Service) TransferToRemote(ctx context.Context, sourceURL, webPath string) error {
	klog.InfoS("Starting file transfer via gNOI file service",
		"sourceURL", sourceURL,
		"webPath", webPath)

	if err := pathvalidator.ValidateWebPath(webPath); err != nil {
		return fmt.Errorf("invalid web path: %w", err)
	}

	// Check if DRY_RUN mode
	if DryRun() {
		klog.InfoS("DRY_RUN: Would transfer file via gNOI file.TransferToRemote",
			"sourceURL", sourceURL,
			"webPath", webPath)
		return nil
	}

	// Create TransferToRemote request
	req := &file.TransferToRemoteRequest{
		LocalPath: webPath,
		RemoteDownload: &common.RemoteDownload{
			Path:     sourceURL,
			Protocol: common.RemoteDownload_HTTP,
		},
	}

	// Execute the transfer
	resp, err := s.client.TransferToRemote(ctx, req)
	if err != nil {
		return fmt.Errorf("file transfer failed: %w", err)
	}

	klog.InfoS("File transfer completed successfully",
		"response", resp.String(),
		"webPath", webPath)

	return nil
}

// Stat returns the entries the server reports for webPath
func (s *Service) Stat(ctx context.Context, webPath string) ([]*file.StatInfo, error) {
	if err := pathvalidator.ValidateWebPath(webPath); err != nil {
		return nil, fmt.Errorf("invalid web path: %w", err)
	}

	resp, err := s.client.Stat(ctx, &file.StatRequest{Path: webPath})
	if err != nil {
		return nil, fmt.Errorf("stat failed: %w", err)
	}
	return resp.GetStats(), nil
}

// Remove deletes the file at webPath on the server
func (s *Service) Remove(ctx context.Context, webPath string) error {
	klog.InfoS("Removing file via gNOI file service", "webPath", webPath)

	if err := pathvalidator.ValidateWebPath(webPath); err != nil {
		return fmt.Errorf("invalid web path: %w", err)
	}

	if DryRun() {
		klog.InfoS("DRY_RUN: Would remove file via gNOI file.Remove", "webPath", webPath)
		return nil
	}

	if _, err := s.client.Remove(ctx, &file.RemoveRequest{RemoteFile: webPath}); err != nil {
		return fmt.Errorf("file remove failed: %w", err)
	}
	return nil
}
