package workflow

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hdwhdw/webpath/pkg/gnoi/client"
	"k8s.io/klog/v2"
)

const (
	defaultBaseURL = "http://localhost:8080/assets/"
)

// PreloadWorkflow downloads every manifest asset into its web-relative target
// using gnoi.file.TransferToRemote, then confirms it with Stat. In dry-run mode
// the confirmation is skipped.
type PreloadWorkflow struct {
	gnoi client.Client
}

// NewPreloadWorkflow creates a new preload workflow
func NewPreloadWorkflow(gnoiClient client.Client) *PreloadWorkflow {
	return &PreloadWorkflow{
		gnoi: gnoiClient,
	}
}

// GetName returns the workflow name
func (w *PreloadWorkflow) GetName() string {
	return "preload"
}

// Execute runs the preload workflow
func (w *PreloadWorkflow) Execute(ctx context.Context, manifest *Manifest) error {
	if manifest == nil || len(manifest.Assets) == 0 {
		return fmt.Errorf("no assets specified in manifest")
	}

	// Validate everything up front so a bad entry does not leave a partial preload
	for i, asset := range manifest.Assets {
		if asset.Source == "" {
			return fmt.Errorf("asset %d: source not specified", i)
		}
		if asset.Target == "" {
			return fmt.Errorf("asset %d: target not specified", i)
		}
	}

	for _, asset := range manifest.Assets {
		sourceURL := w.constructSourceURL(manifest.BaseURL, asset.Source)

		klog.InfoS("Preloading asset",
			"sourceURL", sourceURL,
			"target", asset.Target)

		if err := w.gnoi.File().TransferToRemote(ctx, sourceURL, asset.Target); err != nil {
			return fmt.Errorf("failed to transfer %s: %w", asset.Target, err)
		}

		// Nothing was transferred, so there is nothing to confirm
		if client.DryRun() {
			continue
		}

		stats, err := w.gnoi.File().Stat(ctx, asset.Target)
		if err != nil {
			return fmt.Errorf("failed to verify %s: %w", asset.Target, err)
		}
		if len(stats) == 0 {
			return fmt.Errorf("failed to verify %s: no stat returned", asset.Target)
		}

		klog.InfoS("Preloaded asset",
			"target", stats[0].GetPath(),
			"size", stats[0].GetSize())
	}

	klog.InfoS("Preload workflow completed successfully", "assets", len(manifest.Assets))
	return nil
}

// constructSourceURL resolves source against the manifest base URL, the
// ASSET_BASE_URL environment variable or the default, in that order
func (w *PreloadWorkflow) constructSourceURL(baseURL, source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}

	if baseURL == "" {
		baseURL = os.Getenv("ASSET_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL // fallback for testing
	}

	// Ensure trailing slash
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return baseURL + strings.TrimPrefix(source, "/")
}
