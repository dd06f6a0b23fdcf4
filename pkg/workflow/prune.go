package workflow

import (
	"context"
	"fmt"

	"github.com/hdwhdw/webpath/pkg/gnoi/client"
	"k8s.io/klog/v2"
)

// PruneWorkflow removes the files a manifest lists under remove
type PruneWorkflow struct {
	gnoi client.Client
}

// NewPruneWorkflow creates a new prune workflow
func NewPruneWorkflow(gnoiClient client.Client) *PruneWorkflow {
	return &PruneWorkflow{
		gnoi: gnoiClient,
	}
}

// GetName returns the workflow name
func (w *PruneWorkflow) GetName() string {
	return "prune"
}

// Execute removes each listed web path in order and stops at the first failure
func (w *PruneWorkflow) Execute(ctx context.Context, manifest *Manifest) error {
	if manifest == nil || len(manifest.Remove) == 0 {
		return fmt.Errorf("no paths to remove specified in manifest")
	}

	for _, webPath := range manifest.Remove {
		if err := w.gnoi.File().Remove(ctx, webPath); err != nil {
			return fmt.Errorf("failed to remove %s: %w", webPath, err)
		}
		klog.InfoS("Removed web path", "webPath", webPath)
	}

	klog.InfoS("Prune workflow completed successfully", "removed", len(manifest.Remove))
	return nil
}
