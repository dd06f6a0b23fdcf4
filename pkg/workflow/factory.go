package workflow

import (
	"context"
	"fmt"

	"github.com/hdwhdw/webpath/pkg/gnoi/client"
)

// Workflow applies a manifest to a remote web root
type Workflow interface {
	GetName() string
	Execute(ctx context.Context, manifest *Manifest) error
}

// NewWorkflow creates a workflow instance by type
func NewWorkflow(workflowType string, gnoiClient client.Client) (Workflow, error) {
	switch workflowType {
	case "preload":
		return NewPreloadWorkflow(gnoiClient), nil
	case "prune":
		return NewPruneWorkflow(gnoiClient), nil
	default:
		return nil, fmt.Errorf("unknown workflow type: %s", workflowType)
	}
}
