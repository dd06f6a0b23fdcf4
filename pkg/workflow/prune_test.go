package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/hdwhdw/webpath/pkg/gnoi/client/mocks"
)

func TestPruneWorkflow_Execute(t *testing.T) {
	mockClient := mocks.NewClient()
	workflow := NewPruneWorkflow(mockClient)

	manifest := &Manifest{Remove: []string{"~/assets/old.css", "~/assets/old.js"}}
	if err := workflow.Execute(context.Background(), manifest); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	calls := mockClient.GetFileService().GetRemovedPaths()
	if len(calls) != 2 || calls[0] != "~/assets/old.css" || calls[1] != "~/assets/old.js" {
		t.Errorf("Unexpected Remove calls: %v", calls)
	}
}

func TestPruneWorkflow_Execute_StopsOnError(t *testing.T) {
	fileService := mocks.NewFileService()
	fileService.RemoveFunc = func(ctx context.Context, webPath string) error {
		return errors.New("not found")
	}
	mockClient := mocks.NewClientWithFileService(fileService)
	workflow := NewPruneWorkflow(mockClient)

	err := workflow.Execute(context.Background(), &Manifest{Remove: []string{"~/a", "~/b"}})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if fileService.GetRemoveCallCount() != 1 {
		t.Errorf("Expected 1 Remove call, got %d", fileService.GetRemoveCallCount())
	}
}

func TestPruneWorkflow_Execute_Empty(t *testing.T) {
	workflow := NewPruneWorkflow(mocks.NewClient())

	if err := workflow.Execute(context.Background(), &Manifest{}); err == nil {
		t.Error("Expected error for empty remove list")
	}
}
