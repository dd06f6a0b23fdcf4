package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hdwhdw/webpath/pkg/gnoi/client"
	"github.com/hdwhdw/webpath/pkg/workflow"
	"k8s.io/klog/v2"
)

func main() {
	var (
		endpoint     = flag.String("endpoint", "localhost:8080", "gNOI server address")
		manifestPath = flag.String("manifest", "manifest.yaml", "Path to the YAML manifest")
		workflowType = flag.String("workflow", "preload", "Workflow to run (preload or prune)")
	)

	klog.InitFlags(nil)
	flag.Parse()

	manifest, err := workflow.LoadManifest(*manifestPath)
	if err != nil {
		klog.ErrorS(err, "Failed to load manifest", "manifest", *manifestPath)
		os.Exit(1)
	}

	gnoiClient, err := client.NewClient(*endpoint)
	if err != nil {
		klog.ErrorS(err, "Failed to create gNOI client", "endpoint", *endpoint)
		os.Exit(1)
	}
	defer gnoiClient.Close()

	wf, err := workflow.NewWorkflow(*workflowType, gnoiClient)
	if err != nil {
		klog.ErrorS(err, "Failed to create workflow")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	klog.InfoS("Running workflow",
		"workflow", wf.GetName(),
		"endpoint", *endpoint,
		"manifest", *manifestPath)

	if err := wf.Execute(ctx, manifest); err != nil {
		klog.ErrorS(err, "Workflow failed", "workflow", wf.GetName())
		gnoiClient.Close()
		os.Exit(1)
	}

	klog.InfoS("Workflow completed", "workflow", wf.GetName())
}
