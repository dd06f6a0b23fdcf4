package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Asset maps a download source to its web-relative destination
type Asset struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Manifest describes the web content a workflow manages
type Manifest struct {
	// BaseURL prefixes asset sources that are not absolute URLs
	BaseURL string   `yaml:"baseURL"`
	Assets  []Asset  `yaml:"assets"`
	Remove  []string `yaml:"remove"`
}

// ParseManifest decodes a YAML manifest
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// LoadManifest reads and decodes a YAML manifest file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}
