package pathvalidator

import (
	"fmt"
	"strings"

	"github.com/hdwhdw/webpath/pkg/webpath"
)

// ValidateWebPath validates a web-relative path received from a remote caller.
// Only sentinel-rooted paths with forward slashes and no dot segments are allowed.
func ValidateWebPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("web path cannot be empty")
	}

	if !strings.HasPrefix(path, webpath.Sentinel) {
		return fmt.Errorf("web path must start with %s, got: %s", webpath.Sentinel, path)
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("web path must not contain NUL bytes")
	}

	if strings.Contains(path, `\`) {
		return fmt.Errorf("web path must use forward slashes, got: %s", path)
	}

	// Reject traversal outright rather than cleaning it away
	for _, segment := range strings.Split(strings.TrimPrefix(path, webpath.Sentinel), "/") {
		if segment == "." || segment == ".." {
			return fmt.Errorf("web path must not contain dot segments, got: %s", path)
		}
	}

	return nil
}
