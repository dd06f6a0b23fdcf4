package webpath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"k8s.io/klog/v2/ktesting"
)

func newTestTranslator(t *testing.T, root string, opts ...Option) *Translator {
	t.Helper()
	logger, _ := ktesting.NewTestContext(t)
	translator, err := New(root, append([]Option{WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", root, err)
	}
	return translator
}

func TestNew(t *testing.T) {
	translator := newTestTranslator(t, "/srv/www")

	if translator.Root() != "/srv/www" {
		t.Errorf("Expected root /srv/www, got %s", translator.Root())
	}
	if translator.Fs() == nil {
		t.Error("Expected a default filesystem")
	}
}

func TestNew_WithoutLogger(t *testing.T) {
	translator, err := New(`c:\temp`, WithSeparator('\\'))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := translator.ToFileSystemPath("~/Folder1/Folder2")
	if err != nil {
		t.Fatalf("ToFileSystemPath failed: %v", err)
	}
	if result != `c:\temp\Folder1\Folder2` {
		t.Errorf("Expected %s, got %s", `c:\temp\Folder1\Folder2`, result)
	}
}

func TestNew_InvalidRoot(t *testing.T) {
	for _, root := range []string{"", " ", "\t\n", "   "} {
		t.Run("root_"+root, func(t *testing.T) {
			translator, err := New(root)
			if err == nil {
				t.Fatalf("Expected error for root %q", root)
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
			if translator != nil {
				t.Error("Expected nil translator on error")
			}
		})
	}
}

func TestNew_RootStoredVerbatim(t *testing.T) {
	translator := newTestTranslator(t, "/does/not/exist//")

	if translator.Root() != "/does/not/exist//" {
		t.Errorf("Expected root to be stored verbatim, got %s", translator.Root())
	}
}

func TestToFileSystemPath(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		sep      byte
		webPath  string
		expected string
	}{
		{
			name:     "windows root",
			root:     `c:\temp`,
			sep:      '\\',
			webPath:  "~/Folder1/Folder2",
			expected: `c:\temp\Folder1\Folder2`,
		},
		{
			name:     "windows root with trailing separator",
			root:     `c:\temp\`,
			sep:      '\\',
			webPath:  "~/Folder1/Folder2",
			expected: `c:\temp\Folder1\Folder2`,
		},
		{
			name:     "windows doubled slashes",
			root:     `C:\temp`,
			sep:      '\\',
			webPath:  "~/Folder1//Folder2///fake.txt",
			expected: `C:\temp\Folder1\Folder2\fake.txt`,
		},
		{
			name:     "unix root",
			root:     "/srv/www",
			sep:      '/',
			webPath:  "~/assets/site.css",
			expected: "/srv/www/assets/site.css",
		},
		{
			name:     "unix root with trailing slash",
			root:     "/srv/www/",
			sep:      '/',
			webPath:  "~/assets//site.css",
			expected: "/srv/www/assets/site.css",
		},
		{
			name:     "sentinel only",
			root:     "/srv/www",
			sep:      '/',
			webPath:  "~/",
			expected: "/srv/www/",
		},
		{
			name:     "trailing slash kept",
			root:     "/srv/www",
			sep:      '/',
			webPath:  "~/assets/",
			expected: "/srv/www/assets/",
		},
		{
			name:     "filesystem root",
			root:     "/",
			sep:      '/',
			webPath:  "~/index.html",
			expected: "/index.html",
		},
		{
			name:     "no sentinel is not rooted",
			root:     "/srv/www",
			sep:      '/',
			webPath:  "assets//site.css",
			expected: "assets/site.css",
		},
		{
			name:     "no sentinel windows",
			root:     `c:\temp`,
			sep:      '\\',
			webPath:  "/Folder1//Folder2",
			expected: `\Folder1\Folder2`,
		},
		{
			name:     "tilde without slash is not a sentinel",
			root:     "/srv/www",
			sep:      '/',
			webPath:  "~assets/site.css",
			expected: "~assets/site.css",
		},
		{
			name:     "dot segments are not resolved",
			root:     "/srv/www",
			sep:      '/',
			webPath:  "~/a/../b",
			expected: "/srv/www/a/../b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translator := newTestTranslator(t, tt.root, WithSeparator(tt.sep))

			result, err := translator.ToFileSystemPath(tt.webPath)
			if err != nil {
				t.Fatalf("ToFileSystemPath(%q) failed: %v", tt.webPath, err)
			}
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestToFileSystemPath_Idempotent(t *testing.T) {
	translator := newTestTranslator(t, "/srv/www", WithSeparator('/'))

	paths := []string{
		"/srv/www/assets/site.css",
		"/srv/www/a/b/c",
		"relative/path",
	}

	for _, p := range paths {
		result, err := translator.ToFileSystemPath(p)
		if err != nil {
			t.Fatalf("ToFileSystemPath(%q) failed: %v", p, err)
		}
		if result != p {
			t.Errorf("Expected normalized path %s to be unchanged, got %s", p, result)
		}
	}
}

func TestToWebRelativePath(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		sep      byte
		fullPath string
		expected string
	}{
		{
			name:     "windows directory",
			root:     `c:\temp`,
			sep:      '\\',
			fullPath: `c:\temp\Folder1\Folder2`,
			expected: "~/Folder1/Folder2",
		},
		{
			name:     "windows root with trailing separator",
			root:     `c:\temp\`,
			sep:      '\\',
			fullPath: `c:\temp\Folder1\Folder2\fake.txt`,
			expected: "~/Folder1/Folder2/fake.txt",
		},
		{
			name:     "unix file",
			root:     "/srv/www",
			sep:      '/',
			fullPath: "/srv/www/assets/site.css",
			expected: "~/assets/site.css",
		},
		{
			name:     "root itself",
			root:     "/srv/www",
			sep:      '/',
			fullPath: "/srv/www",
			expected: "~/",
		},
		{
			name:     "root absent only converts separators",
			root:     `c:\temp`,
			sep:      '\\',
			fullPath: `d:\other\file.txt`,
			expected: "d:/other/file.txt",
		},
		{
			name:     "root absent unix",
			root:     "/srv/www",
			sep:      '/',
			fullPath: "/var/log//app.log",
			expected: "/var/log/app.log",
		},
		{
			name:     "first occurrence is replaced even when not a prefix",
			root:     "/data",
			sep:      '/',
			fullPath: "/mnt/data/x",
			expected: "/mnt~/x",
		},
		{
			name:     "only first occurrence is replaced",
			root:     "/data",
			sep:      '/',
			fullPath: "/data/backup/data/x",
			expected: "~/backup/data/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translator := newTestTranslator(t, tt.root, WithSeparator(tt.sep))

			fileResult, err := translator.FileToWebRelativePath(NewFile(afero.NewMemMapFs(), tt.fullPath))
			if err != nil {
				t.Fatalf("FileToWebRelativePath failed: %v", err)
			}
			if fileResult != tt.expected {
				t.Errorf("Expected file path %s, got %s", tt.expected, fileResult)
			}

			dirResult, err := translator.DirectoryToWebRelativePath(NewDirectory(afero.NewMemMapFs(), tt.fullPath))
			if err != nil {
				t.Fatalf("DirectoryToWebRelativePath failed: %v", err)
			}
			if dirResult != tt.expected {
				t.Errorf("Expected directory path %s, got %s", tt.expected, dirResult)
			}
		})
	}
}

func TestGetDirectory_RoundTrip(t *testing.T) {
	translator := newTestTranslator(t, `c:\temp`, WithSeparator('\\'), WithFs(afero.NewMemMapFs()))

	dir, err := translator.GetDirectory("~/Folder1/Folder2")
	if err != nil {
		t.Fatalf("GetDirectory failed: %v", err)
	}
	if dir.FullName() != `c:\temp\Folder1\Folder2` {
		t.Errorf("Expected %s, got %s", `c:\temp\Folder1\Folder2`, dir.FullName())
	}

	webPath, err := translator.DirectoryToWebRelativePath(dir)
	if err != nil {
		t.Fatalf("DirectoryToWebRelativePath failed: %v", err)
	}
	if webPath != "~/Folder1/Folder2" {
		t.Errorf("Expected ~/Folder1/Folder2, got %s", webPath)
	}

	back, err := translator.ToFileSystemPath(webPath)
	if err != nil {
		t.Fatalf("ToFileSystemPath failed: %v", err)
	}
	if back != dir.FullName() {
		t.Errorf("Expected round trip to %s, got %s", dir.FullName(), back)
	}
}

func TestGetFile_EndToEnd(t *testing.T) {
	tests := []struct {
		name string
		fs   func(t *testing.T) (afero.Fs, string)
	}{
		{
			name: "os filesystem",
			fs: func(t *testing.T) (afero.Fs, string) {
				return afero.NewOsFs(), t.TempDir()
			},
		},
		{
			name: "memory filesystem",
			fs: func(t *testing.T) (afero.Fs, string) {
				return afero.NewMemMapFs(), filepath.Join(string(filepath.Separator), "srv", "www")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, root := tt.fs(t)
			translator := newTestTranslator(t, root, WithFs(fs))

			dir, err := translator.GetDirectory("~/Folder1/Folder2")
			if err != nil {
				t.Fatalf("GetDirectory failed: %v", err)
			}
			if dir.Exists() {
				t.Fatal("Directory should not exist yet")
			}
			if err := dir.Create(); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if !dir.Exists() {
				t.Fatal("Directory should exist after Create")
			}

			fakePath := dir.FullName() + string(filepath.Separator) + "fake.txt"
			if err := afero.WriteFile(fs, fakePath, []byte("some content"), 0644); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}

			file, err := translator.GetFile("~/Folder1/Folder2/fake.txt")
			if err != nil {
				t.Fatalf("GetFile failed: %v", err)
			}
			if !file.Exists() {
				t.Error("Expected file to exist")
			}

			webPath, err := translator.FileToWebRelativePath(file)
			if err != nil {
				t.Fatalf("FileToWebRelativePath failed: %v", err)
			}
			if webPath != "~/Folder1/Folder2/fake.txt" {
				t.Errorf("Expected ~/Folder1/Folder2/fake.txt, got %s", webPath)
			}

			toFs, err := translator.ToFileSystemPath(webPath)
			if err != nil {
				t.Fatalf("ToFileSystemPath failed: %v", err)
			}
			if toFs != fakePath {
				t.Errorf("Expected %s, got %s", fakePath, toFs)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	translator := newTestTranslator(t, `c:\temp`, WithFs(afero.NewMemMapFs()))

	invalid := map[string]func() error{
		"ToFileSystemPath": func() error {
			_, err := translator.ToFileSystemPath("")
			return err
		},
		"ToFileSystemPath whitespace": func() error {
			_, err := translator.ToFileSystemPath("  ")
			return err
		},
		"GetFile": func() error {
			_, err := translator.GetFile("")
			return err
		},
		"GetDirectory": func() error {
			_, err := translator.GetDirectory("\t")
			return err
		},
	}
	for name, call := range invalid {
		t.Run(name, func(t *testing.T) {
			err := call()
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	if _, err := translator.FileToWebRelativePath(nil); !errors.Is(err, ErrNullReference) {
		t.Errorf("Expected ErrNullReference for nil file, got %v", err)
	}
	if _, err := translator.DirectoryToWebRelativePath(nil); !errors.Is(err, ErrNullReference) {
		t.Errorf("Expected ErrNullReference for nil directory, got %v", err)
	}

	// A failed call leaves the translator usable
	result, err := translator.ToFileSystemPath("~/after")
	if err != nil {
		t.Fatalf("ToFileSystemPath after failures: %v", err)
	}
	if !strings.HasPrefix(result, `c:\temp`) {
		t.Errorf("Expected result rooted at c:\\temp, got %s", result)
	}
}

func TestErrors_MessageNamesArgument(t *testing.T) {
	_, err := New("")
	if err == nil || !strings.Contains(err.Error(), "root") {
		t.Errorf("Expected error naming root, got %v", err)
	}

	translator := newTestTranslator(t, "/srv/www")
	_, err = translator.GetFile(" ")
	if err == nil || !strings.Contains(err.Error(), "webPath") {
		t.Errorf("Expected error naming webPath, got %v", err)
	}
}

func TestConcurrentUse(t *testing.T) {
	translator := newTestTranslator(t, "/srv/www", WithSeparator('/'))

	var wg sync.WaitGroup
	errCh := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := translator.ToFileSystemPath("~/a//b")
			if err != nil {
				errCh <- err
				return
			}
			if p != "/srv/www/a/b" {
				errCh <- fmt.Errorf("expected /srv/www/a/b, got %s", p)
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("Unexpected concurrent result: %v", err)
	}
}

func TestCollapse(t *testing.T) {
	tests := []struct {
		in       string
		sep      byte
		expected string
	}{
		{"", '/', ""},
		{"a/b", '/', "a/b"},
		{"a//b", '/', "a/b"},
		{"a////b//", '/', "a/b/"},
		{"//a", '/', "/a"},
		{`a\\\b`, '\\', `a\b`},
		{`a//b`, '\\', `a//b`},
	}

	for _, tt := range tests {
		if got := collapse(tt.in, tt.sep); got != tt.expected {
			t.Errorf("collapse(%q, %q): expected %q, got %q", tt.in, tt.sep, tt.expected, got)
		}
	}
}
