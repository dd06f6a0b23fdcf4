// Package webpath translates between web-relative paths such as
// "~/assets/site.css" and filesystem paths under a configured root directory.
//
// The sentinel "~/" stands for the root. Web-relative paths always use forward
// slashes; filesystem paths use the native separator. Translation is plain
// string work: nothing is checked against the filesystem except when a File or
// Directory handle is asked about itself.
package webpath

import (
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"
)

// Sentinel marks the root of the web-relative namespace
const Sentinel = "~/"

// traceLevel is the verbosity used for per-call translation logs
const traceLevel = 4

// PathTranslator converts paths between web-relative and filesystem notation
type PathTranslator interface {
	ToFileSystemPath(webPath string) (string, error)
	FileToWebRelativePath(file *File) (string, error)
	DirectoryToWebRelativePath(dir *Directory) (string, error)
	GetFile(webPath string) (*File, error)
	GetDirectory(webPath string) (*Directory, error)
}

// Translator maps the sentinel to a fixed root directory. It holds no mutable
// state and is safe for concurrent use.
type Translator struct {
	root   string
	sep    byte
	fs     afero.Fs
	logger klog.Logger
}

// Option configures a Translator
type Option func(*Translator)

// WithLogger attaches a logger for trace output
func WithLogger(logger klog.Logger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithSeparator overrides the native directory separator
func WithSeparator(sep byte) Option {
	return func(t *Translator) {
		t.sep = sep
	}
}

// WithFs sets the filesystem that backs File and Directory handles
func WithFs(fs afero.Fs) Option {
	return func(t *Translator) {
		t.fs = fs
	}
}

// New creates a translator rooted at root. The root is stored as given and
// does not need to exist.
func New(root string, opts ...Option) (*Translator, error) {
	if err := requireNonBlank("root", root); err != nil {
		return nil, err
	}

	t := &Translator{
		root:   root,
		sep:    filepath.Separator,
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.fs == nil {
		t.fs = afero.NewOsFs()
	}

	t.logger.V(traceLevel).Info("Web root configured", "root", t.root)
	return t, nil
}

// Root returns the configured root directory
func (t *Translator) Root() string {
	return t.root
}

// Fs returns the filesystem backing the translator's handles
func (t *Translator) Fs() afero.Fs {
	return t.fs
}

// ToFileSystemPath translates a web-relative path to a filesystem path.
// Only a leading sentinel is replaced by the root; any other input is
// normalized but left unrooted.
func (t *Translator) ToFileSystemPath(webPath string) (string, error) {
	if err := requireNonBlank("webPath", webPath); err != nil {
		return "", err
	}

	p := webPath
	if strings.HasPrefix(p, Sentinel) {
		p = t.root + string(t.sep) + strings.TrimPrefix(p, Sentinel)
	}

	p = collapse(p, '/')
	p = strings.ReplaceAll(p, "/", string(t.sep))
	p = collapse(p, t.sep)

	t.logger.V(traceLevel).Info("Translated web path", "webPath", webPath, "path", p)
	return p, nil
}

// FileToWebRelativePath translates the full path of file to web-relative form
func (t *Translator) FileToWebRelativePath(file *File) (string, error) {
	if file == nil {
		return "", nullReference("file")
	}
	return t.toWeb(file.FullName()), nil
}

// DirectoryToWebRelativePath translates the full path of dir to web-relative form
func (t *Translator) DirectoryToWebRelativePath(dir *Directory) (string, error) {
	if dir == nil {
		return "", nullReference("dir")
	}
	return t.toWeb(dir.FullName()), nil
}

// toWeb replaces the first occurrence of the root, wherever it appears, with
// the sentinel. A path that does not contain the root only has its separators
// converted.
func (t *Translator) toWeb(fullPath string) string {
	p := strings.Replace(fullPath, t.root, Sentinel, 1)
	p = strings.ReplaceAll(p, string(t.sep), "/")
	p = collapse(p, '/')

	t.logger.V(traceLevel).Info("Translated filesystem path", "path", fullPath, "webPath", p)
	return p
}

// GetFile returns a handle for the file at webPath
func (t *Translator) GetFile(webPath string) (*File, error) {
	p, err := t.ToFileSystemPath(webPath)
	if err != nil {
		return nil, err
	}

	f := NewFile(t.fs, p)
	if v := t.logger.V(traceLevel); v.Enabled() {
		v.Info("Resolved file", "webPath", webPath, "path", f.FullName(), "exists", f.Exists())
	}
	return f, nil
}

// GetDirectory returns a handle for the directory at webPath
func (t *Translator) GetDirectory(webPath string) (*Directory, error) {
	p, err := t.ToFileSystemPath(webPath)
	if err != nil {
		return nil, err
	}

	d := NewDirectory(t.fs, p)
	if v := t.logger.V(traceLevel); v.Enabled() {
		v.Info("Resolved directory", "webPath", webPath, "path", d.FullName(), "exists", d.Exists())
	}
	return d, nil
}

// collapse squeezes every run of sep in s down to a single sep
func collapse(s string, sep byte) string {
	if !strings.Contains(s, string([]byte{sep, sep})) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == sep && i > 0 && s[i-1] == sep {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Ensure Translator implements PathTranslator
var _ PathTranslator = (*Translator)(nil)
