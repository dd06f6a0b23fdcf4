package webpath

import (
	"os"

	"github.com/spf13/afero"
)

// File references a file by path. The file may or may not exist.
type File struct {
	fs   afero.Fs
	path string
}

// NewFile returns a handle for path on fs. A nil fs means the OS filesystem.
func NewFile(fs afero.Fs, path string) *File {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &File{fs: fs, path: path}
}

// FullName returns the path the handle was created with
func (f *File) FullName() string {
	return f.path
}

// Exists reports whether a regular file (not a directory) is present at the path
func (f *File) Exists() bool {
	info, err := f.fs.Stat(f.path)
	return err == nil && !info.IsDir()
}

// Stat returns the file info reported by the underlying filesystem
func (f *File) Stat() (os.FileInfo, error) {
	return f.fs.Stat(f.path)
}

// Directory references a directory by path. The directory may or may not exist.
type Directory struct {
	fs   afero.Fs
	path string
}

// NewDirectory returns a handle for path on fs. A nil fs means the OS filesystem.
func NewDirectory(fs afero.Fs, path string) *Directory {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Directory{fs: fs, path: path}
}

// FullName returns the path the handle was created with
func (d *Directory) FullName() string {
	return d.path
}

// Exists reports whether a directory is present at the path
func (d *Directory) Exists() bool {
	ok, err := afero.DirExists(d.fs, d.path)
	return err == nil && ok
}

// Create creates the directory along with any missing parents
func (d *Directory) Create() error {
	return d.fs.MkdirAll(d.path, 0755)
}

// Stat returns the file info reported by the underlying filesystem
func (d *Directory) Stat() (os.FileInfo, error) {
	return d.fs.Stat(d.path)
}
