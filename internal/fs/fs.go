package fs

import (
	"io"
	"os"
)

// File is an open feature file.
type File interface {
	io.ReadCloser
	Stat() (os.FileInfo, error)
}

// FileSystem abstracts the file operations used while building an index.
type FileSystem interface {
	Open(name string) (File, error)
	Stat(name string) (os.FileInfo, error)
}

// LocalFS implements FileSystem using the os package.
type LocalFS struct{}

func (LocalFS) Open(name string) (File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Default is the local file system.
var Default FileSystem = LocalFS{}
