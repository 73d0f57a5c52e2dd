package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the error used when a Fault does not set its own.
var ErrInjected = errors.New("injected fault")

// Fault describes how reads of a matching file fail.
type Fault struct {
	// FailOnOpen makes Open fail.
	FailOnOpen bool
	// FailAfterBytes fails reads once this many bytes were read from the
	// file. Negative disables the limit.
	FailAfterBytes int64
	FailOnStat     bool
	FailOnClose    bool
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS wraps a FileSystem and injects errors into files whose name
// contains a rule's pattern.
type FaultyFS struct {
	FS FileSystem

	mu    sync.Mutex
	rules map[string]Fault
	read  int64
}

// NewFaultyFS wraps fs, or Default if fs is nil.
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{FS: fs, rules: make(map[string]Fault)}
}

// AddRule registers fault for names containing pattern. When several
// patterns match, the longest wins.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// BytesRead returns the total number of bytes read through f.
func (f *FaultyFS) BytesRead() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		best   Fault
		bestLn = -1
	)
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) && len(pattern) > bestLn {
			best, bestLn = rule, len(pattern)
		}
	}
	return best, bestLn >= 0
}

func (f *FaultyFS) Open(name string) (File, error) {
	fault, ok := f.match(name)
	if !ok {
		fault = Fault{FailAfterBytes: -1}
	}
	if fault.FailOnOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: fault.err()}
	}
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	if fault, ok := f.match(name); ok && fault.FailOnStat {
		return nil, &os.PathError{Op: "stat", Path: name, Err: fault.err()}
	}
	return f.FS.Stat(name)
}

type faultyFile struct {
	File
	fs    *FaultyFS
	fault Fault
	read  int64
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if limit := ff.fault.FailAfterBytes; limit >= 0 {
		remaining := limit - ff.read
		if remaining <= 0 {
			return 0, ff.fault.err()
		}
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}
	}

	n, err := ff.File.Read(p)
	ff.read += int64(n)
	ff.fs.mu.Lock()
	ff.fs.read += int64(n)
	ff.fs.mu.Unlock()
	return n, err
}

func (ff *faultyFile) Stat() (os.FileInfo, error) {
	if ff.fault.FailOnStat {
		return nil, ff.fault.err()
	}
	return ff.File.Stat()
}

func (ff *faultyFile) Close() error {
	err := ff.File.Close()
	if ff.fault.FailOnClose {
		return ff.fault.err()
	}
	return err
}
