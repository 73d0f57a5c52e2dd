// Package mmap maps files read-only into memory.
//
//	m, err := mmap.Open("sample.bed.idx")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2). Windows uses CreateFileMapping and
// MapViewOfFile; Advise is a no-op there. A Mapping is safe for concurrent
// readers, but nothing may touch Bytes after Close.
package mmap
