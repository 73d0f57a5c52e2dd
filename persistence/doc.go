// Package persistence provides the low-level binary plumbing for index files.
//
// All integers are little-endian. Strings are written as raw UTF-8 bytes
// followed by a single zero byte, so they cannot contain NUL.
//
// Index files may be stored compressed; the codec is chosen from the file
// name suffix (see CompressionFor) so that the binary reader and writer never
// need to know whether the bytes on disk are compressed.
package persistence
