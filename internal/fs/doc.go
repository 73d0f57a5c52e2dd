// Package fs abstracts the file system used to read feature files so tests
// can inject I/O failures.
//
// Production code uses [Default] ([LocalFS]). Tests wrap it in a
// [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("sample.bed", fs.Fault{FailAfterBytes: 1024})
//
// Operations take no context.Context; local reads are not interruptible at
// the syscall level. Remote storage goes through blobstore instead.
package fs
