// Package dfs is the Filesystem contract §6 of the spec names as an
// external collaborator: a narrow abstraction over the distributed
// filesystem a range server and the master's garbage collector both talk
// to. It is trimmed from the teacher's cloud/aws wrapper around
// pebble's vfs.FS down to what the metalog reader/writer and the GC
// reaper actually need.
package dfs

import "os"

// File is the open-file handle returned by FS. Only the operations the
// metalog and gc packages use are included.
type File interface {
	Read(p []byte) (n int, err error)
	ReadAt(p []byte, off int64) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
	Sync() error
	Stat() (os.FileInfo, error)
}

// FS is the filesystem contract. RemoveAll implements the "rmdir" of
// spec.md §6: it removes the file or empty directory at a path. The
// local-disk Default does not remove a non-empty directory; it returns an
// error instead.
type FS interface {
	Open(name string) (File, error)
	Create(name string) (File, error)
	Remove(name string) error
	RemoveAll(name string) error
	MkdirAll(dir string, perm os.FileMode) error
	List(dir string) ([]string, error)
	Stat(name string) (os.FileInfo, error)

	PathJoin(elem ...string) string
	PathDir(path string) string
	PathBase(path string) string
}
