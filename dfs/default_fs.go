package dfs

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/hypertable-io/rangestore/internal/errkind"
)

// Default is a local-disk backed FS, the DFS broker's simplest possible
// backing store. cloud/aws.CloudFS wraps an FS of this shape to add an S3
// mirror.
var Default FS = diskFS{}

type diskFS struct{}

func (diskFS) Open(name string) (File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, wrapOSErr(err)
	}
	return diskFile{f}, nil
}

func (diskFS) Create(name string) (File, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, wrapOSErr(err)
	}
	return diskFile{f}, nil
}

func (diskFS) Remove(name string) error {
	return wrapOSErr(os.Remove(name))
}

func (diskFS) RemoveAll(name string) error {
	return wrapOSErr(os.Remove(name))
}

func (diskFS) MkdirAll(dir string, perm os.FileMode) error {
	return wrapOSErr(os.MkdirAll(dir, perm))
}

func (diskFS) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrapOSErr(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (diskFS) Stat(name string) (os.FileInfo, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, wrapOSErr(err)
	}
	return fi, nil
}

func (diskFS) PathJoin(elem ...string) string { return filepath.Join(elem...) }
func (diskFS) PathDir(path string) string     { return filepath.Dir(path) }
func (diskFS) PathBase(path string) string    { return filepath.Base(path) }

// wrapOSErr maps *os.PathError (via errors.Is(err, os.ErrNotExist)) into the
// §7 taxonomy, the Go analogue of the original's ENOENT-vs-everything-else
// split in Common/FileUtils.cc.
func wrapOSErr(err error) error {
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return errkind.Wrap(err, errkind.ErrFileNotFound, "dfs")
	}
	return errkind.Wrap(err, errkind.ErrFsError, "dfs")
}

type diskFile struct {
	f *os.File
}

func (d diskFile) Read(p []byte) (int, error)            { return d.f.Read(p) }
func (d diskFile) ReadAt(p []byte, off int64) (int, error) { return d.f.ReadAt(p, off) }
func (d diskFile) Write(p []byte) (int, error)            { return d.f.Write(p) }
func (d diskFile) Close() error                           { return d.f.Close() }
func (d diskFile) Stat() (os.FileInfo, error)             { return d.f.Stat() }

// Sync fdatasyncs via golang.org/x/sys/unix rather than os.File.Sync's
// full fsync, matching the teacher's pattern (pebble's vfs implementations
// reach for raw syscalls under File.Sync for exactly this reason: WAL/
// metalog durability wants the data synced, not every inode metadata
// update).
func (d diskFile) Sync() error {
	if err := unix.Fdatasync(int(d.f.Fd())); err != nil {
		if err == unix.ENOSYS || err == unix.EINVAL {
			return wrapOSErr(d.f.Sync())
		}
		return errkind.Wrap(err, errkind.ErrFsError, "dfs: fdatasync")
	}
	return nil
}

// ReadFull mirrors Common/FileUtils.cc FileUtils::read: loop until n bytes
// are read or the source reports EOF/error. Callers read framed metalog
// records through this rather than a single File.Read so that a genuinely
// short file (§8 property 10) surfaces as io.ErrUnexpectedEOF/io.EOF rather
// than a partially filled buffer being mistaken for success.
func ReadFull(r io.Reader, buf []byte) (int, error) {
	return io.ReadFull(r, buf)
}
