package metalog

import (
	"io"

	"github.com/DataDog/zstd"

	"github.com/hypertable-io/rangestore/dfs"
	"github.com/hypertable-io/rangestore/internal/errkind"
)

// archiveSuffix is appended to an archived metalog's path, mirroring the
// convention range servers use for rolled-over RSML files (spec.md §4.C).
const archiveSuffix = ".zst"

// Archive compresses the metalog at path into path+".zst" and removes the
// original, the same way a range server archives a metalog once a rangeset
// of RANGE_MOVE/SPLIT transactions has fully committed and the log can be
// retired. Compression uses DataDog/zstd; this is the only place in the
// module that imports it.
func Archive(fs dfs.FS, path string) error {
	src, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dstPath := path + archiveSuffix
	dst, err := fs.Create(dstPath)
	if err != nil {
		return err
	}

	w := zstd.NewWriter(asIOWriter{dst})
	if _, err := io.Copy(w, asIOReader{src}); err != nil {
		w.Close()
		dst.Close()
		return errkind.Wrap(err, errkind.ErrFsError, "metalog: archiving "+path)
	}
	if err := w.Close(); err != nil {
		dst.Close()
		return errkind.Wrap(err, errkind.ErrFsError, "metalog: closing archive writer for "+path)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	return fs.Remove(path)
}

// Unarchive reverses Archive, decompressing path+".zst" back into path.
// Used by `rsmlcat archive --decompress`.
func Unarchive(fs dfs.FS, path string) error {
	srcPath := path + archiveSuffix
	src, err := fs.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := fs.Create(path)
	if err != nil {
		return err
	}

	r := zstd.NewReader(asIOReader{src})
	if _, err := io.Copy(asIOWriter{dst}, r); err != nil {
		r.Close()
		dst.Close()
		return errkind.Wrap(err, errkind.ErrFsError, "metalog: unarchiving "+srcPath)
	}
	r.Close()
	if err := dst.Sync(); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// asIOWriter adapts dfs.File to io.Writer.
type asIOWriter struct{ f dfs.File }

func (a asIOWriter) Write(p []byte) (int, error) { return a.f.Write(p) }
