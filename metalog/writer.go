package metalog

import (
	"github.com/hypertable-io/rangestore/dfs"
)

// RsmlPrefix is the ASCII magic at the start of every metalog file.
const RsmlPrefix = "RSML"

// RsmlVersion is the version this reader/writer understands.
const RsmlVersion uint16 = 1

// HeaderSize is the fixed header length: 4-byte prefix + u16 version.
const HeaderSize = len(RsmlPrefix) + 2

// Writer appends framed MetaLogEntry records to a metalog file. It is the
// symmetric counterpart to Reader: the original ships no equivalent
// standalone writer in the excerpt retrieved for this module (append calls
// are scattered through range-server transaction code out of this core's
// scope), but one is needed to produce the byte streams Reader consumes —
// both for tests (§8 properties 6/7) and for any caller appending a new
// transaction to a range server's own metalog.
type Writer struct {
	fs   dfs.FS
	file dfs.File
	path string
	pos  int64
}

// CreateWriter creates a new metalog file at path and writes the RSML
// header.
func CreateWriter(fs dfs.FS, path string) (*Writer, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, err
	}
	buf := NewDynamicBuffer(HeaderSize)
	buf.PutBytes([]byte(RsmlPrefix))
	buf.PutUint16(RsmlVersion)
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{fs: fs, file: f, path: path, pos: int64(HeaderSize)}, nil
}

// Append writes one entry as a framed record:
// { u16 type | u64 timestamp | u32 payload_len | payload }, per spec.md §6.
// timestamp is assigned by the caller — this module's core does not itself
// generate wall-clock time, since metalog/reader tests must be
// reproducible; production callers pass time.Now().UnixNano() or similar.
func (w *Writer) Append(e Entry, timestamp uint64) error {
	payload := NewDynamicBuffer(64)
	e.Write(payload)

	rec := NewDynamicBuffer(HeaderSize + payload.Len())
	rec.PutUint16(uint16(e.Type()))
	rec.PutUint64(timestamp)
	rec.PutUint32(uint32(payload.Len()))
	rec.PutBytes(payload.Bytes())

	n, err := w.file.Write(rec.Bytes())
	w.pos += int64(n)
	return err
}

// Sync flushes the file to stable storage.
func (w *Writer) Sync() error { return w.file.Sync() }

// Close closes the underlying file.
func (w *Writer) Close() error { return w.file.Close() }
