package aws

import (
	"os"
	"strings"

	"github.com/hypertable-io/rangestore/cloud/common"
	"github.com/hypertable-io/rangestore/dfs"
)

// CloudFile wraps a local dfs.File, mirroring it to S3 on Close and, for
// metalog files specifically, on every Sync — the equivalent of the
// teacher's special-cased MANIFEST handling, since a metalog's durability on
// the cloud mirror matters immediately, not just at handle close.
type CloudFile struct {
	local dfs.File
	name  string
	s3    common.S3Helper
}

// NewCloudFile wraps local, mirroring writes to S3 under name via s3.
func NewCloudFile(local dfs.File, name string, s3 common.S3Helper) *CloudFile {
	return &CloudFile{local: local, name: name, s3: s3}
}

func (c *CloudFile) mirrorsOnSync() bool {
	return strings.HasSuffix(c.name, ".rsml") || strings.HasSuffix(c.name, ".rsml.zst")
}

func (c *CloudFile) Read(p []byte) (int, error)              { return c.local.Read(p) }
func (c *CloudFile) ReadAt(p []byte, off int64) (int, error) { return c.local.ReadAt(p, off) }
func (c *CloudFile) Write(p []byte) (int, error)             { return c.local.Write(p) }
func (c *CloudFile) Stat() (os.FileInfo, error)              { return c.local.Stat() }

func (c *CloudFile) Sync() error {
	if err := c.local.Sync(); err != nil {
		return err
	}
	if c.mirrorsOnSync() {
		return c.s3.SyncFileToS3(c.local, c.name)
	}
	return nil
}

func (c *CloudFile) Close() error {
	mirrorErr := c.s3.SyncFileToS3(c.local, c.name)
	if err := c.local.Close(); err != nil {
		return err
	}
	return mirrorErr
}

var _ dfs.File = (*CloudFile)(nil)
