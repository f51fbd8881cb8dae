// Package aws provides an S3-mirrored dfs.FS: local disk is the read path,
// S3 is the durability/cross-host-recovery mirror. Adapted from the
// teacher's CloudFS/CloudFile, which wrapped pebble's vfs.FS — rewritten
// against this module's own dfs.FS/dfs.File contract since pebble/vfs is
// not part of this module.
package aws

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hypertable-io/rangestore/cloud/common"
	"github.com/hypertable-io/rangestore/dfs"
	"github.com/hypertable-io/rangestore/internal/errkind"
	"github.com/hypertable-io/rangestore/internal/rlog"
)

// CloudFS wraps a local dfs.FS, mirroring every created file to S3 and
// falling back to an S3StatProxy on Open when a name has a mirror but no
// local copy.
type CloudFS struct {
	local   dfs.FS
	options common.CloudFsOption
	s3      common.S3Helper
	log     rlog.Logger
}

// NewCloudFS constructs a CloudFS mirroring local's writes into the bucket
// named by options.
func NewCloudFS(local dfs.FS, options common.CloudFsOption, log rlog.Logger) (*CloudFS, error) {
	if log == nil {
		log = rlog.Nop
	}
	s3, err := common.NewS3Helper(options, log)
	if err != nil {
		return nil, err
	}
	return &CloudFS{local: local, options: options, s3: s3, log: log}, nil
}

func (c *CloudFS) Create(name string) (dfs.File, error) {
	f, err := c.local.Create(name)
	if err != nil {
		return nil, err
	}
	return NewCloudFile(f, name, c.s3), nil
}

// Open serves name from local disk when present; if the local file is
// missing but a mirror exists in S3, it returns an S3StatProxy rather than
// failing outright — the recovery path for a crash between an S3 upload
// completing and the matching local write finishing.
func (c *CloudFS) Open(name string) (dfs.File, error) {
	f, err := c.local.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, errkind.ErrFileNotFound) {
		return nil, err
	}
	size, mod, headErr := c.s3.HeadObject(name)
	if headErr != nil {
		return nil, err
	}
	return newS3StatProxy(name, size, mod), nil
}

func (c *CloudFS) Remove(name string) error {
	if err := c.s3.DeleteS3File(name); err != nil {
		c.log.Warningf("cloud: failed to delete S3 mirror of %s: %v", name, err)
	}
	return c.local.Remove(name)
}

func (c *CloudFS) RemoveAll(name string) error {
	if err := c.s3.DeleteS3File(name); err != nil {
		c.log.Warningf("cloud: failed to delete S3 mirror of %s: %v", name, err)
	}
	return c.local.RemoveAll(name)
}

func (c *CloudFS) MkdirAll(dir string, perm os.FileMode) error { return c.local.MkdirAll(dir, perm) }

// List merges the local directory listing with any S3-only mirrors under
// dir, so a file recovered only in the cloud mirror still appears.
func (c *CloudFS) List(dir string) ([]string, error) {
	local, err := c.local.List(dir)
	if err != nil {
		return nil, err
	}
	remote, err := c.s3.ListObjects(dir)
	if err != nil {
		c.log.Warningf("cloud: failed to list S3 mirror of %s: %v", dir, err)
		return local, nil
	}
	seen := make(map[string]bool, len(local))
	for _, n := range local {
		seen[n] = true
	}
	merged := local
	for _, n := range remote {
		// Remote keys are full paths; reduce each to its entry name under dir.
		rel := strings.TrimPrefix(strings.TrimPrefix(n, dir), "/")
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			rel = rel[:i]
		}
		if rel != "" && !seen[rel] {
			merged = append(merged, rel)
			seen[rel] = true
		}
	}
	return merged, nil
}

func (c *CloudFS) Stat(name string) (os.FileInfo, error) { return c.local.Stat(name) }

func (c *CloudFS) PathJoin(elem ...string) string { return c.local.PathJoin(elem...) }
func (c *CloudFS) PathDir(path string) string     { return c.local.PathDir(path) }
func (c *CloudFS) PathBase(path string) string    { return c.local.PathBase(path) }

var _ dfs.FS = (*CloudFS)(nil)
