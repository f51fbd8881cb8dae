// Package common holds the S3 wiring cloud/aws's CloudFS/CloudFile share.
// Factored out of two near-identical copies the teacher carried (one under
// cloud/aws, one under cloud/common) into a single implementation.
package common

import (
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/hypertable-io/rangestore/dfs"
	"github.com/hypertable-io/rangestore/internal/rlog"
)

// CloudFsOption configures an S3-mirrored dfs.FS: the bucket and key
// prefix a range server's local metalog/METADATA files are shadowed under.
// Unlike the teacher's version, bucket and region are explicit fields
// rather than an os.Getenv("S3_BUCKET") lookup and a hardcoded region
// literal.
type CloudFsOption struct {
	Bucket   string
	BasePath string
	Region   string
}

// S3Helper is the S3 surface CloudFS and CloudFile share: upload, delete,
// head and list.
type S3Helper interface {
	SyncFileToS3(f dfs.File, name string) error
	DeleteS3File(name string) error
	HeadObject(name string) (size int64, modTime time.Time, err error)
	ListObjects(prefix string) ([]string, error)
}

type s3Helper struct {
	bucket     string
	filePrefix string
	uploader   *s3manager.Uploader
	client     *s3.S3
	log        rlog.Logger
}

// NewS3Helper constructs an S3Helper from options using a default AWS
// session (credentials from the environment/instance role, per the
// aws-sdk-go default chain).
func NewS3Helper(options CloudFsOption, log rlog.Logger) (S3Helper, error) {
	if log == nil {
		log = rlog.Nop
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(options.Region)})
	if err != nil {
		return nil, err
	}
	return &s3Helper{
		bucket:     options.Bucket,
		filePrefix: options.BasePath,
		uploader:   s3manager.NewUploader(sess),
		client:     s3.New(sess),
		log:        log,
	}, nil
}

func (s *s3Helper) key(name string) string {
	return s.filePrefix + "/" + name
}

// SkipUpload reports whether name's mirror should never reach S3 — scratch
// files a range server regenerates locally and never needs to recover from
// the cloud mirror. Tuned to this domain's filenames (metalog/cellstore
// paths) rather than the teacher's `.dbtmp` sstable-build-artifact check.
func SkipUpload(name string) bool {
	return strings.HasSuffix(name, ".tmp") || strings.HasSuffix(name, ".lock")
}

// SyncFileToS3 uploads f's whole current contents under name, read with
// ReadAt from offset 0 up to f's current size, so the handle's read/write
// position does not matter.
func (s *s3Helper) SyncFileToS3(f dfs.File, name string) error {
	if SkipUpload(name) {
		return nil
	}
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	out, err := s.uploader.Upload(&s3manager.UploadInput{
		Body:   io.NewSectionReader(f, 0, fi.Size()),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return err
	}
	s.log.Debugf("cloud: mirrored %s to %s", name, out.Location)
	return nil
}

func (s *s3Helper) DeleteS3File(name string) error {
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// HeadObject returns the size and last-modified time of name's mirror,
// without downloading its contents — used by S3StatProxy when a local
// mirror is missing.
func (s *s3Helper) HeadObject(name string) (int64, time.Time, error) {
	out, err := s.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	var size int64
	var mod time.Time
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	if out.LastModified != nil {
		mod = *out.LastModified
	}
	return size, mod, nil
}

// ListObjects lists every mirrored key under prefix, with filePrefix
// stripped back off so results are comparable to local dfs.FS paths.
func (s *s3Helper) ListObjects(prefix string) ([]string, error) {
	var names []string
	err := s.client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			names = append(names, strings.TrimPrefix(*obj.Key, s.filePrefix+"/"))
		}
		return true
	})
	return names, err
}
