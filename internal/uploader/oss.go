package uploader

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// OSSOptions configures the object-storage backend (any S3-compatible bucket).
type OSSOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// Namespace prefixes every generated object key, e.g. "hunyuan_images".
	Namespace string
	// BaseURL overrides the public URL prefix when the bucket sits behind a
	// CDN. Empty means <scheme>://<endpoint>/<bucket>.
	BaseURL string
	UseSSL  bool
}

// OSS uploads into an S3-compatible bucket and derives a public URL from the
// object key. This is the default backend: it shares an ecosystem with the
// generation API, so the resulting URLs stay fetchable for the job's lifetime.
type OSS struct {
	client    *minio.Client
	endpoint  string
	bucket    string
	namespace string
	baseURL   string
	secure    bool
	now       func() time.Time
}

// NewOSS connects to the object storage service and ensures the bucket exists.
func NewOSS(ctx context.Context, opts OSSOptions) (*OSS, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("oss: endpoint is required")
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("oss: bucket is required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("oss: initialize client: %w", err)
	}
	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss: check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("oss: create bucket: %w", err)
		}
	}
	namespace := strings.Trim(strings.TrimSpace(opts.Namespace), "/")
	if namespace == "" {
		namespace = "hunyuan_images"
	}
	return &OSS{
		client:    client,
		endpoint:  opts.Endpoint,
		bucket:    opts.Bucket,
		namespace: namespace,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		secure:    opts.UseSSL,
		now:       time.Now,
	}, nil
}

// Upload puts the file under a generated key and returns its public URL.
func (o *OSS) Upload(ctx context.Context, filePath string) (*Upload, error) {
	if _, err := statFile(filePath); err != nil {
		return nil, err
	}
	key := o.objectKey(filepath.Ext(filePath))
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filePath)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := o.client.FPutObject(ctx, o.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("oss: put object: %w", err)
	}
	return &Upload{URL: o.publicURL(key)}, nil
}

// objectKey builds "<namespace>/<timestamp>_<uuid8><ext>" so repeated uploads
// of the same filename never collide.
func (o *OSS) objectKey(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%s_%s%s", o.namespace, o.now().Format("20060102_150405"), suffix, strings.ToLower(ext))
}

func (o *OSS) publicURL(key string) string {
	if o.baseURL != "" {
		return o.baseURL + "/" + key
	}
	scheme := "http"
	if o.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, o.endpoint, o.bucket, key)
}

var _ Backend = (*OSS)(nil)
