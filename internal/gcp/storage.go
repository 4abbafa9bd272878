package gcp

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// ParseGCSURI splits a gs://bucket/object URI.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %q", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs:// URI must name a bucket and an object: %q", uri)
	}
	return bucket, object, nil
}

// ObjectSource reads an exam paper straight from Cloud Storage. Nothing is
// ever written back.
type ObjectSource struct {
	client *storage.Client
	bucket string
	object string
}

// NewObjectSource resolves a gs:// URI against an existing storage client.
func NewObjectSource(client *storage.Client, uri string) (*ObjectSource, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	return &ObjectSource{client: client, bucket: bucket, object: object}, nil
}

// Attrs returns the object's metadata, including its declared content type.
func (s *ObjectSource) Attrs(ctx context.Context) (*storage.ObjectAttrs, error) {
	attrs, err := s.client.Bucket(s.bucket).Object(s.object).Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes of gs://%s/%s: %w", s.bucket, s.object, err)
	}
	return attrs, nil
}

func (s *ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", s.bucket, s.object, err)
	}
	return r, nil
}
