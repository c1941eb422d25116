// Package gcs provides read access to uploaded receipt documents in the
// object store. The pipeline never writes here.
package gcs

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/dmaksimov/expense-pipeline/internal/logger"
)

// Client wraps a storage client for document downloads.
type Client struct {
	client *storage.Client
}

func NewClient(ctx context.Context) (*Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Client{client: client}, nil
}

// Fetch downloads the object and reports its content type so the extractor
// can tell the model what kind of document it is looking at.
func (c *Client) Fetch(ctx context.Context, bucket, object string) ([]byte, string, error) {
	obj := c.client.Bucket(bucket).Object(object)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("read object attrs %s/%s: %w", bucket, object, err)
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("open object reader %s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read object %s/%s: %w", bucket, object, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("bucket", bucket).
		Str("object", object).
		Int("bytes", len(data)).
		Str("content_type", attrs.ContentType).
		Msg("fetched receipt document")

	return data, attrs.ContentType, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
