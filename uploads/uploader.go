// Package uploads stores reference images in a GCS bucket and normalizes
// them before storage.
package uploads

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 50 * time.Second

type ClientUploader struct {
	cl         *storage.Client
	bucketName string
	uploadPath string
}

func NewClientUploader(ctx context.Context, bucketName string) (*ClientUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &ClientUploader{
		cl:         client,
		bucketName: bucketName,
		uploadPath: "references/",
	}, nil
}

// Upload writes the object under a timestamped name and returns its public URL.
func (c *ClientUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	objectPath := c.uploadPath + timestamp + "_" + filename

	wc := c.cl.Bucket(c.bucketName).Object(objectPath).NewWriter(ctx)
	if _, err := io.Copy(wc, file); err != nil {
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectPath), nil
}

func (c *ClientUploader) Close() error {
	return c.cl.Close()
}
