// Package storage archives pipeline output snapshots to S3-compatible
// object storage.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Saul-Punybz/newsdesk/internal/config"
)

const snapshotRoot = "snapshots"

// objectAPI is the part of the S3 client the archive uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client wraps an S3-compatible object storage client. A Client without
// an endpoint is valid and archives nothing.
type Client struct {
	s3     objectAPI
	bucket string
	now    func() time.Time
}

// NewClient creates a storage client for any S3-compatible endpoint.
func NewClient(ctx context.Context, cfg config.S3Config) (*Client, error) {
	if cfg.Endpoint == "" {
		slog.Warn("storage: S3 endpoint not configured, snapshots disabled")
		return &Client{bucket: cfg.Bucket, now: time.Now}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = &cfg.Endpoint
		o.UsePathStyle = true
	})

	return &Client{s3: client, bucket: cfg.Bucket, now: time.Now}, nil
}

// Configured reports whether snapshots are actually uploaded.
func (c *Client) Configured() bool {
	return c != nil && c.s3 != nil
}

// Archive uploads v as gzipped JSON under
// snapshots/<kind>/<yyyy>/<mm>/<dd>/<id>.json.gz. It is a no-op when
// storage is not configured.
func (c *Client) Archive(ctx context.Context, kind, id string, v any) error {
	if !c.Configured() {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: marshal %s/%s: %w", kind, id, err)
	}
	body, err := gzipCompress(data)
	if err != nil {
		return fmt.Errorf("storage: compress %s/%s: %w", kind, id, err)
	}

	key := snapshotKey(kind, id, c.now())
	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          &c.bucket,
		Key:             &key,
		Body:            bytes.NewReader(body),
		ContentType:     ptr("application/json"),
		ContentEncoding: ptr("gzip"),
		Metadata:        map[string]string{"sha256": sha256sum(data)},
	})
	if err != nil {
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}

	slog.Debug("storage: snapshot uploaded", "key", key, "size", len(body))
	return nil
}

// Fetch downloads and decompresses the snapshot stored at key.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("storage: not configured")
	}

	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &c.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	data, err := gzipDecompress(raw)
	if err != nil {
		return nil, fmt.Errorf("storage: decompress %s: %w", key, err)
	}
	return data, nil
}

func snapshotKey(kind, id string, at time.Time) string {
	at = at.UTC()
	return path.Join(snapshotRoot, kind, at.Format("2006"), at.Format("01"), at.Format("02"), id+".json.gz")
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func ptr[T any](v T) *T { return &v }
