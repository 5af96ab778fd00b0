package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func NewS3Client(config aws.Config) *s3.Client {
	return s3.NewFromConfig(config, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

// S3Namespace keeps one object per key under "<prefix><name>/".
type S3Namespace struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ interfaces.Namespace = (*S3Namespace)(nil)

func NewS3Namespace(client *s3.Client, cfg Config, name string) *S3Namespace {
	return &S3Namespace{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix + name + "/"}
}

func (n *S3Namespace) Get(ctx context.Context, key string) ([]byte, error) {
	started := time.Now()
	resp, err := n.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(n.bucket),
		Key:    aws.String(n.prefix + key),
	})
	metrics.ObserveProvider("s3", "get object", started, err)
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%s%s, %w", n.prefix, key, errs.ErrKeyNotFound)
		}
		return nil, fmt.Errorf("error downloading key %s%s, %w", n.prefix, key, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading object contents, %w", err)
	}
	return data, nil
}

func (n *S3Namespace) Put(ctx context.Context, key string, value []byte) error {
	_, err := n.put(ctx, key, value, false)
	return err
}

// PutIfAbsent relies on S3 conditional writes: a 412 means the key exists.
func (n *S3Namespace) PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	return n.put(ctx, key, value, true)
}

func (n *S3Namespace) put(ctx context.Context, key string, value []byte, onlyIfAbsent bool) (bool, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(n.bucket),
		Key:           aws.String(n.prefix + key),
		Body:          bytes.NewReader(value),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(value))),
	}
	if onlyIfAbsent {
		input.IfNoneMatch = aws.String("*")
	}

	started := time.Now()
	_, err := n.client.PutObject(ctx, input)
	metrics.ObserveProvider("s3", "put object", started, err)
	if err != nil {
		if onlyIfAbsent && isPreconditionFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("error uploading key %s%s, %w", n.prefix, key, err)
	}
	return true, nil
}

func (n *S3Namespace) Delete(ctx context.Context, key string) error {
	started := time.Now()
	_, err := n.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(n.bucket),
		Key:    aws.String(n.prefix + key),
	})
	metrics.ObserveProvider("s3", "delete object", started, err)
	if err != nil {
		return fmt.Errorf("error deleting key %s%s, %w", n.prefix, key, err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	var respErr interface{ HTTPStatusCode() int }
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusPreconditionFailed
}
