// Package fetch reads scan inputs from local paths or s3://bucket/key URIs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// ErrTooLarge is returned for objects that do not fit a 32-bit file offset.
var ErrTooLarge = errors.New("object too large")

type Options struct {
	Region   string
	Endpoint string
	// PathStyle is needed by MinIO and most S3-compatible stores.
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectGetter is the part of the S3 client the fetcher uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher is safe for concurrent use. The S3 client is created on the first
// remote read.
type Fetcher struct {
	opts Options

	mu     sync.Mutex
	client ObjectGetter
}

func New(opts Options) *Fetcher {
	return &Fetcher{opts: opts}
}

// NewWithClient uses client for s3:// inputs.
func NewWithClient(client ObjectGetter) *Fetcher {
	return &Fetcher{client: client}
}

func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, s3Scheme)
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsRemote(uri) {
		return "", "", fmt.Errorf("%q is not an s3:// URI", uri)
	}
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%q: expected s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// Read returns the whole content of a local file or an S3 object.
func (f *Fetcher) Read(ctx context.Context, uri string) ([]byte, error) {
	if !IsRemote(uri) {
		// #nosec G304 -- path is provided by the caller
		return os.ReadFile(uri)
	}
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	client, err := f.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	defer func() { _ = out.Body.Close() }()

	if out.ContentLength != nil && *out.ContentLength > math.MaxUint32 {
		return nil, fmt.Errorf("%s: %w (%d bytes)", uri, ErrTooLarge, *out.ContentLength)
	}
	data, err := io.ReadAll(io.LimitReader(out.Body, math.MaxUint32+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("%s: %w", uri, ErrTooLarge)
	}
	return data, nil
}

func (f *Fetcher) s3Client(ctx context.Context) (ObjectGetter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return f.client, nil
	}

	loadOpts := []func(*config.LoadOptions) error{}
	if f.opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(f.opts.Region))
	}
	if f.opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.opts.AccessKeyID, f.opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	f.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if f.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(f.opts.Endpoint)
		}
		o.UsePathStyle = f.opts.PathStyle
	})
	return f.client, nil
}
