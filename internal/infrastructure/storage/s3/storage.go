package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vasii/catalog/internal/core/domain"
	"github.com/vasii/catalog/internal/infrastructure/resilience"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type ClientOptions struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// NewClient builds an S3 client. A custom endpoint targets MinIO or
// LocalStack; static keys override the default credential chain.
func NewClient(ctx context.Context, opts ClientOptions) (*s3.Client, error) {
	var loadOpts []func(*awscfg.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awscfg.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

type Options struct {
	Bucket             string
	Prefix             string
	ResilienceExecutor *resilience.Executor
}

type Storage struct {
	client   objectAPI
	bucket   string
	prefix   string
	executor *resilience.Executor
}

func New(client *s3.Client, options Options) (*Storage, error) {
	return newStorage(client, options)
}

func newStorage(client objectAPI, options Options) (*Storage, error) {
	if strings.TrimSpace(options.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	return &Storage{
		client:   client,
		bucket:   options.Bucket,
		prefix:   options.Prefix,
		executor: options.ResilienceExecutor,
	}, nil
}

func (s *Storage) objectKey(key string) string {
	return s.prefix + key
}

// Save buffers data so retries and request signing can rewind the body.
func (s *Storage) Save(ctx context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}

	err = s.executor.Execute(ctx, "s3.put_object", func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(s.objectKey(key)),
			Body:          bytes.NewReader(raw),
			ContentLength: aws.Int64(int64(len(raw))),
		})
		if err != nil {
			return fmt.Errorf("put object: %w", err)
		}
		return nil
	}, classifyS3Error)
	return resilience.WrapTemporary("save object", err, classifyS3Error)
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	body, err := resilience.Do(ctx, s.executor, "s3.get_object", func(ctx context.Context) (io.ReadCloser, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(key)),
		})
		if err != nil {
			var noKey *types.NoSuchKey
			if errors.As(err, &noKey) {
				return nil, domain.WrapError(domain.ErrUploadNotFound, "open object", err)
			}
			return nil, fmt.Errorf("get object: %w", err)
		}
		return out.Body, nil
	}, classifyS3Error)
	if err != nil {
		return nil, resilience.WrapTemporary("open object", err, classifyS3Error)
	}
	return body, nil
}

type httpStatusError interface {
	HTTPStatusCode() int
}

var classifyS3Error = resilience.Classifier(func(err error) bool {
	var statusErr httpStatusError
	if errors.As(err, &statusErr) {
		code := statusErr.HTTPStatusCode()
		return code == 429 || code >= 500
	}
	return false
})
