package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/singleflight"

	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/infrastructure/config"
)

// s3API is the subset of *s3.Client used by the adapter
type s3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client implements ports.Storage for S3 and S3 compatible stores such as MinIO
type Client struct {
	api     s3API
	bucket  string
	region  string
	logger  ports.Logger
	metrics ports.Metrics

	// bucket existence is checked once per process; concurrent first
	// callers share a single HeadBucket/CreateBucket round trip
	ensured atomic.Bool
	group   singleflight.Group
}

// New creates an S3 client and makes sure the configured bucket exists.
// Any bucket error other than "not found" is returned and should abort startup.
func New(ctx context.Context, cfg *config.StorageConfig, logger ports.Logger, metrics ports.Metrics) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("invalid S3 configuration: bucket is required")
	}

	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3.UsePathStyle
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
	})

	c := newClient(s3Client, cfg.Bucket, cfg.S3.Region, logger, metrics)

	ensureCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := c.EnsureBucket(ensureCtx); err != nil {
		logger.Error("Failed to verify bucket existence", "error", err, "bucket", cfg.Bucket)
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}

	logger.Info("S3 client initialized successfully",
		"bucket", cfg.Bucket,
		"region", cfg.S3.Region,
		"endpoint", cfg.S3.Endpoint)
	return c, nil
}

func newClient(api s3API, bucket, region string, logger ports.Logger, metrics ports.Metrics) *Client {
	return &Client{
		api:     api,
		bucket:  bucket,
		region:  region,
		logger:  logger,
		metrics: metrics,
	}
}

// EnsureBucket creates the bucket when HeadBucket reports it missing.
// "Already exists" answers from a concurrent creator count as success.
func (c *Client) EnsureBucket(ctx context.Context) error {
	if c.ensured.Load() {
		return nil
	}

	_, err, _ := c.group.Do(c.bucket, func() (interface{}, error) {
		if c.ensured.Load() {
			return nil, nil
		}
		if err := c.ensureBucketExists(ctx); err != nil {
			return nil, err
		}
		c.ensured.Store(true)
		return nil, nil
	})
	return err
}

// Put streams reader to key in the configured bucket
func (c *Client) Put(ctx context.Context, key string, reader io.Reader, metadata ports.ObjectMetadata) (string, error) {
	start := time.Now()

	if key == "" {
		return "", fmt.Errorf("object key is required")
	}

	body, size, err := c.prepareBody(reader, metadata.ContentLength)
	if err != nil {
		c.logger.Error("Failed to read content",
			"error", err,
			"bucket", c.bucket,
			"key", key)
		c.metrics.IncrementCounter("s3.put.errors", map[string]string{
			"error_type": "read_error",
		})
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if metadata.ContentType != "" {
		input.ContentType = aws.String(metadata.ContentType)
	}
	if len(metadata.UserMetadata) > 0 {
		input.Metadata = metadata.UserMetadata
	}

	if _, err := c.api.PutObject(ctx, input); err != nil {
		c.logger.Error("Failed to put object",
			"error", err,
			"bucket", c.bucket,
			"key", key)
		c.metrics.IncrementCounter("s3.put.errors", map[string]string{
			"error_type": "s3_error",
		})
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	duration := time.Since(start)
	c.logger.Info("Object stored successfully",
		"bucket", c.bucket,
		"key", key,
		"size_bytes", size,
		"duration_ms", duration.Milliseconds())

	c.metrics.IncrementCounter("s3.put.success", nil)
	c.metrics.RecordHistogram("s3.put.duration", duration.Seconds(), nil)
	if size >= 0 {
		c.metrics.RecordHistogram("s3.put.size", float64(size), nil)
	}

	return key, nil
}

// prepareBody passes seekable readers through untouched and buffers the
// rest, since request signing over plain HTTP needs to rewind the body.
// The returned size is -1 when it cannot be determined.
func (c *Client) prepareBody(reader io.Reader, declared int64) (io.Reader, int64, error) {
	if seeker, ok := reader.(io.ReadSeeker); ok {
		current, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, -1, err
		}
		end, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, -1, err
		}
		if _, err := seeker.Seek(current, io.SeekStart); err != nil {
			return nil, -1, err
		}
		return seeker, end - current, nil
	}

	buf := &bytes.Buffer{}
	if declared > 0 {
		buf.Grow(int(declared))
	}
	n, err := io.Copy(buf, reader)
	if err != nil {
		return nil, -1, err
	}
	return bytes.NewReader(buf.Bytes()), n, nil
}

// ensureBucketExists checks if the configured bucket exists
func (c *Client) ensureBucketExists(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err == nil {
		c.logger.Info("Bucket exists", "bucket", c.bucket)
		return nil
	}

	if !isNotFoundError(err) {
		c.metrics.IncrementCounter("s3.head_bucket.errors", nil)
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	c.logger.Info("Bucket does not exist, attempting to create", "bucket", c.bucket)
	return c.createBucket(ctx)
}

func (c *Client) createBucket(ctx context.Context) error {
	start := time.Now()

	input := &s3.CreateBucketInput{
		Bucket: aws.String(c.bucket),
	}

	// us-east-1 rejects an explicit location constraint
	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(c.region),
		}
	}

	if _, err := c.api.CreateBucket(ctx, input); err != nil {
		var bae *s3types.BucketAlreadyExists
		var baoyb *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &bae) || errors.As(err, &baoyb) {
			c.logger.Info("Bucket already exists", "bucket", c.bucket)
			c.metrics.IncrementCounter("s3.create_bucket.already_exists", nil)
			return nil
		}

		c.logger.Error("Failed to create bucket",
			"error", err,
			"bucket", c.bucket)
		c.metrics.IncrementCounter("s3.create_bucket.errors", nil)
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	duration := time.Since(start)
	c.logger.Info("Bucket created successfully",
		"bucket", c.bucket,
		"duration_ms", duration.Milliseconds())
	c.metrics.IncrementCounter("s3.create_bucket.success", nil)

	return nil
}

// buildAWSConfig builds the AWS configuration from the storage config.
// The SDK retryer is limited to a single attempt.
func buildAWSConfig(ctx context.Context, storageConfig *config.StorageConfig) (aws.Config, error) {
	s3Config := storageConfig.S3

	optFns := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMaxAttempts(1),
		awsconfig.WithHTTPClient(&http.Client{
			Timeout: storageConfig.Timeout,
		}),
	}

	if s3Config.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(s3Config.Region))
	}

	if s3Config.AccessKeyID != "" && s3Config.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3Config.AccessKeyID,
				s3Config.SecretAccessKey,
				"",
			),
		))
	}

	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}

// isNotFoundError reports whether err means the bucket does not exist.
// HeadBucket has no body, so some backends only surface a bare 404.
func isNotFoundError(err error) bool {
	var nf *s3types.NotFound
	var nsb *s3types.NoSuchBucket
	if errors.As(err, &nf) || errors.As(err, &nsb) {
		return true
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
