package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"summary-backend/internal/shared/storage/object"
)

// API is the subset of the S3 client used by Store.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configures an S3-backed store.
type Options struct {
	Region string
	Bucket string
	Prefix string
	// Endpoint targets an S3-compatible service (MinIO, Supabase Storage) with path-style addressing.
	Endpoint      string
	PublicBaseURL string
	KMSKeyID      string
}

// Store implements ObjectStore using Amazon S3.
type Store struct {
	client        API
	bucket        string
	prefix        string
	region        string
	endpoint      string
	publicBaseURL string
	kmsKeyID      string
}

// New creates a new S3-backed object store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	if opts.Region == "" {
		opts.Region = cfg.Region
	}
	return NewWithClient(client, opts), nil
}

// NewWithClient builds a Store around an existing client.
func NewWithClient(client API, opts Options) *Store {
	return &Store{
		client:        client,
		bucket:        opts.Bucket,
		prefix:        normalizePrefix(opts.Prefix),
		region:        opts.Region,
		endpoint:      strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/"),
		publicBaseURL: strings.TrimSpace(opts.PublicBaseURL),
		kmsKeyID:      strings.TrimSpace(opts.KMSKeyID),
	}
}

// Put uploads r to key. The write is conditional so an existing object is never replaced.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(key) == "" {
		return 0, object.ErrInvalidKey
	}

	objectKey := applyPrefix(s.prefix, key)
	counter := &countingReader{r: r}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        counter,
		IfNoneMatch: aws.String("*"),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		if apiErrorCode(err) == "PreconditionFailed" {
			return 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, object.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return counter.n, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, object.ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Remove deletes the keys that exist and reports them. DeleteObjects alone cannot be
// trusted for this because S3 acknowledges deletes of missing keys.
func (s *Store) Remove(ctx context.Context, keys []string) ([]string, error) {
	existing := make([]string, 0, len(keys))
	for _, key := range keys {
		objectKey := applyPrefix(s.prefix, key)
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectKey),
		})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("s3 head object bucket=%s key=%s: %w", s.bucket, objectKey, err)
		}
		existing = append(existing, key)
	}
	if len(existing) == 0 {
		return []string{}, nil
	}

	ids := make([]s3types.ObjectIdentifier, 0, len(existing))
	for _, key := range existing {
		ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(applyPrefix(s.prefix, key))})
	}
	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(false)},
	})
	if err != nil {
		return nil, fmt.Errorf("s3 delete objects bucket=%s: %w", s.bucket, err)
	}

	removed := make([]string, 0, len(out.Deleted))
	for _, d := range out.Deleted {
		removed = append(removed, stripPrefix(s.prefix, aws.ToString(d.Key)))
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return removed, fmt.Errorf("s3 delete objects bucket=%s key=%s: %s: %s",
			s.bucket, aws.ToString(first.Key), aws.ToString(first.Code), aws.ToString(first.Message))
	}
	return removed, nil
}

// List returns every object under the store prefix.
func (s *Store) List(ctx context.Context) ([]object.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}

	var out []object.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects bucket=%s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			out = append(out, object.ObjectInfo{
				Key:       stripPrefix(s.prefix, aws.ToString(obj.Key)),
				Size:      aws.ToInt64(obj.Size),
				CreatedAt: aws.ToTime(obj.LastModified).UTC(),
			})
		}
	}
	return out, nil
}

// PublicURL derives the object URL from the configured public base, the custom endpoint
// (path-style) or the regional virtual-hosted endpoint, in that order.
func (s *Store) PublicURL(key string) string {
	objectKey := applyPrefix(s.prefix, key)
	switch {
	case s.publicBaseURL != "":
		return object.JoinURL(s.publicBaseURL, objectKey)
	case s.endpoint != "":
		return object.JoinURL(s.endpoint+"/"+s.bucket, objectKey)
	default:
		region := s.region
		if region == "" {
			region = "us-east-1"
		}
		return object.JoinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.bucket, region), objectKey)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func isNotFound(err error) bool {
	var nf *s3types.NotFound
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}
	switch apiErrorCode(err) {
	case "NotFound", "NoSuchKey":
		return true
	}
	return false
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

func stripPrefix(prefix, objectKey string) string {
	if prefix == "" {
		return objectKey
	}
	return strings.TrimPrefix(objectKey, prefix+"/")
}

var _ object.ObjectStore = (*Store)(nil)
