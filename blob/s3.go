package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Backend implements the Backend interface using AWS S3
type S3Backend struct {
	s3Client *s3.S3
	uploader *s3manager.Uploader
	bucket   string
}

// NewS3Backend creates a new S3 backend
func NewS3Backend(region, bucket string) (*S3Backend, error) {
	if bucket == "" {
		return nil, &ConfigError{Setting: "bucket_name", Reason: "S3 bucket name is required"}
	}

	// Catch unexpanded infrastructure-template placeholders early
	if strings.Contains(bucket, "[") || strings.Contains(bucket, "]") {
		return nil, &ConfigError{Setting: "bucket_name", Reason: "bucket name contains placeholders: " + bucket}
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3Backend{
		s3Client: s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
	}, nil
}

// Upload streams content to S3 under the given key
func (s *S3Backend) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	_, err := s.uploader.UploadWithContext(ctx, input)
	return err
}

// Download opens the object at key for reading
func (s *S3Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return output.Body, nil
}

// List returns all object keys under prefix
func (s *S3Backend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Delete removes the object at key. S3 treats deleting a missing
// object as success, matching the Backend contract.
func (s *S3Backend) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && isS3NotFound(err) {
		return ErrNotFound
	}
	return err
}

// DeleteBatch removes the given objects in one DeleteObjects call and
// returns the number of per-item failures
func (s *S3Backend) DeleteBatch(ctx context.Context, keys []string) (int, error) {
	objects := make([]*s3.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
	}

	output, err := s.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return 0, err
	}
	return len(output.Errors), nil
}

// SignedURL returns a presigned GET URL for key
func (s *S3Backend) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	// Head first so missing objects surface as ErrNotFound rather than
	// as a URL that 404s later
	_, err := s.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return "", ErrNotFound
		}
		return "", err
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)
	return req.Presign(expiry)
}

// CreateContainer creates the bucket. Owning the bucket already is not
// an error.
func (s *S3Backend) CreateContainer(ctx context.Context) error {
	_, err := s.s3Client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeBucketAlreadyOwnedByYou {
			return nil
		}
		return err
	}
	return nil
}

// DeleteContainer removes every object in the bucket, then the bucket
// itself
func (s *S3Backend) DeleteContainer(ctx context.Context) error {
	keys, err := s.List(ctx, "")
	if err != nil {
		return err
	}
	for start := 0; start < len(keys); start += DefaultMaxBatchSize {
		end := start + DefaultMaxBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		if _, err := s.DeleteBatch(ctx, keys[start:end]); err != nil {
			return err
		}
	}

	_, err = s.s3Client.DeleteBucketWithContext(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchBucket {
			return nil
		}
		return err
	}
	return nil
}

// isS3NotFound reports whether err is S3's missing-object (or missing
// bucket) condition. HeadObject reports a bare "NotFound" code instead
// of NoSuchKey.
func isS3NotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
		return true
	}
	return false
}
