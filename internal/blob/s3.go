package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/blobkeeper/internal/common"
	"github.com/dmitrijs2005/blobkeeper/internal/config"
)

// Narrow views of the AWS clients so tests can substitute fakes.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type uploaderAPI interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store implements Store over an S3-compatible backend (AWS, MinIO, etc.).
// The locator capability is resolved once at construction: when disabled,
// DownloadLocator reports the degraded mode instead of probing the backend.
type S3Store struct {
	client        s3API
	uploader      uploaderAPI
	presign       presignAPI
	bucket        string
	locators      bool
	locatorExpiry time.Duration
}

// NewS3Store builds an S3Store from the runtime configuration.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,     // MINIO_ROOT_USER
			cfg.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.S3Bucket,
		locators:      !cfg.DisableLocators,
		locatorExpiry: cfg.LocatorExpiry,
	}, nil
}

// Put streams src to key, reporting progress through onProgress.
func (s *S3Store) Put(ctx context.Context, key string, src io.Reader, size int64, meta Metadata, onProgress ProgressFunc) (*Snapshot, error) {

	pr := newProgressReader(src, size, onProgress)

	in := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     pr,
		Metadata: meta.Custom,
	}
	if meta.ContentType != "" {
		in.ContentType = aws.String(meta.ContentType)
	}

	out, err := s.uploader.Upload(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	snap := &Snapshot{
		Bucket:      s.bucket,
		Key:         key,
		Location:    out.Location,
		ContentType: meta.ContentType,
		Size:        pr.written,
		UploadedAt:  time.Now().UTC(),
		Custom:      meta.Custom,
	}
	if out.ETag != nil {
		snap.ETag = *out.ETag
	}
	return snap, nil
}

// DownloadLocator returns a presigned GET URL for key, or ("", nil) when
// locators are disabled.
func (s *S3Store) DownloadLocator(ctx context.Context, key string) (string, error) {
	if !s.locators {
		return "", nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.locatorExpiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	return req.URL, nil
}

// Delete removes the blob at key. The preceding HeadObject distinguishes a
// missing blob from a transport failure.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return fmt.Errorf("%w: %s", common.ErrBlobNotFound, key)
		}
		return fmt.Errorf("%w: head %s: %v", common.ErrBackendUnavailable, key, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrBackendUnavailable, key, err)
	}

	return nil
}
