package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

type headAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Mirror copies committed dumps to a bucket as <prefix>/<date>/<file>.
// Objects already in the bucket are left alone, which keeps mirroring as
// idempotent as the local skip-if-exists check.
type S3Mirror struct {
	head     headAPI
	uploader uploadAPI
	bucket   string
	prefix   string
}

func NewS3Mirror(ctx context.Context, bucket, prefix, profile string) (*S3Mirror, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRetryMode("adaptive"),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.DisableLogOutputChecksumValidationSkipped = true
	})
	return &S3Mirror{
		head:     client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}, nil
}

func (m *S3Mirror) Key(localPath string) string {
	date := filepath.Base(filepath.Dir(localPath))
	return path.Join(m.prefix, date, filepath.Base(localPath))
}

func (m *S3Mirror) Mirror(ctx context.Context, localPath string) error {
	key := m.Key(localPath)
	exists, err := m.exists(ctx, key)
	if err != nil {
		return fmt.Errorf("error checking s3://%s/%s: %w", m.bucket, key, err)
	}
	if exists {
		log.Debug().Str("op", "mirror/s3").Msgf("s3://%s/%s already present", m.bucket, key)
		return nil
	}
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", localPath, err)
	}
	defer file.Close()
	_, err = m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("error uploading s3://%s/%s: %w", m.bucket, key, err)
	}
	log.Debug().Str("op", "mirror/s3").Msgf("mirrored %s to s3://%s/%s", filepath.Base(localPath), m.bucket, key)
	return nil
}

func (m *S3Mirror) exists(ctx context.Context, key string) (bool, error) {
	_, err := m.head.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) && statusErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	return false, err
}
