// Package mediastore uploads local videos to S3-compatible object storage
// and mints time-limited presigned URLs. The Graph API pulls media by URL,
// so every publish needs a location Meta's servers can fetch; a presigned
// GET against the uploaded object serves that role.
package mediastore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"postbeat/internal/config"
	"postbeat/internal/logging"
	"postbeat/internal/services"
)

// Uploader turns a local video file into a fetchable URL.
type Uploader interface {
	FetchableURL(ctx context.Context, localPath, folderName string) (string, error)
	Enabled() bool
}

// New builds an uploader from configuration. When storage is disabled the
// returned uploader reports itself disabled and fails any upload attempt
// with a configuration error.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Uploader, error) {
	if !cfg.Storage.Enabled {
		return disabledUploader{}, nil
	}
	return newS3Uploader(ctx, cfg, logger)
}

type s3Uploader struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	ttl     time.Duration
	logger  *slog.Logger
}

func newS3Uploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*s3Uploader, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey, cfg.Storage.SecretKey, "")),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "mediastore", "init", "load storage credentials", err)
	}

	endpoint := strings.TrimSpace(cfg.Storage.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	ttlDays := cfg.Storage.URLTTLDays
	if ttlDays <= 0 {
		ttlDays = 7
	}

	return &s3Uploader{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Storage.Bucket,
		prefix:  strings.Trim(cfg.Storage.KeyPrefix, "/"),
		ttl:     time.Duration(ttlDays) * 24 * time.Hour,
		logger:  logging.NewComponentLogger(logger, "mediastore"),
	}, nil
}

func (u *s3Uploader) Enabled() bool { return true }

// FetchableURL uploads the video and returns a presigned GET URL valid for
// the configured TTL.
func (u *s3Uploader) FetchableURL(ctx context.Context, localPath, folderName string) (string, error) {
	key := ObjectKey(u.prefix, folderName, localPath)

	file, err := os.Open(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrPrecondition, "mediastore", "upload", "open video file", err)
	}
	defer file.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "mediastore", "upload", fmt.Sprintf("put object %s", key), err)
	}
	u.logger.Info("video uploaded",
		logging.String("bucket", u.bucket),
		logging.String("key", key))

	presigned, err := u.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(u.ttl))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "mediastore", "presign", fmt.Sprintf("presign object %s", key), err)
	}
	return presigned.URL, nil
}

// ObjectKey derives the storage key for a video: prefix/folder/filename.
func ObjectKey(prefix, folderName, localPath string) string {
	parts := make([]string, 0, 3)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, folderName, filepath.Base(localPath))
	return path.Join(parts...)
}

type disabledUploader struct{}

func (disabledUploader) Enabled() bool { return false }

func (disabledUploader) FetchableURL(context.Context, string, string) (string, error) {
	return "", services.Wrap(services.ErrConfiguration, "mediastore", "upload",
		"object storage disabled, no fetchable URL available", nil)
}
