package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Config holds the connection settings of an S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, set for MinIO and similar
	AccessKey string
	SecretKey string
	Prefix    string // key prefix, e.g. "uploads"
	PublicURL string // base URL clients fetch objects from
}

// S3Store keeps attachments in an S3 bucket.
type S3Store struct {
	client   s3iface.S3API
	uploader s3manageriface.UploaderAPI
	cfg      S3Config
}

// NewS3Store opens a session for cfg. Static credentials are used when an
// access key is configured, the default AWS chain otherwise.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	client := s3.New(sess)
	return NewS3StoreWithClient(client, s3manager.NewUploaderWithClient(client), cfg), nil
}

// NewS3StoreWithClient builds a store over existing clients.
func NewS3StoreWithClient(client s3iface.S3API, uploader s3manageriface.UploaderAPI, cfg S3Config) *S3Store {
	return &S3Store{client: client, uploader: uploader, cfg: cfg}
}

func (s *S3Store) key(name string) string {
	if s.cfg.Prefix == "" {
		return name
	}
	return s.cfg.Prefix + "/" + name
}

// publicURL returns the URL of key: PublicURL/key when configured,
// otherwise endpoint/bucket/key for path-style endpoints.
func (s *S3Store) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return s.cfg.PublicURL + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// Save uploads r to <prefix>/<name>.
func (s *S3Store) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	key := s.key(name)
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload attachment %s: %w", name, err)
	}
	return s.publicURL(key), nil
}

// Remove deletes the object stored under name.
func (s *S3Store) Remove(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete attachment %s: %w", name, err)
	}
	return nil
}
