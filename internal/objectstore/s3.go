// Package objectstore загружает постеры соревнований в S3-совместимое хранилище.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/sportsit/internal/config"
)

// ErrNotConfigured хранилище не настроено.
var ErrNotConfigured = errors.New("object storage is not configured")

// Store клиент S3-совместимого хранилища.
type Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// New создаёт клиент по настройкам. Без bucket возвращает ErrNotConfigured.
func New(ctx context.Context, cfg config.ObjectStorage) (*Store, error) {
	const op = "objectstore.New"

	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBaseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBaseURL == "" {
		publicBaseURL = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}

	return &Store{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

// ObjectKey строит ключ объекта: prefix/uuid.ext.
func ObjectKey(prefix, filename string) string {
	return path.Join(prefix, uuid.NewString()+strings.ToLower(path.Ext(filename)))
}

// Upload кладёт объект по ключу и возвращает его публичный URL.
func (s *Store) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	const op = "objectstore.Upload"

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, body); err != nil {
		return "", fmt.Errorf("%s: read body: %w", op, err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.publicBaseURL + "/" + key, nil
}
