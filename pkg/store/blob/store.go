package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ErrExists reports an upload without overwrite against an existing key.
var ErrExists = errors.New("asset already exists")

// Store uploads branding assets to an object bucket and returns their public
// URL.
type Store interface {
	Upload(ctx context.Context, name string, body []byte, overwrite bool) (string, error)
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type s3Store struct {
	client s3API
	bucket string
	region string
	prefix string
}

type Settings struct {
	Bucket string
	Region string
	Prefix string
}

func NewStore(ctx context.Context, settings Settings) (Store, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(settings.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &s3Store{
		client: s3.NewFromConfig(cfg),
		bucket: settings.Bucket,
		region: settings.Region,
		prefix: settings.Prefix,
	}, nil
}

// NewStoreWithClient injects a ready client; used by tests.
func NewStoreWithClient(client s3API, settings Settings) Store {
	return &s3Store{
		client: client,
		bucket: settings.Bucket,
		region: settings.Region,
		prefix: settings.Prefix,
	}
}

func (s *s3Store) Upload(ctx context.Context, name string, body []byte, overwrite bool) (string, error) {
	key := s.prefix + name

	if !overwrite {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return "", fmt.Errorf("upload %s: %w", name, ErrExists)
		}
		var apiErr smithy.APIError
		if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "NotFound" {
			return "", fmt.Errorf("check %s: %w", name, err)
		}
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(http.DetectContentType(body)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
