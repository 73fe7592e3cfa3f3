package config

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/vroute/internal/errors"
)

// MaxRouteTableSize bounds the size of a route table read from S3.
const MaxRouteTableSize = 8 << 20

// ObjectGetter is the part of *s3.Client that route sources use.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SourceOption configures how route table sources are read.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	s3 ObjectGetter
}

// WithS3Client sets the client used for s3:// sources.
func WithS3Client(c ObjectGetter) SourceOption {
	return func(o *sourceOptions) {
		o.s3 = c
	}
}

// IsS3Source reports whether source is an s3:// URL.
func IsS3Source(source string) bool {
	return strings.HasPrefix(source, "s3://")
}

// ParseS3Source splits s3://bucket/key.
func ParseS3Source(source string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(source, "s3://")
	if !ok {
		return "", "", errors.New(errors.CodeSourceScheme).
			WithDetail("not an s3:// URL: " + source)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", errors.New(errors.CodeSourceScheme).
			WithDetail("s3 sources take the form s3://bucket/key, got " + source)
	}
	return bucket, key, nil
}

func readS3(ctx context.Context, client ObjectGetter, source string) ([]byte, error) {
	bucket, key, err := ParseS3Source(source)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New(errors.CodeS3Fetch).
			WithDetail("no S3 client configured for " + source)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New(errors.CodeS3Fetch).Wrap(err).WithRoutes(source)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, MaxRouteTableSize+1))
	if err != nil {
		return nil, errors.New(errors.CodeS3Fetch).Wrap(err).WithRoutes(source)
	}
	if len(data) > MaxRouteTableSize {
		return nil, errors.New(errors.CodeS3Fetch).
			WithDetail("route table exceeds 8 MiB").
			WithRoutes(source)
	}
	return data, nil
}

// NewS3Client builds an S3 client from the config and the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// variables.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  aws.CredentialsProviderFunc(envCredentials),
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "EnvironmentVariables",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New(errors.CodeS3Fetch).
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
	}
	return creds, nil
}
