// Package media turns unit video references into URLs a browser can load.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	TTL       time.Duration
}

// VideoSigner presigns GET requests for video objects stored in S3 or an
// S3-compatible store such as MinIO.
type VideoSigner struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

func NewS3VideoSigner(ctx context.Context, options S3Options) (*VideoSigner, error) {
	if strings.TrimSpace(options.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(options.Region),
	}
	if options.AccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(options.AccessKey, options.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := options.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &VideoSigner{
		presign: s3.NewPresignClient(client),
		bucket:  options.Bucket,
		ttl:     ttl,
	}, nil
}

// VideoURL passes absolute URLs through and presigns anything else as an
// object key. A nil signer returns the reference unchanged.
func (signer *VideoSigner) VideoURL(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || isAbsoluteURL(ref) || signer == nil {
		return ref, nil
	}

	key := strings.TrimPrefix(ref, "/")
	request, err := signer.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(signer.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(signer.ttl))
	if err != nil {
		return "", fmt.Errorf("presign video %s: %w", key, err)
	}
	return request.URL, nil
}

func isAbsoluteURL(ref string) bool {
	lowered := strings.ToLower(ref)
	return strings.HasPrefix(lowered, "https://") || strings.HasPrefix(lowered, "http://")
}
