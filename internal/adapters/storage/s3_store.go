package storage

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps files as objects under prefix in one bucket.
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Prefix       string
}

func NewS3Store(ctx context.Context, o S3Options) (*S3Store, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(o.Region)}
	if o.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "load aws config")
	}

	client := s3.NewFromConfig(cfg, func(opt *s3.Options) {
		if o.BaseEndpoint != "" {
			opt.BaseEndpoint = aws.String(o.BaseEndpoint)
			opt.UsePathStyle = true
		}
	})
	return newS3Store(client, o.Bucket, o.Prefix), nil
}

func newS3Store(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) Save(ctx context.Context, name string, r io.Reader, allowed []string) (string, error) {
	stored, err := storedName(name, allowed)
	if err != nil {
		return "", err
	}

	// the sdk needs a seekable body to sign the payload
	body, ok := r.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(r)
		if err != nil {
			return "", customErrors.WrapInternal(err, "read upload")
		}
		body = bytes.NewReader(buf)
	}

	key := path.Join(s.prefix, stored)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if ct := mime.TypeByExtension(path.Ext(stored)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", customErrors.WrapInternal(err, "put object")
	}
	return key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return customErrors.WrapInternal(err, "delete object")
	}
	return nil
}
