// Package objectstore stores uploaded files in an S3-compatible object
// store: lazy client construction from resolved settings, uploads with
// derived keys and content types, signed GET URLs, and deletion.
package objectstore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of *s3.Client used here.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// URLPresigner is the subset of *s3.PresignClient used here.
type URLPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Client is the authenticated handle to the object store.
type Client struct {
	API       ObjectAPI
	Presigner URLPresigner
}

// Endpoint addresses an S3-compatible service other than AWS (MinIO etc).
// The zero value means AWS with virtual-hosted addressing.
type Endpoint struct {
	BaseURL      string
	UsePathStyle bool
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

// newS3Client builds a Client from static credentials. The region is not
// part of the client; every call passes it with withRegion.
func newS3Client(ctx context.Context, ep Endpoint, secretID, secretKey string) (*Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(secretID, secretKey, "")))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if ep.BaseURL != "" {
			o.BaseEndpoint = aws.String(ep.BaseURL)
		}
		o.UsePathStyle = ep.UsePathStyle
	})

	return &Client{API: client, Presigner: newS3PresignClient(client)}, nil
}

func withRegion(region string) func(*s3.Options) {
	return func(o *s3.Options) {
		o.Region = region
	}
}
