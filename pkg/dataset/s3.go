package dataset

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config locates a snapshot object. Region, endpoint and static keys are
// optional; without them the default AWS credential chain applies.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// GetObjectAPI is the slice of the S3 client the source needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a snapshot object. Keys ending in .sz are decompressed.
type S3Source struct {
	Bucket string
	Key    string
	Client GetObjectAPI
}

// NewS3Source builds a client from cfg. A custom endpoint switches to
// path-style addressing for S3-compatible stores such as MinIO.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &LoadError{Op: "open", Source: "s3://" + cfg.Bucket + "/" + cfg.Key, Cause: err}
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Source{Bucket: cfg.Bucket, Key: cfg.Key, Client: client}, nil
}

func (s *S3Source) Kind() string   { return "s3" }
func (s *S3Source) String() string { return "s3://" + s.Bucket + "/" + s.Key }

func (s *S3Source) Fetch(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, err
	}
	return maybeDecompress(s.Key, out.Body), nil
}
