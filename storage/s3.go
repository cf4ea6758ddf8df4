package storage

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/uritemplates/am"
	"github.com/teranos/uritemplates/errors"
	"github.com/teranos/uritemplates/logger"
)

// S3API is the part of *s3.Client an S3Source needs.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Source lists object keys under a prefix. Keys are returned relative to
// the prefix.
type S3Source struct {
	Bucket   string
	Prefix   string
	PageSize int32

	client  S3API
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewS3Source builds a client from the default AWS credential chain.
func NewS3Source(ctx context.Context, bucket, prefix string, cfg am.S3Config) (*S3Source, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(err, "load AWS config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewS3SourceWithClient(client, bucket, prefix, cfg), nil
}

// NewS3SourceWithClient wraps an existing client. A RequestsPerSecond of
// zero leaves listing unthrottled.
func NewS3SourceWithClient(client S3API, bucket, prefix string, cfg am.S3Config) *S3Source {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &S3Source{
		Bucket:   bucket,
		Prefix:   prefix,
		PageSize: cfg.PageSize,
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger.ComponentLogger("storage.s3"),
	}
}

// List pages through ListObjectsV2, waiting on the rate limiter before
// each request.
func (s *S3Source) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
	}
	if s.Prefix != "" {
		input.Prefix = aws.String(s.Prefix)
	}
	if s.PageSize > 0 {
		input.MaxKeys = aws.Int32(s.PageSize)
	}

	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for page := 1; paginator.HasMorePages(); page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrapf(err, "list %s", s)
		}
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "list %s page %d", s, page)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			names = append(names, strings.TrimPrefix(strings.TrimPrefix(key, s.Prefix), "/"))
		}
		s.logger.Debugw("Listed page",
			logger.FieldBucket, s.Bucket,
			logger.FieldPrefix, s.Prefix,
			"page", page,
			logger.FieldCount, len(out.Contents))
	}
	return names, nil
}

func (s *S3Source) String() string {
	if s.Prefix == "" {
		return "s3://" + s.Bucket
	}
	return "s3://" + s.Bucket + "/" + s.Prefix
}
