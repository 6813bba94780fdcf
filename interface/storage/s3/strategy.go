package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gridioStorage "github.com/airbusgeo/gridio/interface/storage"
	"github.com/airbusgeo/gridio/internal/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Client is the subset of the s3 API used by the strategy
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type s3Strategy struct {
	client Client
}

// NewS3Strategy creates a strategy using the default aws configuration (environment, shared config...)
func NewS3Strategy(ctx context.Context) (gridioStorage.Strategy, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3StrategyFromConfig(cfg), nil
}

// NewS3StrategyFromConfig creates a strategy using the given aws configuration
func NewS3StrategyFromConfig(cfg aws.Config) gridioStorage.Strategy {
	return s3Strategy{client: s3.NewFromConfig(cfg)}
}

// NewS3StrategyWithClient creates a strategy using client
func NewS3StrategyWithClient(client Client) gridioStorage.Strategy {
	return s3Strategy{client: client}
}

// Parse takes in a string in the form s3://bucket/path/to/object and returns the bucket and the key
func Parse(uri string) (bucket, key string, err error) {
	uri = strings.TrimPrefix(uri, "s3://")
	i := strings.Index(uri, "/")
	if i <= 0 || i == len(uri)-1 {
		return "", "", fmt.Errorf("missing bucket or object in %s", uri)
	}
	return uri[:i], uri[i+1:], nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

// s3Error marks as temporary the errors that the aws sdk considers retryable
// (throttling, 5xx, connection errors...)
func s3Error(err error) error {
	if err == nil || utils.Temporary(err) {
		return err
	}
	if retry.IsErrorRetryables(retry.DefaultRetryables).IsErrorRetryable(err) == aws.TrueTernary {
		return utils.MakeTemporary(err)
	}
	return err
}

func (s s3Strategy) retry(ctx context.Context, op func() error, opts ...gridioStorage.Option) error {
	o := gridioStorage.Apply(opts...)
	d := o.Delay
	var err error
	for try := 0; try < o.MaxTries; try++ {
		if try > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
			}
			d *= 2
		}
		if err = op(); err == nil || !utils.Temporary(err) {
			return err
		}
	}
	return fmt.Errorf("failed after %d retries: %w", o.MaxTries, err)
}

func (s s3Strategy) download(ctx context.Context, uri string, w io.Writer, options ...gridioStorage.Option) error {
	bucket, key, err := Parse(uri)
	if err != nil {
		return err
	}
	return s.retry(ctx, func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
		if err != nil {
			if isNotFound(err) {
				return gridioStorage.ErrFileNotFound
			}
			return s3Error(fmt.Errorf("get s3://%s/%s: %w", bucket, key, err))
		}
		defer out.Body.Close()
		if _, err := io.Copy(w, out.Body); err != nil {
			return utils.MakeTemporary(fmt.Errorf("copy s3://%s/%s: %w", bucket, key, err))
		}
		return nil
	}, options...)
}

func (s s3Strategy) Download(ctx context.Context, uri string, options ...gridioStorage.Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.download(ctx, uri, &buf, options...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s s3Strategy) UploadFile(ctx context.Context, uri string, data io.ReadCloser, options ...gridioStorage.Option) error {
	rs, ok := data.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(data)
		if err != nil {
			return fmt.Errorf("UploadFile: %w", err)
		}
		rs = bytes.NewReader(b)
	}
	return s.upload(ctx, uri, rs, options...)
}

func (s s3Strategy) upload(ctx context.Context, uri string, r io.ReadSeeker, options ...gridioStorage.Option) error {
	bucket, key, err := Parse(uri)
	if err != nil {
		return err
	}
	o := gridioStorage.Apply(options...)
	off, _ := r.Seek(0, io.SeekCurrent)
	return s.retry(ctx, func() error {
		if _, err := r.Seek(off, io.SeekStart); err != nil {
			return fmt.Errorf("r.reset: %w", err)
		}
		input := &s3.PutObjectInput{Bucket: aws.String(bucket), Key: aws.String(key), Body: r}
		if o.ContentType != "" {
			input.ContentType = aws.String(o.ContentType)
		}
		if o.StorageClass != "" {
			input.StorageClass = types.StorageClass(o.StorageClass)
		}
		if _, err := s.client.PutObject(ctx, input); err != nil {
			return s3Error(fmt.Errorf("put s3://%s/%s: %w", bucket, key, err))
		}
		return nil
	}, options...)
}

func (s s3Strategy) Delete(ctx context.Context, uri string, options ...gridioStorage.Option) error {
	bucket, key, err := Parse(uri)
	if err != nil {
		return err
	}
	if _, err := s.Exist(ctx, uri); errors.Is(err, gridioStorage.ErrFileNotFound) {
		if gridioStorage.Apply(options...).IgnoreNotFound {
			return nil
		}
		return err
	}
	return s.retry(ctx, func() error {
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
			return s3Error(fmt.Errorf("delete s3://%s/%s: %w", bucket, key, err))
		}
		return nil
	}, options...)
}

func (s s3Strategy) Exist(ctx context.Context, uri string) (bool, error) {
	bucket, key, err := Parse(uri)
	if err != nil {
		return false, err
	}
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
		if isNotFound(err) {
			return false, gridioStorage.ErrFileNotFound
		}
		return false, s3Error(fmt.Errorf("head s3://%s/%s: %w", bucket, key, err))
	}
	return true, nil
}
