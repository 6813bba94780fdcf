package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	gridioStorage "github.com/airbusgeo/gridio/interface/storage"
	"github.com/airbusgeo/gridio/internal/utils"
)

type gsStrategy struct {
	gsClient *storage.Client
}

type Writer interface {
	io.Writer
}

var retriableOAuth2Errors = []string{
	"cannot assign requested address",
	"connection refused",
	"connection reset",
	"timeout",
	"broken pipe",
	"client connection force closed",
	"502 Bad Gateway",
}

var retriableSuffixErrors = []string{
	"http2: client connection lost",
	"http2: client connection force closed via ClientConn.Close",
	"EOF", // Unexpected EOF is a temporary error
}

func gsError(err error) error {
	if err == nil {
		return nil
	}
	if utils.Temporary(err) {
		return err
	}

	// grpc & oauth2 does not transfer the temporary status of error
	// see ./vendor/golang.org/x/oauth2/oauth2/jwt/jwt.go func (js jwtSource) Token()
	// see ./vendor/google.golang.org/grpc/internal/transport/http2_client.go func (t *http2Client) getTrAuthData
	if strings.Contains(err.Error(), "oauth2: cannot fetch token:") {
		for _, e := range retriableOAuth2Errors {
			if strings.Contains(err.Error(), e) {
				return utils.MakeTemporary(err)
			}
		}
	}

	for _, e := range retriableSuffixErrors {
		if strings.HasSuffix(err.Error(), e) {
			return utils.MakeTemporary(err)
		}
	}
	return err
}

func NewGsStrategy(ctx context.Context) (gridioStorage.Strategy, error) {
	var err error

	gsClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create gs Client : %w", gsError(err))
	}

	return gsStrategy{
		gsClient: gsClient,
	}, nil
}

func (s gsStrategy) Download(ctx context.Context, uri string, options ...gridioStorage.Option) ([]byte, error) {
	bucket, path, err := s.decodeURI(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to decode URI %s : %w", uri, err)
	}

	return s.downloadObject(ctx, bucket, path, options...)
}

func (s gsStrategy) UploadFile(ctx context.Context, uri string, data io.ReadCloser, options ...gridioStorage.Option) error {
	bucket, object, err := s.decodeURI(ctx, uri)
	if err != nil {
		return fmt.Errorf("failed to decode URI %s : %w", uri, err)
	}

	if rs, ok := data.(io.ReadSeeker); ok {
		return gsError(s.uploadObjectFrom(ctx, bucket, object, rs, options...))
	}

	opts := gridioStorage.Apply(options...)
	writer := s.newWriter(ctx, bucket, object, opts.StorageClass, opts.ContentType)
	_, err = io.Copy(writer, data)
	if err != nil {
		writer.Close()
		return fmt.Errorf("UploadFile: failed to copy: %w", gsError(err))

	}
	err = writer.Close()
	if err != nil {
		return fmt.Errorf("UploadFile: failed to close writer: %w", gsError(err))
	}

	return nil
}

func (s gsStrategy) Delete(ctx context.Context, uri string, options ...gridioStorage.Option) error {
	bucket, object, err := s.decodeURI(ctx, uri)
	if err != nil {
		return fmt.Errorf("failed to decode URI %s : %w", uri, err)
	}

	return s.deleteObject(ctx, bucket, object, options...)
}

func (s gsStrategy) Exist(ctx context.Context, uri string) (bool, error) {
	bucket, object, err := s.decodeURI(ctx, uri)
	if err != nil {
		return false, fmt.Errorf("failed to decode URI %s : %w", uri, err)
	}

	if _, err = s.gsClient.Bucket(bucket).Object(object).Attrs(ctx); err != nil {
		switch err {
		case storage.ErrBucketNotExist:
			return false, fmt.Errorf("bucket not exist: %w", err)
		case storage.ErrObjectNotExist:
			return false, gridioStorage.ErrFileNotFound
		default:
			return false, fmt.Errorf("failed to check if file exist on storage: %w", gsError(err))
		}
	}

	return true, nil
}

func (s *gsStrategy) decodeURI(_ context.Context, uri string) (string, string, error) {
	bucket, path, err := Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse URI : %s : %w", uri, err)
	}

	return bucket, path, nil
}

func (s gsStrategy) downloadObject(ctx context.Context, bucket, path string, opts ...gridioStorage.Option) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := s.downloadObjectTo(ctx, bucket, path, buf, opts...)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s gsStrategy) downloadObjectTo(ctx context.Context, bucket, path string, w Writer, opts ...gridioStorage.Option) error {
	op := gridioStorage.Apply(opts...)
	d := op.Delay
	var err error
	var r *storage.Reader
	curOffset := int64(0)
	for try := 0; try < op.MaxTries; try++ {
		if try > 0 {
			time.Sleep(d)
			d *= 2
		}
		bckt := s.gsClient.Bucket(bucket)
		r, err = bckt.Object(path).NewRangeReader(ctx, curOffset, -1)
		if errors.Is(err, storage.ErrObjectNotExist) {
			return gridioStorage.ErrFileNotFound
		}
		if err != nil {
			err = gsError(err)
			if utils.Temporary(err) {
				continue
			} else {
				return fmt.Errorf("newreader: %w", err)
			}
		}

		var n int64
		n, err = io.Copy(w, r)
		r.Close()
		if err == nil {
			return nil
		}
		err = gsError(err)
		if !utils.Temporary(err) {
			return fmt.Errorf("copy: %w", err)
		}

		curOffset += n
	}
	return fmt.Errorf("failed after %d retries: %w", op.MaxTries, err)
}

func (s gsStrategy) uploadObjectFrom(ctx context.Context, bucket, object string, r io.ReadSeeker, opts ...gridioStorage.Option) error {
	op := gridioStorage.Apply(opts...)
	d := op.Delay
	var err error
	var w *storage.Writer
	off, _ := r.Seek(0, io.SeekCurrent)
	for try := 0; try < op.MaxTries; try++ {
		if try > 0 {
			time.Sleep(d)
			d *= 2
			_, err = r.Seek(off, io.SeekStart)
			if err != nil {
				err = gsError(err)
				if utils.Temporary(err) {
					continue
				} else {
					return fmt.Errorf("r.reset: %w", err)
				}
			}
		}
		w = s.newWriter(ctx, bucket, object, op.StorageClass, op.ContentType)
		_, err = io.Copy(w, r)
		if err != nil {
			w.Close()
			err = gsError(err)
			if utils.Temporary(err) {
				continue
			} else {
				return fmt.Errorf("copy: %w", err)
			}
		}
		err = gsError(w.Close())
		if err == nil {
			return nil
		}
		if !utils.Temporary(err) {
			return fmt.Errorf("w.close: %w", err)
		}
	}
	return fmt.Errorf("failed after %d retries: %w", op.MaxTries, err)
}

func (s gsStrategy) newWriter(ctx context.Context, bucket, object string, storageClass, contentType string) *storage.Writer {
	w := s.gsClient.Bucket(bucket).Object(object).NewWriter(ctx)
	if storageClass != "" {
		w.StorageClass = storageClass
	}
	if contentType != "" {
		w.ContentType = contentType
	}
	return w
}

func (s gsStrategy) deleteObject(ctx context.Context, bucket, object string, opts ...gridioStorage.Option) error {
	op := gridioStorage.Apply(opts...)
	d := op.Delay
	var err error
	for try := 0; try < op.MaxTries; try++ {
		if try > 0 {
			time.Sleep(d)
			d *= 2
		}
		err = s.gsClient.Bucket(bucket).Object(object).Delete(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			if op.IgnoreNotFound {
				return nil
			}
			return gridioStorage.ErrFileNotFound
		}
		err = gsError(err)
		if err == nil {
			return nil
		}
		if !utils.Temporary(err) {
			return fmt.Errorf("delete: %w", err)
		}
	}
	return fmt.Errorf("failed after %d retries: %w", op.MaxTries, err)
}
