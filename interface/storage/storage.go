package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

// Strategy reads and writes files on a storage (local filesystem, bucket...)
type Strategy interface {
	Download(ctx context.Context, uri string, options ...Option) ([]byte, error)
	// UploadFile writes data to uri. StorageClass and ContentType are ignored by the local filesystem.
	UploadFile(ctx context.Context, uri string, data io.ReadCloser, options ...Option) error
	Delete(ctx context.Context, uri string, options ...Option) error
	// Exist returns ErrFileNotFound if the file does not exist
	Exist(ctx context.Context, uri string) (bool, error)
}

type Option func(o *option)

type option struct {
	MaxTries       int
	Delay          time.Duration
	StorageClass   string
	ContentType    string
	IgnoreNotFound bool
}

func MaxTries(n int) Option {
	if n <= 0 {
		n = 1
	}
	return func(o *option) {
		o.MaxTries = n
	}
}

func OnErrorRetryDelay(d time.Duration) Option {
	if d < 0 {
		d = 0
	}
	return func(o *option) {
		o.Delay = d
	}
}

// StorageClass sets the storage class of the uploaded objects (e.g. NEARLINE, STANDARD_IA)
func StorageClass(cl string) Option {
	return func(o *option) {
		o.StorageClass = cl
	}
}

func ContentType(ct string) Option {
	return func(o *option) {
		o.ContentType = ct
	}
}

// IgnoreNotFound makes Delete succeed if the file does not exist
func IgnoreNotFound() Option {
	return func(o *option) {
		o.IgnoreNotFound = true
	}
}

func Apply(opts ...Option) option {
	opt := option{
		MaxTries: 10,
		Delay:    time.Second,
	}
	for _, o := range opts {
		o(&opt)
	}
	return opt
}
