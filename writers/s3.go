package writers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kova98/threadcorpus/corpus"
)

type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
}

type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Writer uploads the CSV rendering of a corpus to an S3 compatible
// bucket, creating the bucket when it does not exist.
type S3Writer struct {
	logger       *slog.Logger
	store        objectStore
	bucket       string
	object       string
	missingToken string
}

func NewS3Writer(logger *slog.Logger, opts S3Options, missingToken string) (*S3Writer, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3Writer{
		logger:       logger,
		store:        client,
		bucket:       opts.Bucket,
		object:       opts.Object,
		missingToken: missingToken,
	}, nil
}

func (w *S3Writer) Write(ctx context.Context, c corpus.Corpus) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, c, w.missingToken); err != nil {
		return err
	}

	exists, err := w.store.BucketExists(ctx, w.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", w.bucket, err)
	}
	if !exists {
		if err := w.store.MakeBucket(ctx, w.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", w.bucket, err)
		}
	}

	info, err := w.store.PutObject(ctx, w.bucket, w.object, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", w.bucket, w.object, err)
	}
	w.logger.Info("corpus uploaded", "bucket", w.bucket, "object", w.object, "bytes", info.Size)
	return nil
}
