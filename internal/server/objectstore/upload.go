package objectstore

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/sitedir/internal/common"
	"github.com/dmitrijs2005/sitedir/internal/server/models"
	"github.com/google/uuid"
)

// Uploader writes whole in-memory files under generated keys.
type Uploader struct {
	factory *Factory
	signer  *Signer
	opts    options
}

func NewUploader(factory *Factory, signer *Signer, opts ...Option) *Uploader {
	return &Uploader{factory: factory, signer: signer, opts: newOptions(opts)}
}

// Upload stores data under a new key in folder and returns the key with a
// signed URL valid for the upload URL expiry. The content type is derived
// from fileName's extension only. The put is a single request and is not
// retried.
func (u *Uploader) Upload(ctx context.Context, data []byte, fileName, folder string) (*models.UploadResult, error) {
	log := u.opts.logger.With("op_id", uuid.NewString(), "folder", folder, "file_name", fileName)

	key, err := NewKey(folder, fileName, u.opts.now())
	if err != nil {
		log.Warn(ctx, "upload rejected", "error", err)
		return nil, err
	}

	t, err := u.factory.target(ctx)
	if err != nil {
		log.Error(ctx, "upload: storage unavailable", "error", err)
		return nil, err
	}

	contentType := ContentType(fileName)
	size := int64(len(data))

	start := time.Now()
	_, err = t.client.API.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, withRegion(t.region))
	u.opts.metrics.StorageOp("put", err, time.Since(start), size)
	if err != nil {
		log.Error(ctx, "put object failed", "key", key, "error", err)
		return nil, &common.StorageError{Op: "put", Key: key, Err: err}
	}

	url, err := u.signer.Sign(ctx, key, u.opts.uploadURLExpiry)
	if err != nil {
		// The object is stored; the caller only lost the URL and may re-sign the key.
		log.Error(ctx, "uploaded object could not be signed", "key", key, "error", err)
		return nil, err
	}

	log.Info(ctx, "object uploaded", "key", key, "content_type", contentType, "bytes", size)

	return &models.UploadResult{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		Bucket:      t.bucket,
		Region:      t.region,
		Size:        size,
	}, nil
}
