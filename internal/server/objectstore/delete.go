package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/sitedir/internal/common"
	"github.com/google/uuid"
)

// maxDeleteBatch is the S3 limit on keys per DeleteObjects request.
const maxDeleteBatch = 1000

// Deleter removes stored objects.
type Deleter struct {
	factory *Factory
	opts    options
}

func NewDeleter(factory *Factory, opts ...Option) *Deleter {
	return &Deleter{factory: factory, opts: newOptions(opts)}
}

// DeleteOne removes key. Deleting a missing key succeeds.
func (d *Deleter) DeleteOne(ctx context.Context, key string) error {
	t, err := d.factory.target(ctx)
	if err != nil {
		d.opts.logger.Error(ctx, "delete: storage unavailable", "key", key, "error", err)
		return err
	}

	start := time.Now()
	_, err = t.client.API.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
	}, withRegion(t.region))
	if isNoSuchKey(err) {
		err = nil
	}
	d.opts.metrics.StorageOp("delete", err, time.Since(start), 0)
	if err != nil {
		d.opts.logger.Error(ctx, "delete object failed", "key", key, "error", err)
		return &common.StorageError{Op: "delete", Key: key, Err: err}
	}

	d.opts.logger.Info(ctx, "object deleted", "key", key)
	return nil
}

// DeleteMany removes keys with batch requests. An empty list returns without
// contacting the store. Any per-key failure is reported as one StorageError
// listing the failed keys.
func (d *Deleter) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	log := d.opts.logger.With("op_id", uuid.NewString())

	t, err := d.factory.target(ctx)
	if err != nil {
		log.Error(ctx, "delete many: storage unavailable", "keys", len(keys), "error", err)
		return err
	}

	var failed []string
	var firstErr error

	for from := 0; from < len(keys); from += maxDeleteBatch {
		batch := keys[from:min(from+maxDeleteBatch, len(keys))]

		objects := make([]types.ObjectIdentifier, 0, len(batch))
		for _, k := range batch {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}

		start := time.Now()
		out, err := t.client.API.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(t.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		}, withRegion(t.region))
		d.opts.metrics.StorageOp("delete_many", err, time.Since(start), 0)

		if err != nil {
			failed = append(failed, batch...)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, e := range out.Errors {
			if aws.ToString(e.Code) == "NoSuchKey" {
				continue
			}
			failed = append(failed, aws.ToString(e.Key))
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %s", aws.ToString(e.Code), aws.ToString(e.Message))
			}
		}
	}

	if len(failed) > 0 {
		log.Error(ctx, "batch delete failed", "requested", len(keys), "failed", len(failed), "error", firstErr)
		return &common.StorageError{Op: "delete_many", Keys: failed, Err: firstErr}
	}

	log.Info(ctx, "objects deleted", "count", len(keys))
	return nil
}

func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound")
}
