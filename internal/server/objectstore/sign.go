package objectstore

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/sitedir/internal/common"
)

// Signer issues time-limited GET URLs for stored objects. It does not check
// that the object exists; a URL for a missing key fails when fetched.
type Signer struct {
	factory *Factory
	opts    options
}

func NewSigner(factory *Factory, opts ...Option) *Signer {
	return &Signer{factory: factory, opts: newOptions(opts)}
}

// Sign returns a presigned GET URL for key. expires <= 0 selects the
// default expiry; no upper bound is enforced here.
func (s *Signer) Sign(ctx context.Context, key string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = s.opts.signURLExpiry
	}

	t, err := s.factory.target(ctx)
	if err != nil {
		s.opts.logger.Error(ctx, "sign: storage unavailable", "key", key, "error", err)
		return "", err
	}

	start := time.Now()
	req, err := t.client.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
	},
		s3.WithPresignExpires(expires),
		s3.WithPresignClientFromClientOptions(withRegion(t.region)),
	)
	s.opts.metrics.StorageOp("sign", err, time.Since(start), 0)
	if err != nil {
		serr := &common.StorageError{Op: "sign", Key: key, Err: err}
		s.opts.logger.Error(ctx, "presign failed", "key", key, "error", err)
		return "", serr
	}

	return req.URL, nil
}
