package objectstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sitedir/internal/common"
)

// SettingsResolver resolves a single configuration value.
type SettingsResolver interface {
	Get(ctx context.Context, category, key string) (string, bool)
}

// Factory lazily builds and memoizes the storage client, bucket and region.
// The three are memoized independently and never rebuilt: rotating storage
// credentials needs a process restart. Failed resolutions memoize nothing.
//
// Resolution runs outside the lock, so concurrent first calls may each build
// a client; the first one stored is kept.
type Factory struct {
	settings SettingsResolver
	endpoint Endpoint
	build    func(ctx context.Context, ep Endpoint, secretID, secretKey string) (*Client, error)

	mu     sync.Mutex
	client *Client
	bucket string
	region string
}

func NewFactory(settings SettingsResolver, endpoint Endpoint) *Factory {
	return &Factory{
		settings: settings,
		endpoint: endpoint,
		build:    newS3Client,
	}
}

// Client returns the memoized client, building it on first use from the
// storage SECRET_ID and SECRET_KEY settings.
func (f *Factory) Client(ctx context.Context) (*Client, error) {
	f.mu.Lock()
	c := f.client
	f.mu.Unlock()
	if c != nil {
		return c, nil
	}

	secretID, idOK := f.settings.Get(ctx, common.SettingsCategoryStorage, common.StorageSecretIDKey)
	secretKey, keyOK := f.settings.Get(ctx, common.SettingsCategoryStorage, common.StorageSecretKeyKey)

	var missing []string
	if !idOK {
		missing = append(missing, settingName(common.StorageSecretIDKey))
	}
	if !keyOK {
		missing = append(missing, settingName(common.StorageSecretKeyKey))
	}
	if len(missing) > 0 {
		return nil, &common.ConfigurationError{Missing: missing}
	}

	c, err := f.build(ctx, f.endpoint, secretID, secretKey)
	if err != nil {
		return nil, fmt.Errorf("build storage client: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil {
		f.client = c
	}
	return f.client, nil
}

// Bucket returns the memoized storage BUCKET setting.
func (f *Factory) Bucket(ctx context.Context) (string, error) {
	return f.memoized(ctx, &f.bucket, common.StorageBucketKey)
}

// Region returns the memoized storage REGION setting.
func (f *Factory) Region(ctx context.Context) (string, error) {
	return f.memoized(ctx, &f.region, common.StorageRegionKey)
}

func (f *Factory) memoized(ctx context.Context, dst *string, key string) (string, error) {
	f.mu.Lock()
	v := *dst
	f.mu.Unlock()
	if v != "" {
		return v, nil
	}

	v, ok := f.settings.Get(ctx, common.SettingsCategoryStorage, key)
	if !ok {
		return "", &common.ConfigurationError{Missing: []string{settingName(key)}}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if *dst == "" {
		*dst = v
	}
	return *dst, nil
}

// target is everything a single storage call needs.
type target struct {
	client *Client
	bucket string
	region string
}

// target resolves client, bucket and region, reporting every missing
// setting in one ConfigurationError.
func (f *Factory) target(ctx context.Context) (target, error) {
	var t target
	var missing []string

	collect := func(err error) error {
		var ce *common.ConfigurationError
		if errors.As(err, &ce) {
			missing = append(missing, ce.Missing...)
			return nil
		}
		return err
	}

	c, err := f.Client(ctx)
	if err := collect(err); err != nil {
		return t, err
	}
	bucket, err := f.Bucket(ctx)
	if err := collect(err); err != nil {
		return t, err
	}
	region, err := f.Region(ctx)
	if err := collect(err); err != nil {
		return t, err
	}

	if len(missing) > 0 {
		return t, &common.ConfigurationError{Missing: missing}
	}
	return target{client: c, bucket: bucket, region: region}, nil
}

func settingName(key string) string {
	return common.SettingsCategoryStorage + "." + key
}
