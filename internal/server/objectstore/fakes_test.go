package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type mapSettings struct {
	mu     sync.Mutex
	values map[string]string
	calls  map[string]int
}

func newMapSettings(kv map[string]string) *mapSettings {
	return &mapSettings{values: kv, calls: map[string]int{}}
}

func (m *mapSettings) Get(_ context.Context, category, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[key]++
	v, ok := m.values[category+"."+key]
	return v, ok && v != ""
}

func (m *mapSettings) callCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[key]
}

func configured() *mapSettings {
	return newMapSettings(map[string]string{
		"storage.SECRET_ID":  "abc",
		"storage.SECRET_KEY": "xyz",
		"storage.BUCKET":     "b1",
		"storage.REGION":     "r1",
	})
}

// memoryStore is an in-memory ObjectAPI + URLPresigner. Signed URLs point at
// an httptest server that serves the stored bytes.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	regions []string

	putErr          error
	deleteErr       error
	deleteObjsErr   error
	deleteObjsFails map[string]string
	presignErr      error

	puts, deletes, batchDeletes int
	batchSizes                  []int
	lastExpires                 []int64

	srv *httptest.Server
}

func newMemoryStore(t *testing.T) *memoryStore {
	t.Helper()
	m := &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
	m.srv = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *memoryStore) client() *Client {
	return &Client{API: m, Presigner: m}
}

func (m *memoryStore) serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/b1/")
	m.mu.Lock()
	data, ok := m.objects[key]
	ct := m.types[key]
	m.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", ct)
	_, _ = w.Write(data)
}

func (m *memoryStore) region(optFns []func(*s3.Options)) string {
	var o s3.Options
	for _, fn := range optFns {
		fn(&o)
	}
	return o.Region
}

func (m *memoryStore) PutObject(_ context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.regions = append(m.regions, m.region(optFns))
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Key)] = data
	m.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryStore) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	m.regions = append(m.regions, m.region(optFns))
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memoryStore) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchDeletes++
	m.batchSizes = append(m.batchSizes, len(in.Delete.Objects))
	if m.deleteObjsErr != nil {
		return nil, m.deleteObjsErr
	}
	out := &s3.DeleteObjectsOutput{}
	for _, o := range in.Delete.Objects {
		k := aws.ToString(o.Key)
		if code, fail := m.deleteObjsFails[k]; fail {
			out.Errors = append(out.Errors, types.Error{Key: aws.String(k), Code: aws.String(code), Message: aws.String("denied")})
			continue
		}
		delete(m.objects, k)
	}
	return out, nil
}

func (m *memoryStore) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var po s3.PresignOptions
	for _, fn := range optFns {
		fn(&po)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastExpires = append(m.lastExpires, int64(po.Expires.Seconds()))
	m.regions = append(m.regions, m.region(po.ClientOptions))
	if m.presignErr != nil {
		return nil, m.presignErr
	}

	u, _ := url.Parse(m.srv.URL)
	u.Path = "/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	u.RawQuery = url.Values{"X-Amz-Expires": {strings.TrimSpace(po.Expires.String())}}.Encode()
	return &v4.PresignedHTTPRequest{URL: u.String(), Method: http.MethodGet}, nil
}

// newTestFactory returns a Factory whose client builder hands out store.
func newTestFactory(settings SettingsResolver, store *memoryStore) (*Factory, *atomic.Int32) {
	builds := new(atomic.Int32)
	f := NewFactory(settings, Endpoint{})
	f.build = func(context.Context, Endpoint, string, string) (*Client, error) {
		builds.Add(1)
		return store.client(), nil
	}
	return f, builds
}
