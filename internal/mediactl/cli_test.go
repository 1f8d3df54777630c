package mediactl

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dmitrijs2005/sitedir/internal/common"
	"github.com/dmitrijs2005/sitedir/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServices struct {
	uploadData   []byte
	uploadName   string
	uploadFolder string
	uploadErr    error

	signBase    string
	signKey     string
	signExpires time.Duration

	deletedOne  string
	deletedMany []string

	values map[string]string
	set    []models.Setting
	unset  []string
}

func (f *fakeServices) Upload(_ context.Context, data []byte, fileName, folder string) (*models.UploadResult, error) {
	f.uploadData, f.uploadName, f.uploadFolder = data, fileName, folder
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &models.UploadResult{Key: folder + "/1-abcdef.png", URL: "https://signed", ContentType: "image/png", Size: int64(len(data))}, nil
}

func (f *fakeServices) Sign(_ context.Context, key string, expires time.Duration) (string, error) {
	f.signKey, f.signExpires = key, expires
	base := f.signBase
	if base == "" {
		base = "https://signed"
	}
	return base + "/" + key, nil
}

func (f *fakeServices) DeleteOne(_ context.Context, key string) error {
	f.deletedOne = key
	return nil
}

func (f *fakeServices) DeleteMany(_ context.Context, keys []string) error {
	f.deletedMany = keys
	return nil
}

func (f *fakeServices) Get(_ context.Context, category, key string) (string, bool) {
	v, ok := f.values[category+"."+key]
	return v, ok
}

func (f *fakeServices) GetAll(_ context.Context, category string) map[string]string {
	out := map[string]string{}
	prefix := category + "."
	for k, v := range f.values {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out[k[len(prefix):]] = v
		}
	}
	return out
}

func (f *fakeServices) Set(_ context.Context, entries ...models.Setting) error {
	f.set = append(f.set, entries...)
	return nil
}

func (f *fakeServices) Unset(_ context.Context, category, key string) error {
	f.unset = append(f.unset, category+"."+key)
	return nil
}

func newServices(f *fakeServices, withWriter bool) (*Services, *bytes.Buffer) {
	out := &bytes.Buffer{}
	s := &Services{Uploader: f, Signer: f, Deleter: f, Reader: f, Out: out}
	if withWriter {
		s.Writer = f
	}
	return s, out
}

func run(t *testing.T, s *Services, args ...string) error {
	t.Helper()
	var cli CLI
	var usage bytes.Buffer
	parser, err := NewParser(&cli, kong.Writers(&usage, &usage), kong.Exit(func(int) { t.Fatalf("unexpected exit: %s", usage.String()) }))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return Run(context.Background(), kctx, s)
}

func TestUploadCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Photo.PNG")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

	f := &fakeServices{}
	s, out := newServices(f, false)

	require.NoError(t, run(t, s, "upload", path, "-f", "images/blog"))

	assert.Equal(t, []byte("png-bytes"), f.uploadData)
	assert.Equal(t, "Photo.PNG", f.uploadName)
	assert.Equal(t, "images/blog", f.uploadFolder)

	var res models.UploadResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "images/blog/1-abcdef.png", res.Key)
	assert.Equal(t, "https://signed", res.URL)
}

func TestUploadCmd_NameOverrideAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	f := &fakeServices{uploadErr: &common.ConfigurationError{Missing: []string{"storage.BUCKET"}}}
	s, _ := newServices(f, false)

	err := run(t, s, "upload", path, "--folder", "docs", "--name", "report.pdf")
	require.Error(t, err)
	assert.Equal(t, "report.pdf", f.uploadName)
	assert.Equal(t, "storage is not configured", UserMessage(err))
}

func TestSignCmd(t *testing.T) {
	f := &fakeServices{}
	s, out := newServices(f, false)

	require.NoError(t, run(t, s, "sign", "images/a.png"))
	assert.Equal(t, time.Duration(0), f.signExpires)
	assert.Equal(t, "https://signed/images/a.png\n", out.String())

	require.NoError(t, run(t, s, "sign", "images/a.png", "--expires", "10m"))
	assert.Equal(t, 10*time.Minute, f.signExpires)
}

func TestDownloadCmd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/a.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer ts.Close()

	f := &fakeServices{signBase: ts.URL}
	s, out := newServices(f, false)
	s.HTTPClient = ts.Client()

	require.NoError(t, run(t, s, "download", "images/a.png"))
	assert.Equal(t, "png-bytes", out.String())
	assert.Equal(t, time.Duration(0), f.signExpires)

	dst := filepath.Join(t.TempDir(), "out", "a.png")
	require.NoError(t, run(t, s, "download", "images/a.png", "-o", dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))

	err = run(t, s, "download", "images/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDeleteCmd(t *testing.T) {
	f := &fakeServices{}
	s, _ := newServices(f, false)

	require.NoError(t, run(t, s, "delete", "a"))
	assert.Equal(t, "a", f.deletedOne)
	assert.Nil(t, f.deletedMany)

	require.NoError(t, run(t, s, "delete", "a", "b", "c"))
	assert.Equal(t, []string{"a", "b", "c"}, f.deletedMany)
}

func TestSettingsGetCmd(t *testing.T) {
	f := &fakeServices{values: map[string]string{"storage.BUCKET": "media"}}
	s, out := newServices(f, false)

	require.NoError(t, run(t, s, "settings", "get", "storage", "BUCKET"))
	assert.Equal(t, "media\n", out.String())

	err := run(t, s, "settings", "get", "storage", "REGION")
	require.ErrorIs(t, err, ErrSettingNotSet)
	assert.Equal(t, "storage.REGION: setting is not set", UserMessage(err))
}

func TestSettingsListCmd_MasksSecrets(t *testing.T) {
	f := &fakeServices{values: map[string]string{
		"storage.BUCKET":     "media",
		"storage.SECRET_KEY": "abcdefgh1234",
		"storage.SECRET_ID":  "id",
		"blog.TITLE":         "ignored",
	}}
	s, out := newServices(f, false)

	require.NoError(t, run(t, s, "settings", "list", "storage"))
	assert.Equal(t, "BUCKET=media\nSECRET_ID=****\nSECRET_KEY=****1234\n", out.String())

	out.Reset()
	require.NoError(t, run(t, s, "settings", "list", "storage", "--show-secrets"))
	assert.Contains(t, out.String(), "SECRET_KEY=abcdefgh1234\n")
}

func TestSettingsWriteCmds(t *testing.T) {
	f := &fakeServices{}

	s, _ := newServices(f, false)
	assert.ErrorIs(t, run(t, s, "settings", "set", "storage", "BUCKET", "media"), ErrNoSettingsStore)
	assert.ErrorIs(t, run(t, s, "settings", "unset", "storage", "BUCKET"), ErrNoSettingsStore)

	s, _ = newServices(f, true)
	require.NoError(t, run(t, s, "settings", "set", "storage", "BUCKET", "media"))
	require.NoError(t, run(t, s, "settings", "unset", "storage", "REGION"))

	assert.Equal(t, []models.Setting{{Category: "storage", Key: "BUCKET", Value: "media"}}, f.set)
	assert.Equal(t, []string{"storage.REGION"}, f.unset)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "operation failed, please retry",
		UserMessage(&common.StorageError{Op: "put", Key: "k", Err: errors.New("503 from upstream")}))
	assert.Equal(t, "not found", UserMessage(common.ErrorNotFound))
}

func TestOpen_NoDB(t *testing.T) {
	t.Setenv("BUCKET", "media-env")

	g := &Globals{NoDB: true, EnvFile: filepath.Join(t.TempDir(), "missing.env"), LogFormat: "text", LogLevel: "warn"}
	var out, logs bytes.Buffer

	s, closeDB, err := Open(context.Background(), g, &out, &logs)
	require.NoError(t, err)
	require.NoError(t, closeDB())

	assert.Nil(t, s.Writer)
	v, ok := s.Reader.Get(context.Background(), common.SettingsCategoryStorage, common.StorageBucketKey)
	require.True(t, ok)
	assert.Equal(t, "media-env", v)
}

func TestOpen_DBError(t *testing.T) {
	orig := openPostgres
	t.Cleanup(func() { openPostgres = orig })
	openPostgres = func(ctx context.Context, dsn string) (*sql.DB, error) {
		return nil, errors.New("db ping error: refused")
	}

	g := &Globals{DatabaseDSN: "postgres://x", EnvFile: "", LogFormat: "json", LogLevel: "info"}
	_, _, err := Open(context.Background(), g, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestOpen_BadLogLevel(t *testing.T) {
	g := &Globals{NoDB: true, LogFormat: "text", LogLevel: "loud"}
	_, _, err := Open(context.Background(), g, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
}
