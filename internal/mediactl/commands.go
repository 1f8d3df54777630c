package mediactl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/sitedir/internal/filex"
	"github.com/dmitrijs2005/sitedir/internal/netx"
	"github.com/dmitrijs2005/sitedir/internal/server/models"
)

// readFile is a seam for tests.
var readFile = os.ReadFile

type UploadCmd struct {
	File   string `arg:"" type:"existingfile" help:"Local file to upload."`
	Folder string `short:"f" required:"" help:"Destination folder, e.g. images/blog."`
	Name   string `help:"File name used for the content type and extension (defaults to the local name)."`
}

func (c *UploadCmd) Run(ctx context.Context, s *Services) error {
	data, err := readFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	name := c.Name
	if name == "" {
		name = filepath.Base(c.File)
	}

	res, err := s.Uploader.Upload(ctx, data, name, c.Folder)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(s.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

type SignCmd struct {
	Key     string        `arg:"" help:"Object key."`
	Expires time.Duration `short:"x" default:"0s" help:"URL lifetime; 0 means the server default (1h)."`
}

func (c *SignCmd) Run(ctx context.Context, s *Services) error {
	url, err := s.Signer.Sign(ctx, c.Key, c.Expires)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.Out, url)
	return err
}

type DownloadCmd struct {
	Key    string `arg:"" help:"Object key."`
	Output string `short:"o" help:"File to write; stdout when empty."`
}

func (c *DownloadCmd) Run(ctx context.Context, s *Services) (err error) {
	url, err := s.Signer.Sign(ctx, c.Key, 0)
	if err != nil {
		return err
	}

	w := s.Out
	if c.Output != "" {
		f, err := filex.Create(c.Output)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	n, err := netx.Download(ctx, s.HTTPClient, url, w)
	if err != nil {
		return fmt.Errorf("download %s: %w", c.Key, err)
	}
	if s.Logger != nil {
		s.Logger.Info(ctx, "downloaded", "key", c.Key, "bytes", n)
	}
	return nil
}

type DeleteCmd struct {
	Keys []string `arg:"" help:"Object keys to delete."`
}

func (c *DeleteCmd) Run(ctx context.Context, s *Services) error {
	if len(c.Keys) == 1 {
		return s.Deleter.DeleteOne(ctx, c.Keys[0])
	}
	return s.Deleter.DeleteMany(ctx, c.Keys)
}

type SettingsCmd struct {
	Get   SettingsGetCmd   `cmd:"" help:"Print the resolved value of a setting."`
	List  SettingsListCmd  `cmd:"" help:"List stored settings of a category."`
	Set   SettingsSetCmd   `cmd:"" help:"Store a setting."`
	Unset SettingsUnsetCmd `cmd:"" help:"Remove a stored setting."`
}

type SettingsGetCmd struct {
	Category string `arg:""`
	Key      string `arg:""`
}

func (c *SettingsGetCmd) Run(ctx context.Context, s *Services) error {
	v, ok := s.Reader.Get(ctx, c.Category, c.Key)
	if !ok {
		return fmt.Errorf("%s.%s: %w", c.Category, c.Key, ErrSettingNotSet)
	}
	_, err := fmt.Fprintln(s.Out, v)
	return err
}

type SettingsListCmd struct {
	Category    string `arg:""`
	ShowSecrets bool   `help:"Print secret values instead of masking them."`
}

func (c *SettingsListCmd) Run(ctx context.Context, s *Services) error {
	all := s.Reader.GetAll(ctx, c.Category)

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := all[k]
		if !c.ShowSecrets && isSecret(k) {
			v = mask(v)
		}
		if _, err := fmt.Fprintf(s.Out, "%s=%s\n", k, v); err != nil {
			return err
		}
	}
	return nil
}

type SettingsSetCmd struct {
	Category string `arg:""`
	Key      string `arg:""`
	Value    string `arg:""`
}

func (c *SettingsSetCmd) Run(ctx context.Context, s *Services) error {
	if s.Writer == nil {
		return ErrNoSettingsStore
	}
	return s.Writer.Set(ctx, models.Setting{Category: c.Category, Key: c.Key, Value: c.Value})
}

type SettingsUnsetCmd struct {
	Category string `arg:""`
	Key      string `arg:""`
}

func (c *SettingsUnsetCmd) Run(ctx context.Context, s *Services) error {
	if s.Writer == nil {
		return ErrNoSettingsStore
	}
	return s.Writer.Unset(ctx, c.Category, c.Key)
}

func isSecret(key string) bool {
	return strings.Contains(strings.ToUpper(key), "SECRET")
}

// mask keeps the last four characters of long values.
func mask(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
