package objectstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sitedir/internal/common"
	"github.com/dmitrijs2005/sitedir/internal/shared"
)

// randSuffix returns the 6-character key suffix. It is a seam for tests.
var randSuffix = func() (string, error) {
	return shared.MakeRandHexString(3)
}

// NewKey builds "<folder>/<epochMillis>-<suffix>.<ext>". The extension comes
// from fileName and is dropped when fileName has none.
func NewKey(folder, fileName string, now time.Time) (string, error) {
	folder, err := CleanFolder(folder)
	if err != nil {
		return "", err
	}

	suffix, err := randSuffix()
	if err != nil {
		return "", fmt.Errorf("random key suffix: %w", err)
	}

	key := fmt.Sprintf("%s/%d-%s", folder, now.UnixMilli(), suffix)
	if ext := Extension(fileName); ext != "" {
		key += "." + ext
	}
	return key, nil
}

// CleanFolder trims a trailing slash and rejects folders that are empty,
// absolute, contain backslashes or have empty, "." or ".." segments.
func CleanFolder(folder string) (string, error) {
	folder = strings.TrimSuffix(folder, "/")
	if folder == "" || strings.HasPrefix(folder, "/") || strings.Contains(folder, `\`) {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidFolder, folder)
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", common.ErrInvalidFolder, folder)
		}
	}
	return folder, nil
}
