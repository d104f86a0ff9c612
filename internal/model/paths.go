package model

import (
	"os"
	"path/filepath"
)

func cacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "foldswitch")
	}
	return filepath.Join(os.TempDir(), "foldswitch-cache")
}
