package keystore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File stores each key as <dir>/<key>.json with owner-only permissions.
type File struct {
	dir string
}

// NewFile returns a file-backed store rooted at dir. An empty dir resolves
// to the user config directory joined with "authbite".
func NewFile(dir string) (*File, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("keystore: resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "authbite")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, backendError("mkdir", dir, err)
	}

	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, filepath.Base(key)+".json")
}

func (f *File) Get(_ context.Context, key string, out any) error {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return backendError("read", key, err)
	}

	return Unmarshal(data, out)
}

// Set writes to a temporary file first and renames it into place.
func (f *File) Set(_ context.Context, key string, in any) error {
	data, err := Marshal(in)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+filepath.Base(key)+"-*")
	if err != nil {
		return backendError("create", key, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return backendError("write", key, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return backendError("chmod", key, err)
	}
	if err := tmp.Close(); err != nil {
		return backendError("close", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return backendError("rename", key, err)
	}

	return nil
}

func (f *File) Close() error {
	return nil
}
