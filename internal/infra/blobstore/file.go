package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBlob stores the object at <root>/<container>/<name> on local disk.
type FileBlob struct {
	path string
}

func NewFileBlob(root, container, name string) (*FileBlob, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("file blob root is required")
	}
	dir, err := relativePath("container", container)
	if err != nil {
		return nil, err
	}
	file, err := relativePath("blob name", name)
	if err != nil {
		return nil, err
	}
	return &FileBlob{path: filepath.Join(root, dir, file)}, nil
}

// relativePath rejects values that would resolve outside the root.
func relativePath(kind, v string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(v))
	if filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid %s %q", kind, v)
	}
	return clean, nil
}

func (b *FileBlob) Location() string {
	return "file://" + filepath.ToSlash(b.path)
}

func (b *FileBlob) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(b.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, storageErr("exists", b, err)
}

func (b *FileBlob) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, storageErr("read", b, err)
	}
	return data, nil
}

// Write replaces the file atomically through a temp file and rename.
func (b *FileBlob) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return storageErr("write", b, err)
	}
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storageErr("write", b, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return storageErr("write", b, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storageErr("write", b, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return storageErr("write", b, err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr("write", b, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return storageErr("write", b, err)
	}
	return nil
}
