package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/top3pick/phonerec/core"
)

// FileStore 把每个 key 存成目录下的一个文件，单机部署的默认后端。
// 写入先落临时文件再 rename，读者不会看到写了一半的快照。不支持 TTL。
type FileStore struct {
	dir string
}

// NewFileStore 创建目录（如不存在）。
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Name() string { return "file" }

// Path 返回 key 对应的文件路径。
func (f *FileStore) Path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: invalid key "+key)
	}
	return filepath.Join(f.dir, key), nil
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrStoreNotFound
	}
	return data, err
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	if len(ttl) > 0 && ttl[0] > 0 {
		return core.ErrStoreNotSupported
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.Path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	path, err := f.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

var _ core.Store = (*FileStore)(nil)
