package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Backend 上传文件的存储后端
type Backend interface {
	// Save 写入对象并返回其公开访问地址；key 形如 "uploads/photo-1700000000000.png"
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// LocalBackend 写入本地公开目录，由静态文件服务直接提供访问
type LocalBackend struct {
	root string
}

var _ Backend = (*LocalBackend)(nil)

// NewLocalBackend 创建本地存储后端
func NewLocalBackend(root string) *LocalBackend {
	return &LocalBackend{root: root}
}

func (b *LocalBackend) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = strings.TrimPrefix(key, "/")
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}

	dst := filepath.Join(b.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// O_EXCL 保证不会覆盖已存在的同名文件
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return "/" + key, nil
}
