// Package store 实现平面文件内容仓库：整集合 JSON 文件与单实体 markdown 文件两种形态
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/models"
)

// Keyed 以 slug / section 作为主键的实体
type Keyed interface {
	Key() string
}

// Collection 内容集合的统一契约
type Collection[T Keyed] interface {
	// List 返回集合中全部实体
	List() ([]T, error)
	// Get 按主键查找，不存在返回 errs.ErrNotFound
	Get(key string) (T, error)
	// Insert 新增实体，主键已存在返回 errs.ErrConflict
	Insert(item T) error
	// Replace 替换 oldKey 对应的实体，允许主键改名；新主键被其他实体占用返回 errs.ErrConflict
	Replace(oldKey string, item T) error
	// Upsert 存在则原位替换，否则追加
	Upsert(item T) error
	// Remove 删除实体，不存在返回 errs.ErrNotFound
	Remove(key string) error
}

// ValidKey 判断主键是否为合法 slug，只有合法主键才会被用作文件名
func ValidKey(key string) bool {
	return models.ValidSlug(key)
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: invalid key %q", errs.ErrValidation, key)
	}
	return nil
}

// Option 集合构造选项
type Option[T Keyed] func(*settings[T])

type settings[T Keyed] struct {
	seed      []T
	writeLock bool
}

// WithSeed 在底层文件 / 目录不存在时写入的初始内容
func WithSeed[T Keyed](items ...T) Option[T] {
	return func(s *settings[T]) {
		s.seed = append([]T(nil), items...)
	}
}

// WithWriteLock 串行化同一进程内对该集合的写操作；跨进程写入仍可能相互覆盖
func WithWriteLock[T Keyed]() Option[T] {
	return func(s *settings[T]) {
		s.writeLock = true
	}
}

func applyOptions[T Keyed](opts []Option[T]) settings[T] {
	var s settings[T]
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// writeGuard 可选的写锁
type writeGuard struct {
	enabled bool
	mu      sync.Mutex
}

func (g *writeGuard) lock() func() {
	if !g.enabled {
		return func() {}
	}
	g.mu.Lock()
	return g.mu.Unlock
}

// writeFileAtomic 先写临时文件再 rename，避免崩溃时留下半截文件
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func storageErr(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", errs.ErrStorage, op, path, err)
}
