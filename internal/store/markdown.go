package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/log"
)

const markdownExt = ".md"

// MarkdownCodec 实体与 markdown 文本之间的转换，主键由文件名提供
type MarkdownCodec[T Keyed] interface {
	Render(item T) (string, error)
	Parse(key, text string) (T, error)
}

// MarkdownCollection 每个实体一个 <key>.md 文件
type MarkdownCollection[T Keyed] struct {
	dir   string
	codec MarkdownCodec[T]
	seed  []T
	guard writeGuard
}

var _ Collection[Keyed] = (*MarkdownCollection[Keyed])(nil)

// NewMarkdownCollection 创建 markdown 集合；目录在首次访问时按需创建
func NewMarkdownCollection[T Keyed](dir string, codec MarkdownCodec[T], opts ...Option[T]) *MarkdownCollection[T] {
	s := applyOptions(opts)
	return &MarkdownCollection[T]{
		dir:   dir,
		codec: codec,
		seed:  s.seed,
		guard: writeGuard{enabled: s.writeLock},
	}
}

// Dir 返回集合目录
func (c *MarkdownCollection[T]) Dir() string { return c.dir }

func (c *MarkdownCollection[T]) path(key string) string {
	return filepath.Join(c.dir, key+markdownExt)
}

// ensureDir 目录不存在时创建并写入种子
func (c *MarkdownCollection[T]) ensureDir() error {
	if fi, err := os.Stat(c.dir); err == nil {
		if !fi.IsDir() {
			return storageErr("stat", c.dir, errors.New("not a directory"))
		}
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return storageErr("stat", c.dir, err)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return storageErr("mkdir", c.dir, err)
	}
	for _, item := range c.seed {
		if err := c.write(item); err != nil {
			return err
		}
	}
	if len(c.seed) > 0 {
		log.Infof(log.Fields{"dir": c.dir, "count": len(c.seed)}, "初始化内容目录")
	}
	return nil
}

func (c *MarkdownCollection[T]) write(item T) error {
	text, err := c.codec.Render(item)
	if err != nil {
		return err
	}
	path := c.path(item.Key())
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return storageErr("write", path, err)
	}
	return nil
}

func (c *MarkdownCollection[T]) exists(key string) (bool, error) {
	_, err := os.Stat(c.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, storageErr("stat", c.path(key), err)
	}
}

// List 按文件名顺序返回全部实体；无法解析的文件被跳过并记录日志
func (c *MarkdownCollection[T]) List() ([]T, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	names, err := doublestar.Glob(os.DirFS(c.dir), "*"+markdownExt, doublestar.WithFilesOnly())
	if err != nil {
		return nil, storageErr("list", c.dir, err)
	}
	sort.Strings(names)

	items := make([]T, 0, len(names))
	for _, name := range names {
		key := strings.TrimSuffix(name, markdownExt)
		if !ValidKey(key) {
			log.Debugf(log.Fields{"file": name}, "忽略文件名不是合法 slug 的文件")
			continue
		}
		item, err := c.Get(key)
		if err != nil {
			if errors.Is(err, errs.ErrCorruptEntity) || errors.Is(err, errs.ErrNotFound) {
				log.Warnf(log.Fields{"file": name, "error": err}, "跳过无法解析的内容文件")
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Get 读取单个实体；文件无法解析时返回 ErrCorruptEntity
func (c *MarkdownCollection[T]) Get(key string) (T, error) {
	var zero T
	if !ValidKey(key) {
		return zero, fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	if err := c.ensureDir(); err != nil {
		return zero, err
	}
	path := c.path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	if err != nil {
		return zero, storageErr("read", path, err)
	}
	item, err := c.codec.Parse(key, string(data))
	if err != nil {
		if errors.Is(err, errs.ErrCorruptEntity) {
			return zero, fmt.Errorf("%s: %w", path, err)
		}
		return zero, fmt.Errorf("%w: %s: %w", errs.ErrCorruptEntity, path, err)
	}
	return item, nil
}

func (c *MarkdownCollection[T]) Insert(item T) error {
	if err := checkKey(item.Key()); err != nil {
		return err
	}
	defer c.guard.lock()()

	if err := c.ensureDir(); err != nil {
		return err
	}
	found, err := c.exists(item.Key())
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: %s", errs.ErrConflict, item.Key())
	}
	return c.write(item)
}

// Replace 改名时先写新文件再删除旧文件；旧文件删除失败只记录日志，操作仍视为成功
func (c *MarkdownCollection[T]) Replace(oldKey string, item T) error {
	newKey := item.Key()
	if err := checkKey(newKey); err != nil {
		return err
	}
	defer c.guard.lock()()

	if err := c.ensureDir(); err != nil {
		return err
	}
	if !ValidKey(oldKey) {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, oldKey)
	}
	found, err := c.exists(oldKey)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, oldKey)
	}
	if newKey != oldKey {
		taken, err := c.exists(newKey)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", errs.ErrConflict, newKey)
		}
	}

	if err := c.write(item); err != nil {
		return err
	}
	if newKey != oldKey {
		if err := os.Remove(c.path(oldKey)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warnf(log.Fields{"old": oldKey, "new": newKey, "error": err}, "改名后旧文件删除失败，已成为孤立文件")
		}
	}
	return nil
}

func (c *MarkdownCollection[T]) Upsert(item T) error {
	if err := checkKey(item.Key()); err != nil {
		return err
	}
	defer c.guard.lock()()

	if err := c.ensureDir(); err != nil {
		return err
	}
	return c.write(item)
}

func (c *MarkdownCollection[T]) Remove(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	defer c.guard.lock()()

	path := c.path(key)
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	if err != nil {
		return storageErr("remove", path, err)
	}
	return nil
}
