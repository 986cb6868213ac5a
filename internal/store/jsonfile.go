package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/log"
)

// Layout JSON 集合文件的形态
type Layout int

const (
	// ArrayLayout 有序数组，如 blogs.json
	ArrayLayout Layout = iota
	// ObjectLayout 以主键为属性名的对象，如 site-content.json
	ObjectLayout
)

// keySetter 由 ObjectLayout 在解码时回填主键
type keySetter interface {
	SetKey(string)
}

// JSONCollection 单文件保存整个集合，每次修改整体重写
type JSONCollection[T Keyed] struct {
	path   string
	layout Layout
	seed   []T
	guard  writeGuard
}

var _ Collection[Keyed] = (*JSONCollection[Keyed])(nil)

// NewJSONCollection 创建 JSON 集合；文件在首次读取时按需创建
func NewJSONCollection[T Keyed](path string, layout Layout, opts ...Option[T]) *JSONCollection[T] {
	s := applyOptions(opts)
	return &JSONCollection[T]{
		path:   path,
		layout: layout,
		seed:   s.seed,
		guard:  writeGuard{enabled: s.writeLock},
	}
}

// Path 返回底层文件路径
func (c *JSONCollection[T]) Path() string { return c.path }

// load 供只读操作使用；文件缺失时在写锁内复查后再写入种子，避免覆盖并发写入的内容
func (c *JSONCollection[T]) load() ([]T, error) {
	items, found, err := c.read()
	if err != nil || found {
		return items, err
	}
	defer c.guard.lock()()
	return c.loadLocked()
}

// loadLocked 调用方已持有写锁；文件缺失时写入种子（或空集合）
func (c *JSONCollection[T]) loadLocked() ([]T, error) {
	items, found, err := c.read()
	if err != nil || found {
		return items, err
	}
	items = append(make([]T, 0, len(c.seed)), c.seed...)
	if err := c.save(items); err != nil {
		return nil, err
	}
	log.Infof(log.Fields{"path": c.path, "count": len(items)}, "初始化内容文件")
	return items, nil
}

// read 读取并解析文件，解析失败返回 ErrStorage 而不是重置
func (c *JSONCollection[T]) read() ([]T, bool, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("read", c.path, err)
	}

	var items []T
	if c.layout == ObjectLayout {
		items, err = decodeObject[T](data)
	} else {
		err = json.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, true, storageErr("parse", c.path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

func (c *JSONCollection[T]) save(items []T) error {
	var (
		data []byte
		err  error
	)
	if c.layout == ObjectLayout {
		data, err = encodeObject(items)
	} else {
		data, err = json.MarshalIndent(items, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", errs.ErrStorage, c.path, err)
	}
	if err := writeFileAtomic(c.path, data); err != nil {
		return storageErr("write", c.path, err)
	}
	return nil
}

// decodeObject 按文件中的属性顺序解码对象形态的集合
func decodeObject[T Keyed](data []byte) ([]T, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return []T{}, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	items := []T{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var item T
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		if ks, ok := any(&item).(keySetter); ok {
			ks.SetKey(key)
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return items, nil
}

func encodeObject[T Keyed](items []T) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(item.Key())
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func indexOf[T Keyed](items []T, key string) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (c *JSONCollection[T]) List() ([]T, error) {
	return c.load()
}

func (c *JSONCollection[T]) Get(key string) (T, error) {
	var zero T
	items, err := c.load()
	if err != nil {
		return zero, err
	}
	i := indexOf(items, key)
	if i < 0 {
		return zero, fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	return items[i], nil
}

func (c *JSONCollection[T]) Insert(item T) error {
	if err := checkKey(item.Key()); err != nil {
		return err
	}
	defer c.guard.lock()()

	items, err := c.loadLocked()
	if err != nil {
		return err
	}
	if indexOf(items, item.Key()) >= 0 {
		return fmt.Errorf("%w: %s", errs.ErrConflict, item.Key())
	}
	return c.save(append(items, item))
}

func (c *JSONCollection[T]) Replace(oldKey string, item T) error {
	newKey := item.Key()
	if err := checkKey(newKey); err != nil {
		return err
	}
	defer c.guard.lock()()

	items, err := c.loadLocked()
	if err != nil {
		return err
	}
	i := indexOf(items, oldKey)
	if i < 0 {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, oldKey)
	}
	if newKey != oldKey && indexOf(items, newKey) >= 0 {
		return fmt.Errorf("%w: %s", errs.ErrConflict, newKey)
	}
	items[i] = item
	return c.save(items)
}

func (c *JSONCollection[T]) Upsert(item T) error {
	if err := checkKey(item.Key()); err != nil {
		return err
	}
	defer c.guard.lock()()

	items, err := c.loadLocked()
	if err != nil {
		return err
	}
	if i := indexOf(items, item.Key()); i >= 0 {
		items[i] = item
	} else {
		items = append(items, item)
	}
	return c.save(items)
}

func (c *JSONCollection[T]) Remove(key string) error {
	defer c.guard.lock()()

	items, err := c.loadLocked()
	if err != nil {
		return err
	}
	i := indexOf(items, key)
	if i < 0 {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}
	return c.save(append(items[:i], items[i+1:]...))
}
