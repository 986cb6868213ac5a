// Package content 提供博客与项目共用的增删改查流程：校验、服务端时间戳、改名与冲突处理
package content

import (
	"errors"
	"fmt"
	"time"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/log"
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/store"
)

// Entity 可由 Service 管理的实体（以指针实现）
type Entity[T any] interface {
	*T
	store.Keyed
	SetKey(string)
	Normalize()
	Validate() error
	Stamp(created, updated time.Time)
	Created() time.Time
}

// Messages 面向前端的提示文本
type Messages struct {
	Kind     string // 日志中的实体名称，如 blog
	NotFound string
	Conflict string
}

// Service 通用内容服务
type Service[T store.Keyed, PT Entity[T]] struct {
	coll store.Collection[T]
	msg  Messages
	now  func() time.Time
}

// NewService 创建内容服务
func NewService[T store.Keyed, PT Entity[T]](coll store.Collection[T], msg Messages) *Service[T, PT] {
	return &Service[T, PT]{coll: coll, msg: msg, now: time.Now}
}

// SetClock 替换时间源（测试用）
func (s *Service[T, PT]) SetClock(now func() time.Time) { s.now = now }

// List 返回全部实体
func (s *Service[T, PT]) List() ([]T, error) {
	items, err := s.coll.List()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.msg.Kind, err)
	}
	return items, nil
}

// Get 按 slug 查找
func (s *Service[T, PT]) Get(slug string) (T, error) {
	item, err := s.coll.Get(slug)
	if err != nil {
		var zero T
		return zero, s.translate(err)
	}
	return item, nil
}

// Create 新建实体，createdAt / updatedAt 由服务端写入
func (s *Service[T, PT]) Create(item T) (T, error) {
	var zero T
	p := PT(&item)
	if err := p.Validate(); err != nil {
		return zero, err
	}
	now := models.Timestamp(s.now())
	p.Stamp(now, now)
	p.Normalize()

	if err := s.coll.Insert(item); err != nil {
		return zero, s.translate(err)
	}
	log.Infof(log.Fields{"slug": item.Key()}, "%s 已创建", s.msg.Kind)
	return item, nil
}

// Update 在现有记录的副本上应用修改并保存；slug 留空视为不改名，createdAt 不可修改
func (s *Service[T, PT]) Update(slug string, apply func(*T) error) (T, error) {
	var zero T
	existing, err := s.coll.Get(slug)
	if err != nil {
		return zero, s.translate(err)
	}

	updated := existing
	p := PT(&updated)
	if err := apply(&updated); err != nil {
		return zero, err
	}
	if p.Key() == "" {
		p.SetKey(slug)
	}
	if err := p.Validate(); err != nil {
		return zero, err
	}
	p.Stamp(PT(&existing).Created(), models.Timestamp(s.now()))
	p.Normalize()

	if err := s.coll.Replace(slug, updated); err != nil {
		return zero, s.translate(err)
	}
	if p.Key() != slug {
		log.Infof(log.Fields{"old": slug, "new": p.Key()}, "%s 已改名", s.msg.Kind)
	}
	return updated, nil
}

// Delete 删除实体
func (s *Service[T, PT]) Delete(slug string) error {
	if err := s.coll.Remove(slug); err != nil {
		return s.translate(err)
	}
	log.Infof(log.Fields{"slug": slug}, "%s 已删除", s.msg.Kind)
	return nil
}

// translate 将仓库错误转换为带前端提示的错误，其余错误原样返回
func (s *Service[T, PT]) translate(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return fmt.Errorf("%w: %w", errs.New(errs.ErrNotFound, s.msg.NotFound), err)
	case errors.Is(err, errs.ErrConflict):
		return fmt.Errorf("%w: %w", errs.New(errs.ErrConflict, s.msg.Conflict), err)
	default:
		return err
	}
}
