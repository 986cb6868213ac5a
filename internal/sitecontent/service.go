// Package sitecontent 站点内容区块（hero / about / skills / contact）服务
package sitecontent

import (
	"errors"
	"fmt"
	"time"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/log"
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/store"
)

// ErrSectionNotFound 区块不存在
var ErrSectionNotFound = errs.New(errs.ErrNotFound, "Content section not found")

// Service 站点内容服务；区块只能修改，不能新增或删除
type Service struct {
	coll store.Collection[models.Section]
	now  func() time.Time
}

// NewService 创建站点内容服务，coll 应以 Defaults() 作为种子
func NewService(coll store.Collection[models.Section]) *Service {
	return &Service{coll: coll, now: time.Now}
}

// List 按存储顺序返回全部区块
func (s *Service) List() ([]models.Section, error) {
	sections, err := s.coll.List()
	if err != nil {
		return nil, fmt.Errorf("list site content: %w", err)
	}
	return sections, nil
}

// Get 返回单个区块
func (s *Service) Get(section string) (models.Section, error) {
	sec, err := s.coll.Get(section)
	if err != nil {
		return models.Section{}, translate(err)
	}
	return sec, nil
}

// Update 在现有区块上应用修改，区块名不可变
func (s *Service) Update(section string, apply func(*models.Section) error) (models.Section, error) {
	if section == "" {
		return models.Section{}, errs.New(errs.ErrValidation, "Section parameter is required")
	}
	existing, err := s.coll.Get(section)
	if err != nil {
		return models.Section{}, translate(err)
	}

	updated := existing
	if err := apply(&updated); err != nil {
		return models.Section{}, err
	}
	updated.Section = section
	updated.UpdatedAt = models.Timestamp(s.now())

	if err := s.coll.Replace(section, updated); err != nil {
		return models.Section{}, translate(err)
	}
	log.Infof(log.Fields{"section": section}, "站点内容已更新")
	return updated, nil
}

func translate(err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrSectionNotFound, err)
	}
	return err
}
