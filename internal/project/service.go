// Package project 项目服务
package project

import (
	"PortfolioCMS/internal/content"
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/store"
)

// Service 项目服务
type Service struct {
	*content.Service[models.Project, *models.Project]
}

// NewService 创建项目服务
func NewService(coll store.Collection[models.Project]) *Service {
	return &Service{content.NewService[models.Project, *models.Project](coll, content.Messages{
		Kind:     "project",
		NotFound: "Project not found",
		Conflict: "A project with this slug already exists",
	})}
}

// Published 项目没有草稿状态，全部视为已发布
func (s *Service) Published() ([]models.Project, error) {
	return s.List()
}
