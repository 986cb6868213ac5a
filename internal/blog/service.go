// Package blog 博客文章服务
package blog

import (
	"PortfolioCMS/internal/content"
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/store"
)

// Service 博客服务
type Service struct {
	*content.Service[models.Blog, *models.Blog]
}

// NewService 创建博客服务
func NewService(coll store.Collection[models.Blog]) *Service {
	return &Service{content.NewService[models.Blog, *models.Blog](coll, content.Messages{
		Kind:     "blog",
		NotFound: "Blog post not found",
		Conflict: "A blog post with this slug already exists",
	})}
}

// Published 返回未标记为草稿的文章
func (s *Service) Published() ([]models.Blog, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]models.Blog, 0, len(all))
	for _, b := range all {
		if !b.Draft {
			out = append(out, b)
		}
	}
	return out, nil
}
