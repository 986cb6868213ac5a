// Package sitemap 根据已发布内容生成 sitemap.xml，并缓存到内容变化为止
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"
	"time"

	"PortfolioCMS/internal/models"
)

const (
	xmlns      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	dateLayout = "2006-01-02"
)

// BlogSource 提供已发布的博客
type BlogSource interface {
	Published() ([]models.Blog, error)
}

// ProjectSource 提供已发布的项目
type ProjectSource interface {
	Published() ([]models.Project, error)
}

// URL sitemap 中的一个条目
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Generator sitemap 生成器，结果按天缓存，内容变化时由 Invalidate 清除
type Generator struct {
	siteURL  string
	blogs    BlogSource
	projects ProjectSource
	now      func() time.Time

	mu     sync.RWMutex
	cached []byte
	day    string
	gen    uint64 // 每次 Invalidate 递增
}

// NewGenerator 创建生成器，siteURL 为站点根地址，如 https://example.com
func NewGenerator(siteURL string, blogs BlogSource, projects ProjectSource) *Generator {
	return &Generator{
		siteURL:  strings.TrimRight(siteURL, "/"),
		blogs:    blogs,
		projects: projects,
		now:      time.Now,
	}
}

// XML 返回缓存的 sitemap；缓存为空或跨天时重新生成
func (g *Generator) XML() ([]byte, error) {
	today := g.now().UTC().Format(dateLayout)

	g.mu.RLock()
	if g.cached != nil && g.day == today {
		out := g.cached
		g.mu.RUnlock()
		return out, nil
	}
	gen := g.gen
	g.mu.RUnlock()

	out, err := g.Build()
	if err != nil {
		return nil, err
	}

	// 生成期间发生过 Invalidate 时结果可能已过时，不写入缓存
	g.mu.Lock()
	if g.gen == gen {
		g.cached, g.day = out, today
	}
	g.mu.Unlock()
	return out, nil
}

// Invalidate 清除缓存，下次请求时重新生成
func (g *Generator) Invalidate() {
	g.mu.Lock()
	g.cached = nil
	g.gen++
	g.mu.Unlock()
}

// URLs 生成全部条目：静态页面、项目、博客
func (g *Generator) URLs() ([]URL, error) {
	today := g.now().UTC().Format(dateLayout)

	urls := []URL{
		{Loc: g.siteURL + "/", LastMod: today, ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: g.siteURL + "/projects", LastMod: today, ChangeFreq: "weekly", Priority: "0.8"},
		{Loc: g.siteURL + "/blogs", LastMod: today, ChangeFreq: "weekly", Priority: "0.8"},
	}

	projects, err := g.projects.Published()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		urls = append(urls, URL{
			Loc:        g.siteURL + "/projects/" + p.Slug,
			LastMod:    lastMod(p.PublishDate, today),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	blogs, err := g.blogs.Published()
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	for _, b := range blogs {
		urls = append(urls, URL{
			Loc:        g.siteURL + "/blogs/" + b.Slug,
			LastMod:    lastMod(b.PublishDate, today),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}
	return urls, nil
}

// Build 生成 sitemap XML，不使用缓存
func (g *Generator) Build() ([]byte, error) {
	urls, err := g.URLs()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{Xmlns: xmlns, URLs: urls}); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

var publishLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateLayout}

// lastMod 发布日期格式化为 YYYY-MM-DD，缺失或无法解析时使用当天
func lastMod(publishDate, today string) string {
	publishDate = strings.TrimSpace(publishDate)
	if publishDate == "" {
		return today
	}
	for _, layout := range publishLayouts {
		if t, err := time.Parse(layout, publishDate); err == nil {
			return t.UTC().Format(dateLayout)
		}
	}
	return today
}
