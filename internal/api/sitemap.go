package api

import (
	"net/http"

	"PortfolioCMS/internal/sitemap"
)

// SitemapHandler sitemap.xml 处理器
type SitemapHandler struct {
	generator *sitemap.Generator
}

// NewSitemapHandler 创建 sitemap 处理器实例
func NewSitemapHandler(generator *sitemap.Generator) *SitemapHandler {
	return &SitemapHandler{generator: generator}
}

// HandleSitemap GET /sitemap.xml
func (h *SitemapHandler) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	out, err := h.generator.XML()
	if err != nil {
		writeError(w, r, err, "Failed to generate sitemap")
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(out)
}
