// Package api 注册 HTTP 路由并实现各处理器
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"PortfolioCMS/internal/auth"
	"PortfolioCMS/internal/blog"
	"PortfolioCMS/internal/metrics"
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/project"
	"PortfolioCMS/internal/sitecontent"
	"PortfolioCMS/internal/sitemap"
	"PortfolioCMS/internal/upload"
)

// Deps 路由器依赖的服务
type Deps struct {
	Auth        *auth.Service
	Blogs       *blog.Service
	Projects    *project.Service
	SiteContent *sitecontent.Service
	Upload      *upload.Service
	Sitemap     *sitemap.Generator
	Metrics     *metrics.Metrics
}

// Router API 路由器
type Router struct {
	router             *mux.Router
	handler            http.Handler
	authHandler        *AuthHandler
	blogHandler        *EntityHandler[models.Blog]
	projectHandler     *EntityHandler[models.Project]
	siteContentHandler *SiteContentHandler
	uploadHandler      *UploadHandler
	sitemapHandler     *SitemapHandler
	metrics            *metrics.Metrics
}

// NewRouter 创建路由器实例
func NewRouter(deps Deps) *Router {
	// 创建路由器（忽略末尾斜杠差异）
	router := mux.NewRouter()
	router.StrictSlash(true)

	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	// 博客 / 项目变更后 sitemap 需要重新生成
	onChange := func() {}
	if deps.Sitemap != nil {
		onChange = deps.Sitemap.Invalidate
	}

	r := &Router{
		router:      router,
		authHandler: NewAuthHandler(deps.Auth, m),
		blogHandler: newEntityHandler[models.Blog](deps.Blogs, entityText{
			listKey: "blogs",
			itemKey: "blog",
			label:   "blog post",
			deleted: "Blog post deleted successfully",
		}, onChange),
		projectHandler: newEntityHandler[models.Project](deps.Projects, entityText{
			listKey: "projects",
			itemKey: "project",
			label:   "project",
			deleted: "Project deleted successfully",
		}, onChange),
		siteContentHandler: NewSiteContentHandler(deps.SiteContent),
		uploadHandler:      NewUploadHandler(deps.Upload, m),
		sitemapHandler:     NewSitemapHandler(deps.Sitemap),
		metrics:            m,
	}

	// 注册路由
	r.registerRoutes()

	// 路由匹配后记录指标（依赖 mux.CurrentRoute）
	r.router.Use(m.Middleware)

	// 未匹配的路由与 405 也要经过 CORS、日志与 panic 恢复
	r.handler = recoverMiddleware(requestIDMiddleware(accessLogMiddleware(corsMiddleware(r.router))))

	return r
}

// ServeHTTP 实现 http.Handler 接口
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// registerRoutes 注册所有路由
func (r *Router) registerRoutes() {
	gate := r.authHandler.RequireAuth

	// 认证相关路由
	r.router.HandleFunc("/api/auth/login", r.authHandler.HandleLogin).Methods("POST")
	r.router.HandleFunc("/api/auth/logout", r.authHandler.HandleLogout).Methods("POST")
	r.router.HandleFunc("/api/auth/session", r.authHandler.HandleSession).Methods("GET")

	// 博客相关路由
	r.router.HandleFunc("/api/blogs", gate(r.blogHandler.HandleList)).Methods("GET")
	r.router.HandleFunc("/api/blogs", gate(r.blogHandler.HandleCreate)).Methods("POST")
	r.router.HandleFunc("/api/blogs/{slug}", gate(r.blogHandler.HandleGet)).Methods("GET")
	r.router.HandleFunc("/api/blogs/{slug}", gate(r.blogHandler.HandleUpdate)).Methods("PUT")
	r.router.HandleFunc("/api/blogs/{slug}", gate(r.blogHandler.HandleDelete)).Methods("DELETE")

	// 项目相关路由
	r.router.HandleFunc("/api/projects", gate(r.projectHandler.HandleList)).Methods("GET")
	r.router.HandleFunc("/api/projects", gate(r.projectHandler.HandleCreate)).Methods("POST")
	r.router.HandleFunc("/api/projects/{slug}", gate(r.projectHandler.HandleGet)).Methods("GET")
	r.router.HandleFunc("/api/projects/{slug}", gate(r.projectHandler.HandleUpdate)).Methods("PUT")
	r.router.HandleFunc("/api/projects/{slug}", gate(r.projectHandler.HandleDelete)).Methods("DELETE")

	// 站点内容
	r.router.HandleFunc("/api/site-content", gate(r.siteContentHandler.HandleList)).Methods("GET")
	r.router.HandleFunc("/api/site-content/{section}", gate(r.siteContentHandler.HandleGet)).Methods("GET")
	r.router.HandleFunc("/api/site-content/{section}", gate(r.siteContentHandler.HandleUpdate)).Methods("PUT")

	// 上传
	r.router.HandleFunc("/api/upload", gate(r.uploadHandler.HandleUpload)).Methods("POST")

	// 健康检查
	r.router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// 公开页面
	r.router.HandleFunc("/sitemap.xml", r.sitemapHandler.HandleSitemap).Methods("GET")
	r.router.Handle("/metrics", r.metrics.Handler()).Methods("GET")

	// 未知 API 路由返回 JSON 而不是纯文本
	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Success: false, Message: "Not found"})
	})
}
