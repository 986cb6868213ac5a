// Package server 组合 API 路由与静态资源，负责监听与优雅关闭
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"PortfolioCMS/internal/log"
)

// Options 服务器配置
type Options struct {
	Addr      string
	StaticDir string // 前端构建产物，未命中的路径回退到 index.html
	PublicDir string // 上传文件等公开资源
}

// Server HTTP 服务器
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	opts       Options
}

// NewServer 创建服务器，api 处理 /api/*、/sitemap.xml 与 /metrics
func NewServer(opts Options, api http.Handler) *Server {
	s := &Server{
		router: mux.NewRouter(),
		opts:   opts,
	}

	// API 路由
	s.router.PathPrefix("/api/").Handler(api)
	s.router.Handle("/sitemap.xml", api)
	s.router.Handle("/metrics", api)

	// 静态文件服务
	s.router.PathPrefix("/").HandlerFunc(s.serveStatic)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler 返回根处理器
func (s *Server) Handler() http.Handler { return s.router }

// serveStatic 先查找 staticDir，再查找 publicDir，都不存在时返回 index.html 以支持 SPA
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	for _, dir := range []string{s.opts.StaticDir, s.opts.PublicDir} {
		if dir == "" {
			continue
		}
		if isFile(dir, name) {
			http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
			return
		}
	}

	// 带扩展名的资源缺失时直接 404，避免把 index.html 当作图片返回
	if path.Ext(name) != "" && !strings.HasSuffix(name, ".html") {
		http.NotFound(w, r)
		return
	}

	index := filepath.Join(s.opts.StaticDir, "index.html")
	if !isFile(s.opts.StaticDir, "/index.html") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}

// isFile 判断 dir 下的 name 是否为普通文件；http.Dir 负责拒绝路径穿越
func isFile(dir, name string) bool {
	f, err := http.Dir(dir).Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	fi, err := f.Stat()
	return err == nil && fi.Mode().IsRegular()
}

// Start 开始监听，Shutdown 后返回 nil
func (s *Server) Start() error {
	log.Infof(log.Fields{"addr": s.opts.Addr}, "HTTP 服务启动在 %s", s.opts.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭，等待进行中的请求完成或 ctx 到期
func (s *Server) Shutdown(ctx context.Context) error {
	log.Infof(nil, "正在关闭服务器...")
	return s.httpServer.Shutdown(ctx)
}

// EnsureDirs 创建公开目录，便于首次上传前就能提供静态访问
func EnsureDirs(opts Options) error {
	if opts.PublicDir == "" {
		return nil
	}
	return os.MkdirAll(opts.PublicDir, 0755)
}
