package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"PortfolioCMS/internal/api"
	"PortfolioCMS/internal/auth"
	"PortfolioCMS/internal/blog"
	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/log"
	"PortfolioCMS/internal/metrics"
	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/project"
	"PortfolioCMS/internal/server"
	"PortfolioCMS/internal/sitecontent"
	"PortfolioCMS/internal/sitemap"
	"PortfolioCMS/internal/store"
	"PortfolioCMS/internal/upload"
)

// app 组装完成的服务
type app struct {
	router  *api.Router
	server  *server.Server
	watcher *sitemap.Watcher
}

// collections 按存储方式创建的三个集合
type collections struct {
	blogs     store.Collection[models.Blog]
	projects  store.Collection[models.Project]
	sections  store.Collection[models.Section]
	watchDirs []string
}

func newCollections(cfg config.ContentConfig) collections {
	switch cfg.Strategy {
	case models.StrategyMarkdown:
		blogDir := filepath.Join(cfg.ContentDir, models.CollectionBlogs)
		projectDir := filepath.Join(cfg.ContentDir, models.CollectionProjects)
		return collections{
			blogs:    store.NewMarkdownCollection[models.Blog](blogDir, blog.Codec{}, store.WithWriteLock[models.Blog]()),
			projects: store.NewMarkdownCollection[models.Project](projectDir, project.Codec{}, store.WithWriteLock[models.Project]()),
			sections: store.NewMarkdownCollection[models.Section](
				filepath.Join(cfg.ContentDir, models.CollectionSiteContent), sitecontent.Codec{},
				store.WithSeed(sitecontent.Defaults()...), store.WithWriteLock[models.Section]()),
			watchDirs: []string{blogDir, projectDir},
		}
	default:
		return collections{
			blogs: store.NewJSONCollection[models.Blog](
				filepath.Join(cfg.DataDir, models.CollectionBlogs+".json"), store.ArrayLayout,
				store.WithWriteLock[models.Blog]()),
			projects: store.NewJSONCollection[models.Project](
				filepath.Join(cfg.DataDir, models.CollectionProjects+".json"), store.ArrayLayout,
				store.WithWriteLock[models.Project]()),
			sections: store.NewJSONCollection[models.Section](
				filepath.Join(cfg.DataDir, models.CollectionSiteContent+".json"), store.ObjectLayout,
				store.WithSeed(sitecontent.Defaults()...), store.WithWriteLock[models.Section]()),
			watchDirs: []string{cfg.DataDir},
		}
	}
}

func newUploadBackend(ctx context.Context, cfg config.Config) (upload.Backend, error) {
	if cfg.Upload.Backend == config.BackendS3 {
		s3 := cfg.Upload.S3
		return upload.NewS3Backend(ctx, upload.S3Config{
			Bucket:         s3.Bucket,
			Region:         s3.Region,
			AccessKeyID:    s3.AccessKeyID,
			SecretKey:      s3.SecretKey,
			Endpoint:       s3.Endpoint,
			BaseURL:        s3.BaseURL,
			ForcePathStyle: s3.ForcePathStyle,
		})
	}
	return upload.NewLocalBackend(cfg.Server.PublicDir), nil
}

// newApp 初始化凭据、集合与各服务；banner 为首次生成的管理员密码输出位置
func newApp(ctx context.Context, cfg *config.Config, banner io.Writer) (*app, error) {
	creds := auth.NewCredentialStore(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash, cfg.Auth.BcryptCost)
	if err := creds.Initialize(); err != nil {
		return nil, fmt.Errorf("初始化管理员凭据失败: %w", err)
	}
	if pw := creds.GeneratedPassword(); pw != "" {
		auth.PrintBanner(banner, creds.Username(), pw)
	}
	if cfg.Auth.SessionSecret == "" {
		log.Warnf(nil, "未配置 SESSION_SECRET，使用随机密钥，重启后所有会话失效")
	}
	codec, err := auth.NewCodec([]byte(cfg.Auth.SessionSecret), cfg.Auth.SessionTTL, cfg.Auth.CookieSecure)
	if err != nil {
		return nil, err
	}

	colls := newCollections(cfg.Content)
	blogs := blog.NewService(colls.blogs)
	projects := project.NewService(colls.projects)
	sections := sitecontent.NewService(colls.sections)

	// 首次启动时写入默认区块
	if _, err := sections.List(); err != nil {
		return nil, fmt.Errorf("初始化站点内容失败: %w", err)
	}

	backend, err := newUploadBackend(ctx, *cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化上传存储失败: %w", err)
	}

	srvOpts := server.Options{
		Addr:      cfg.Addr(),
		StaticDir: cfg.Server.StaticDir,
		PublicDir: cfg.Server.PublicDir,
	}
	if err := server.EnsureDirs(srvOpts); err != nil {
		return nil, fmt.Errorf("创建公开目录失败: %w", err)
	}

	generator := sitemap.NewGenerator(cfg.Server.SiteURL, blogs, projects)
	router := api.NewRouter(api.Deps{
		Auth:        auth.NewService(creds, codec),
		Blogs:       blogs,
		Projects:    projects,
		SiteContent: sections,
		Upload:      upload.NewService(backend, cfg.Upload.MaxSize, cfg.Upload.DefaultDestination),
		Sitemap:     generator,
		Metrics:     metrics.New(),
	})

	a := &app{
		router: router,
		server: server.NewServer(srvOpts, router),
	}

	// 手工编辑内容文件后同样刷新 sitemap；监听失败不影响服务
	watcher, err := sitemap.NewWatcher(colls.watchDirs, watchDebounce, generator.Invalidate)
	if err != nil {
		log.Warnf(log.Fields{"error": err}, "无法监听内容目录，sitemap 仅在通过 API 修改时刷新")
	} else {
		a.watcher = watcher
	}
	return a, nil
}

func (a *app) close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			log.Warnf(log.Fields{"error": err}, "关闭文件监听失败")
		}
	}
}
