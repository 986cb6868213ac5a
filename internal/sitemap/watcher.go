package sitemap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"PortfolioCMS/internal/log"
)

// DefaultDebounce 连续变化合并为一次回调的等待时间
const DefaultDebounce = 300 * time.Millisecond

// Watcher 监听内容目录，文件变化（包括绕过 API 的手工编辑）时触发回调
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func()
	debounce time.Duration

	mu      sync.Mutex
	pending bool
	done    chan struct{}
}

// NewWatcher 创建监听器，dirs 不存在时会被创建
func NewWatcher(dirs []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fsw.Close()
			return nil, err
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
		log.Debugf(log.Fields{"dir": dir}, "监听内容目录")
	}
	return &Watcher{fsw: fsw, onChange: onChange, debounce: debounce, done: make(chan struct{})}, nil
}

// Start 在后台处理事件，直到 ctx 结束或 Close 被调用
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Close 停止监听
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Done 事件循环退出后关闭
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if relevant(event) {
				w.mu.Lock()
				w.pending = true
				w.mu.Unlock()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Errorf(log.Fields{"error": err}, "内容目录监听出错")

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	fire := w.pending
	w.pending = false
	w.mu.Unlock()
	if fire {
		log.Debugf(nil, "内容目录发生变化，清除 sitemap 缓存")
		w.onChange()
	}
}

// relevant 只关心 .json / .md 的增删改，忽略原子写入产生的隐藏临时文件
func relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".json", ".md":
	default:
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
