package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// entityService 博客与项目服务共有的操作
type entityService[T any] interface {
	List() ([]T, error)
	Get(slug string) (T, error)
	Create(item T) (T, error)
	Update(slug string, apply func(*T) error) (T, error)
	Delete(slug string) error
}

// entityText 响应字段名与提示文本
type entityText struct {
	listKey string // 列表响应中的字段，如 blogs
	itemKey string // 单个实体的字段，如 blog
	label   string // 错误提示中的名称，如 blog post
	deleted string // 删除成功提示
}

// EntityHandler 博客 / 项目的增删改查处理器
type EntityHandler[T any] struct {
	service  entityService[T]
	text     entityText
	onChange func()
}

func newEntityHandler[T any](service entityService[T], text entityText, onChange func()) *EntityHandler[T] {
	if onChange == nil {
		onChange = func() {}
	}
	return &EntityHandler[T]{service: service, text: text, onChange: onChange}
}

// HandleList GET /api/{kind}
func (h *EntityHandler[T]) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List()
	if err != nil {
		writeError(w, r, err, "Failed to get "+h.text.listKey)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, h.text.listKey: items})
}

// HandleGet GET /api/{kind}/{slug}
func (h *EntityHandler[T]) HandleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err, "Failed to get "+h.text.label)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, h.text.itemKey: item})
}

// HandleCreate POST /api/{kind}
func (h *EntityHandler[T]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readJSONObject(w, r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	var item T
	if err := decodeInto(body, &item); err != nil {
		writeError(w, r, err, "")
		return
	}

	created, err := h.service.Create(item)
	if err != nil {
		writeError(w, r, err, "Failed to create "+h.text.label)
		return
	}
	h.onChange()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, h.text.itemKey: created})
}

// HandleUpdate PUT /api/{kind}/{slug}，请求体中的字段覆盖现有记录，未提供的字段保持不变
func (h *EntityHandler[T]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := readJSONObject(w, r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	updated, err := h.service.Update(mux.Vars(r)["slug"], func(item *T) error {
		return decodeInto(body, item)
	})
	if err != nil {
		writeError(w, r, err, "Failed to update "+h.text.label)
		return
	}
	h.onChange()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, h.text.itemKey: updated})
}

// HandleDelete DELETE /api/{kind}/{slug}
func (h *EntityHandler[T]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(mux.Vars(r)["slug"]); err != nil {
		writeError(w, r, err, "Failed to delete "+h.text.label)
		return
	}
	h.onChange()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": h.text.deleted})
}

