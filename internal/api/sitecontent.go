package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"PortfolioCMS/internal/models"
	"PortfolioCMS/internal/sitecontent"
)

// SiteContentHandler 站点内容区块处理器
type SiteContentHandler struct {
	service *sitecontent.Service
}

// NewSiteContentHandler 创建站点内容处理器实例
func NewSiteContentHandler(service *sitecontent.Service) *SiteContentHandler {
	return &SiteContentHandler{service: service}
}

// sectionMap 以区块名为键输出，保持存储顺序
type sectionMap []models.Section

func (m sectionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(sec.Section)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(sec)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// HandleList GET /api/site-content
func (h *SiteContentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.List()
	if err != nil {
		writeError(w, r, err, "Failed to get site content")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": sectionMap(sections)})
}

// HandleGet GET /api/site-content/{section}
func (h *SiteContentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sec, err := h.service.Get(mux.Vars(r)["section"])
	if err != nil {
		writeError(w, r, err, "Failed to get site content")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": sec})
}

// HandleUpdate PUT /api/site-content/{section}
func (h *SiteContentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := readJSONObject(w, r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	sec, err := h.service.Update(mux.Vars(r)["section"], func(s *models.Section) error {
		return decodeInto(body, s)
	})
	if err != nil {
		writeError(w, r, err, "Failed to update site content")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "content": sec})
}
