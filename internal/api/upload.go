package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"PortfolioCMS/internal/metrics"
	"PortfolioCMS/internal/upload"
)

// multipartOverhead 表单字段与边界的额外空间
const multipartOverhead = 1 << 20

// UploadHandler 图片上传处理器
type UploadHandler struct {
	service *upload.Service
	metrics *metrics.Metrics
}

// NewUploadHandler 创建上传处理器实例
func NewUploadHandler(service *upload.Service, m *metrics.Metrics) *UploadHandler {
	return &UploadHandler{service: service, metrics: m}
}

// HandleUpload POST /api/upload，表单字段 file 与可选的 destination
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxSize()+multipartOverhead)
	if err := r.ParseMultipartForm(h.service.MaxSize() + multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, h.service.ErrTooLarge(), "")
			return
		}
		writeError(w, r, upload.ErrNoFile, "")
		return
	}

	var fh *multipart.FileHeader
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		fh = files[0]
	}

	res, err := h.service.Upload(r.Context(), fh, r.FormValue("destination"))
	if err != nil {
		writeError(w, r, err, "File upload failed")
		return
	}
	h.metrics.Uploaded(res.Size)
	writeJSON(w, http.StatusOK, res)
}
