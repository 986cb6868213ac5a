// Package upload 图片上传：类型 / 大小 / 内容校验，文件名清洗，本地或 S3 存储
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/log"
)

// DefaultMaxSize 默认上传大小上限 5MB
const DefaultMaxSize int64 = 5 << 20

// DefaultDestination 未指定目录时的默认目标目录
const DefaultDestination = "uploads"

const svgType = "image/svg+xml"

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	svgType:      true,
}

var segmentPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

var (
	ErrNoFile          = errs.New(errs.ErrValidation, "No file uploaded")
	ErrInvalidType     = errs.New(errs.ErrValidation, "Invalid file type. Only JPEG, PNG, GIF, WEBP, and SVG files are allowed.")
	ErrContentMismatch = errs.New(errs.ErrValidation, "File content does not match its declared type")
	ErrBadDestination  = errs.New(errs.ErrValidation, "Invalid destination folder")
)

// Result 上传结果
type Result struct {
	Success  bool   `json:"success"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Message  string `json:"message"`
	Size     int64  `json:"-"`
}

// Service 上传服务
type Service struct {
	backend     Backend
	maxSize     int64
	defaultDest string
	now         func() time.Time
}

// NewService 创建上传服务，maxSize <= 0 时使用 DefaultMaxSize
func NewService(backend Backend, maxSize int64, defaultDest string) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if defaultDest == "" {
		defaultDest = DefaultDestination
	}
	return &Service{backend: backend, maxSize: maxSize, defaultDest: defaultDest, now: time.Now}
}

// MaxSize 上传大小上限
func (s *Service) MaxSize() int64 { return s.maxSize }

// Upload 校验全部通过后才写入后端
func (s *Service) Upload(ctx context.Context, fh *multipart.FileHeader, destination string) (Result, error) {
	if fh == nil {
		return Result{}, ErrNoFile
	}

	declared, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || !allowedTypes[declared] {
		return Result{}, ErrInvalidType
	}

	if fh.Size > s.maxSize {
		return Result{}, s.ErrTooLarge()
	}

	dest, err := s.cleanDestination(destination)
	if err != nil {
		return Result{}, err
	}

	data, err := s.read(fh)
	if err != nil {
		return Result{}, err
	}
	if !contentMatches(declared, data) {
		log.Warnf(log.Fields{"file": fh.Filename, "declared": declared, "sniffed": http.DetectContentType(data)}, "上传文件内容与声明类型不符")
		return Result{}, ErrContentMismatch
	}

	name := SanitizeName(fh.Filename, s.now())
	url, err := s.backend.Save(ctx, dest+"/"+name, declared, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: save upload: %w", errs.ErrStorage, err)
	}

	log.Infof(log.Fields{"file": name, "size": len(data), "type": declared}, "文件上传成功")
	return Result{
		Success:  true,
		FileURL:  url,
		FileName: name,
		Message:  "File uploaded successfully",
		Size:     int64(len(data)),
	}, nil
}

// ErrTooLarge 超过大小上限时的错误
func (s *Service) ErrTooLarge() error {
	return errs.New(errs.ErrValidation, fmt.Sprintf("File too large. Maximum file size is %dMB.", s.maxSize>>20))
}

// read 读取整个文件，实际长度超过上限同样拒绝
func (s *Service) read(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %w", errs.ErrStorage, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", errs.ErrStorage, err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, s.ErrTooLarge()
	}
	return data, nil
}

// cleanDestination 目标目录由 [a-z0-9_-] 段组成，禁止 ".." 等跳转
func (s *Service) cleanDestination(dest string) (string, error) {
	dest = strings.Trim(strings.TrimSpace(dest), "/")
	if dest == "" {
		return s.defaultDest, nil
	}
	for _, seg := range strings.Split(dest, "/") {
		if !segmentPattern.MatchString(seg) {
			return "", ErrBadDestination
		}
	}
	return dest, nil
}

// contentMatches 嗅探文件头，确认与声明的类型一致
func contentMatches(declared string, data []byte) bool {
	if declared == svgType {
		head := data
		if len(head) > 4096 {
			head = head[:4096]
		}
		return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return sniffed == declared
}
