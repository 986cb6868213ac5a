package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client S3Backend 使用到的 S3 操作，测试中可替换
type S3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
}

// S3Config S3 / S3 兼容存储配置
type S3Config struct {
	Bucket         string
	Region         string
	AccessKeyID    string
	SecretKey      string
	Endpoint       string // MinIO、R2 等兼容服务
	BaseURL        string // CDN 或自定义公开地址，为空时自动生成
	ForcePathStyle bool
}

// S3Backend 上传到对象存储
type S3Backend struct {
	client         S3Client
	bucket         string
	region         string
	endpoint       string
	baseURL        string
	forcePathStyle bool
}

var _ Backend = (*S3Backend)(nil)

// S3Option S3Backend 构造选项
type S3Option func(*s3Options)

type s3Options struct {
	client S3Client
}

// WithS3Client 使用预先配置好的客户端（主要用于测试）
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.client = client
	}
}

// ErrInvalidS3Config bucket 或 region 缺失
var ErrInvalidS3Config = errors.New("s3 bucket and region are required")

// NewS3Backend 创建 S3 存储后端；未提供静态凭据时回退到环境变量 / IAM 角色
func NewS3Backend(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Backend, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidS3Config
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client = s3aws.NewFromConfig(awsConfig, func(o *s3aws.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &S3Backend{
		client:         client,
		bucket:         cfg.Bucket,
		region:         cfg.Region,
		endpoint:       cfg.Endpoint,
		baseURL:        cfg.BaseURL,
		forcePathStyle: cfg.ForcePathStyle,
	}, nil
}

func (b *S3Backend) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	_, err := b.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return b.URL(key), nil
}

// URL 生成对象的公开地址：自定义 BaseURL > 兼容服务 endpoint > AWS 标准地址
func (b *S3Backend) URL(key string) string {
	key = strings.TrimPrefix(key, "/")

	if b.baseURL != "" {
		return strings.TrimSuffix(b.baseURL, "/") + "/" + key
	}

	if b.endpoint != "" {
		endpoint := strings.TrimSuffix(b.endpoint, "/")
		protocol := "https://"
		if after, ok := strings.CutPrefix(endpoint, "http://"); ok {
			protocol = "http://"
			endpoint = after
		} else if after, ok := strings.CutPrefix(endpoint, "https://"); ok {
			endpoint = after
		}
		if b.forcePathStyle {
			return fmt.Sprintf("%s%s/%s/%s", protocol, endpoint, b.bucket, key)
		}
		return fmt.Sprintf("%s%s.%s/%s", protocol, b.bucket, endpoint, key)
	}

	if b.forcePathStyle {
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", b.region, b.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.region, key)
}
