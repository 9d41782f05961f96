package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"yatube/config"
)

// FileStorage 保存帖子图片，返回可直接放进 <img src> 的地址
type FileStorage interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader, path string) (string, error)
}

// New 按配置选择存储后端
func New(ctx context.Context, cfg config.Config) (FileStorage, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "", "local":
		return NewLocalStorage(cfg.LocalStoragePath, cfg.MediaURL)
	case "s3":
		return NewS3Client(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSClient(ctx, cfg.GCSProjectID, cfg.GCSBucketName, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("不支持的存储后端: %s", cfg.StorageBackend)
	}
}

// Close 释放持有连接的后端（如 GCS 客户端），本地存储无需关闭
func Close(fs FileStorage) error {
	if c, ok := fs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ObjectPath 生成帖子图片的对象路径，与 upload_to='posts/' 保持一致
func ObjectPath(filename string) string {
	return path.Join("posts", filename)
}
