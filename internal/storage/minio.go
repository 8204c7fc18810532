// Package storage publishes produced artifacts to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/config"
)

// Object is one uploaded file.
type Object struct {
	Path string `json:"path"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Publisher uploads files under a per-run key prefix.
type Publisher struct {
	client *minio.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// NewPublisher connects to the bucket, creating it when missing.
func NewPublisher(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, apperr.Config("storage", nil, "endpoint and bucket are required for upload")
	}
	if log == nil {
		log = zap.NewNop()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperr.Config("storage", err, "cannot create client for %s", cfg.Endpoint)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, apperr.External("storage", err, "cannot check bucket %s", cfg.Bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, apperr.External("storage", err, "cannot create bucket %s", cfg.Bucket)
		}
		log.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}
	return &Publisher{client: client, bucket: cfg.Bucket, prefix: uuid.NewString(), log: log}, nil
}

// Publish uploads each existing file; empty paths are ignored.
func (p *Publisher) Publish(ctx context.Context, paths ...string) ([]Object, error) {
	var out []Object
	for _, fp := range paths {
		if fp == "" {
			continue
		}
		f, err := os.Open(fp)
		if err != nil {
			return out, fmt.Errorf("open %s: %w", fp, err)
		}
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return out, err
		}
		key := objectKey(p.prefix, fp)
		_, err = p.client.PutObject(ctx, p.bucket, key, f, st.Size(), minio.PutObjectOptions{
			ContentType: contentType(fp),
		})
		f.Close()
		if err != nil {
			return out, apperr.External("storage", err, "upload %s", fp)
		}
		p.log.Info("artifact uploaded", zap.String("file", fp), zap.String("bucket", p.bucket), zap.String("key", key), zap.Int64("size", st.Size()))
		out = append(out, Object{Path: fp, Key: key, Size: st.Size()})
	}
	return out, nil
}

func objectKey(prefix, file string) string {
	return path.Join(prefix, filepath.Base(file))
}

var contentTypes = map[string]string{
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".mp4":  "video/mp4",
	".srt":  "application/x-subrip",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

func contentType(file string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(file))]; ok {
		return ct
	}
	return "application/octet-stream"
}
